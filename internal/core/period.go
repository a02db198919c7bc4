package core

import "time"

// Period names a date-window policy used to bound summary aggregation.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
	All     Period = "all"
)

// Window derives the inclusive [start, end] range for the period,
// using today as the reference point. An unrecognized period (and All)
// returns nil bounds, meaning no date constraint.
//
//	daily:   today .. today
//	weekly:  most recent Monday on/before today .. today
//	monthly: first of the current month .. today
//	yearly:  January 1 of the current year .. today
func (p Period) Window(today Date) (start, end *Date) {
	switch p {
	case Daily:
		return &today, &today
	case Weekly:
		// time.Weekday counts Sunday as 0; shift so Monday is 0.
		offset := (int(today.Weekday()) + 6) % 7
		s := today.AddDays(-offset)
		return &s, &today
	case Monthly:
		s := NewDate(today.Year(), int(today.Month()), 1)
		return &s, &today
	case Yearly:
		s := NewDate(today.Year(), int(time.January), 1)
		return &s, &today
	default:
		return nil, nil
	}
}
