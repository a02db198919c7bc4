package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
// Lexical order of this layout equals calendar order, which the
// storage layer relies on for range filters.
const DateLayout = "2006-01-02"

// DefaultCategories is the set seeded into a fresh store.
var DefaultCategories = []string{
	"Food", "Travel", "Rent", "Shopping", "Utilities", "Healthcare", "Entertainment",
}

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
)

type (
	// Date is a calendar date with no time component, anchored at
	// midnight UTC.
	Date struct {
		time.Time
	}

	// Money is an amount in integer cents.
	Money struct {
		Cents int64
	}

	// Expense is one recorded transaction. ID and CreatedAt are
	// assigned by the store on insert and never change afterwards.
	Expense struct {
		ID          int64
		Date        Date
		Category    string
		Amount      Money
		Description string
		CreatedAt   time.Time
	}

	// Budget is the process-wide monthly spending target. At most one
	// exists at any time and it applies to every calendar month.
	Budget struct {
		Monthly   Money
		UpdatedAt time.Time
	}

	// Filter narrows an expense search. All fields are optional and
	// AND-combined; a zero field means no constraint, not "match empty".
	Filter struct {
		StartDate *Date
		EndDate   *Date
		Category  string
		MinAmount *Money
		MaxAmount *Money
		Keyword   string
	}
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO 8601 date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}
