package core

// CategoryTotal is an amount aggregated by category name.
type CategoryTotal struct {
	Category string
	Total    Money
}

// Summary is the result of aggregating expenses over a period window.
// Start and End are nil for the unbounded ("all") period. ByCategory
// is ordered by total descending, category name ascending on ties, and
// its totals sum to Total.
type Summary struct {
	Period     Period
	Start      *Date
	End        *Date
	Total      Money
	ByCategory []CategoryTotal
}

// MonthTotal is an amount aggregated by calendar month (YYYY-MM).
type MonthTotal struct {
	Month string
	Total Money
}

// BudgetStatus reports spend against the monthly budget for the
// current month. When no budget has been set, Budget is nil and the
// remaining fields are zero without computing spend.
type BudgetStatus struct {
	Budget     *Money
	Spent      Money
	Remaining  Money
	Percentage float64
}
