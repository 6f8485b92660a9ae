package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthSummary is a compact income/expense summary for a specific year+month.
type MonthSummary struct {
	Year       int
	Month      int // 1-12
	Income     Money
	Expense    Money
	ByCategory []CategoryAmount // expenses only
}

// Balance returns income minus expenses for the month.
func (s MonthSummary) Balance() Money {
	return Money{Cents: s.Income.Cents - s.Expense.Cents}
}
