package model

// CategoryType indicates whether a category collects income or expenses.
type CategoryType string

const (
	// CategoryTypeExpense represents categories for money going out.
	CategoryTypeExpense CategoryType = "expense"
	// CategoryTypeIncome represents categories for money coming in.
	CategoryTypeIncome CategoryType = "income"
)

// Valid reports whether t is one of the two storable category types.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeExpense || t == CategoryTypeIncome
}

// Category groups transactions for reporting. Its type is fixed at creation.
type Category struct {
	Icon      *string      `db:"icon"`
	Color     *string      `db:"color"`
	ID        string       `db:"id"`
	Name      string       `db:"name"`
	Type      CategoryType `db:"type"`
	CreatedAt string       `db:"created_at"`
}

// CategorySpend is one row of the monthly expense breakdown.
type CategorySpend struct {
	CategoryID   string `db:"category_id"`
	CategoryName string `db:"category_name"`
	TotalCents   int64  `db:"total_cents"`
}
