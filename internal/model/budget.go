package model

// Budget is a spending target for one category over a date range.
// Nothing enforces it; it is stored and listed.
type Budget struct {
	ID          string `db:"id"`
	CategoryID  string `db:"category_id"`
	PeriodStart string `db:"period_start"`
	PeriodEnd   string `db:"period_end"`
	CreatedAt   string `db:"created_at"`
	AmountCents int64  `db:"amount"`
}

// Rule maps a payee pattern to a category. Rules are stored but never evaluated.
type Rule struct {
	ID         string `db:"id"`
	Pattern    string `db:"pattern"`
	CategoryID string `db:"category_id"`
	Priority   int    `db:"priority"`
}
