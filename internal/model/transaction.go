package model

// Transaction is a stored transaction row joined with its category name.
// Amounts are integer cents; Date is an ISO calendar date (YYYY-MM-DD).
type Transaction struct {
	CategoryID   *string `db:"category_id"`
	Payee        *string `db:"payee"`
	Note         *string `db:"note"`
	CategoryName *string `db:"category_name"`
	ID           string  `db:"id"`
	AccountID    string  `db:"account_id"`
	Currency     string  `db:"currency"`
	Date         string  `db:"date"`
	CreatedAt    string  `db:"created_at"`
	AmountCents  int64   `db:"amount"`
}

// IsUncategorized reports whether the transaction has no category.
func (t Transaction) IsUncategorized() bool {
	return t.CategoryID == nil
}

// NewTransaction carries the fields needed to insert a transaction.
// The store assigns the id and creation time.
type NewTransaction struct {
	CategoryID  *string
	Payee       *string
	Note        *string
	AccountID   string
	Currency    string
	Date        string
	AmountCents int64
}

// Field is an optional value in a sparse update. Set distinguishes
// "leave alone" from "write the zero value".
type Field[T any] struct {
	Value T
	Set   bool
}

// Set returns a Field that will be written.
func Set[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Assignment is one column = value pair of an UPDATE statement.
type Assignment struct {
	Value  any
	Column string
}

// TransactionPatch lists the columns an update may touch. Pointer fields
// set to nil write NULL.
type TransactionPatch struct {
	CategoryID  Field[*string]
	Payee       Field[*string]
	Note        Field[*string]
	AccountID   Field[string]
	Currency    Field[string]
	Date        Field[string]
	AmountCents Field[int64]
}

// Assignments maps the set fields to columns, in a fixed column order.
func (p TransactionPatch) Assignments() []Assignment {
	var out []Assignment
	if p.AccountID.Set {
		out = append(out, Assignment{Column: "account_id", Value: p.AccountID.Value})
	}
	if p.CategoryID.Set {
		out = append(out, Assignment{Column: "category_id", Value: nullable(p.CategoryID.Value)})
	}
	if p.AmountCents.Set {
		out = append(out, Assignment{Column: "amount", Value: p.AmountCents.Value})
	}
	if p.Currency.Set {
		out = append(out, Assignment{Column: "currency", Value: p.Currency.Value})
	}
	if p.Date.Set {
		out = append(out, Assignment{Column: "date", Value: p.Date.Value})
	}
	if p.Payee.Set {
		out = append(out, Assignment{Column: "payee", Value: nullable(p.Payee.Value)})
	}
	if p.Note.Set {
		out = append(out, Assignment{Column: "note", Value: nullable(p.Note.Value)})
	}
	return out
}

// IsEmpty reports whether the patch would touch no columns.
func (p TransactionPatch) IsEmpty() bool {
	return len(p.Assignments()) == 0
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
// Uncategorized selects rows with no category and wins over CategoryID.
type TransactionFilter struct {
	Month         *Month
	CategoryID    *string
	AccountID     string
	Search        string
	Uncategorized bool
}

// MonthlyTotals summarizes one month. Uncategorized transactions are excluded
// from ExpenseCents, IncomeCents and NetCents and reported separately.
type MonthlyTotals struct {
	ExpenseCents       int64
	IncomeCents        int64
	NetCents           int64
	UncategorizedCents int64
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
