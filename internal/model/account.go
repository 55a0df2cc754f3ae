package model

// AccountType tags what kind of money an account holds.
type AccountType string

// Known account types. The column is free text, these are what the CLI offers.
const (
	AccountTypeCash     AccountType = "cash"
	AccountTypeChecking AccountType = "checking"
	AccountTypeCredit   AccountType = "credit"
	AccountTypeSavings  AccountType = "savings"
)

// Account owns transactions. Deleting an account deletes its transactions.
type Account struct {
	Type      *string `db:"type"`
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	Currency  string  `db:"currency"`
	CreatedAt string  `db:"created_at"`
}
