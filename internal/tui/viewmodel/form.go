package viewmodel

import (
	"strings"
	"time"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/money"
)

// Form field names used as FieldErrors keys.
const (
	FieldAmount   = "amount"
	FieldPayee    = "payee"
	FieldDate     = "date"
	FieldNote     = "note"
	FieldCategory = "category"
)

// Validation messages shown next to a field.
const (
	MsgAmountRequired = "Amount is required"
	MsgAmountFormat   = "Use format like 12.34"
	MsgDateFormat     = "Use YYYY-MM-DD"
)

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

// Empty reports whether there are no errors.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Defaults are the account and currency given to new transactions.
type Defaults struct {
	AccountID string
	Currency  string
}

// AddForm is the raw text of the add-transaction form.
type AddForm struct {
	Amount     string
	Payee      string
	Date       string
	Note       string
	CategoryID string
}

// Validate checks the form and builds the transaction to insert. An empty
// date means today; empty payee, note and category are stored as NULL.
func (f AddForm) Validate(today time.Time, d Defaults) (model.NewTransaction, FieldErrors) {
	errs := FieldErrors{}

	var cents int64
	amount := strings.TrimSpace(f.Amount)
	if amount == "" {
		errs[FieldAmount] = MsgAmountRequired
	} else if c, err := money.ParseCents(amount); err != nil {
		errs[FieldAmount] = MsgAmountFormat
	} else {
		cents = c
	}

	date := strings.TrimSpace(f.Date)
	if date == "" {
		date = model.FormatDate(today)
	} else if _, err := model.ParseDate(date); err != nil {
		errs[FieldDate] = MsgDateFormat
	}

	if !errs.Empty() {
		return model.NewTransaction{}, errs
	}

	return model.NewTransaction{
		AccountID:   d.AccountID,
		CategoryID:  model.StringPtr(strings.TrimSpace(f.CategoryID)),
		AmountCents: cents,
		Currency:    d.Currency,
		Date:        date,
		Payee:       model.StringPtr(strings.TrimSpace(f.Payee)),
		Note:        model.StringPtr(strings.TrimSpace(f.Note)),
	}, nil
}
