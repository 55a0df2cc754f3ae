// Package storage provides the SQLite persistence layer for pennywise.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/mattn/go-sqlite3"
)

// Validation errors.
var (
	ErrNilContext          = errors.New("context cannot be nil")
	ErrEmptyString         = errors.New("string parameter cannot be empty")
	ErrNilParameter        = errors.New("parameter cannot be nil")
	ErrInvalidDateRange    = errors.New("start date must not be after end date")
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidAccount      = errors.New("invalid account")
	ErrInvalidBudget       = errors.New("invalid budget")
	ErrInvalidRule         = errors.New("invalid rule")
	ErrConstraintViolation = errors.New("constraint violation")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateMonth(m model.Month) error {
	if m.IsZero() || m.Month < 1 || m.Month > 12 {
		return fmt.Errorf("%w: %+v", model.ErrInvalidMonth, m)
	}
	return nil
}

// validateDate requires s to already be a canonical ISO calendar date, so
// range queries over the stored text match it.
func validateDate(s string) error {
	normalized, err := model.NormalizeDate(s)
	if err != nil {
		return err
	}
	if normalized != s {
		return fmt.Errorf("%w: %q (want YYYY-MM-DD)", model.ErrInvalidDate, s)
	}
	return nil
}

// validateNewTransaction checks the columns the schema declares NOT NULL
// and the ISO date format. Referential checks are left to the database.
func validateNewTransaction(txn model.NewTransaction) error {
	if strings.TrimSpace(txn.AccountID) == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if strings.TrimSpace(txn.Currency) == "" {
		return fmt.Errorf("%w: missing currency", ErrInvalidTransaction)
	}
	if err := validateDate(txn.Date); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	return nil
}

func validatePatch(patch model.TransactionPatch) error {
	if patch.AccountID.Set && strings.TrimSpace(patch.AccountID.Value) == "" {
		return fmt.Errorf("%w: empty account ID", ErrInvalidTransaction)
	}
	if patch.Currency.Set && strings.TrimSpace(patch.Currency.Value) == "" {
		return fmt.Errorf("%w: empty currency", ErrInvalidTransaction)
	}
	if patch.Date.Set {
		if err := validateDate(patch.Date.Value); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
		}
	}
	return nil
}

func validateCategory(name string, categoryType model.CategoryType) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	if !categoryType.Valid() {
		return fmt.Errorf("%w: type must be %q or %q, got %q",
			ErrInvalidCategory, model.CategoryTypeExpense, model.CategoryTypeIncome, categoryType)
	}
	return nil
}

func validateBudget(categoryID, start, end string, amountCents int64) error {
	if strings.TrimSpace(categoryID) == "" {
		return fmt.Errorf("%w: missing category ID", ErrInvalidBudget)
	}
	if err := validateDate(start); err != nil {
		return fmt.Errorf("%w: period start: %w", ErrInvalidBudget, err)
	}
	if err := validateDate(end); err != nil {
		return fmt.Errorf("%w: period end: %w", ErrInvalidBudget, err)
	}
	if start > end {
		return fmt.Errorf("%w: %w", ErrInvalidBudget, ErrInvalidDateRange)
	}
	if amountCents < 0 {
		return fmt.Errorf("%w: amount cannot be negative", ErrInvalidBudget)
	}
	return nil
}

// wrapWriteError tags SQLite constraint failures (foreign key, NOT NULL,
// CHECK) with ErrConstraintViolation while keeping the driver error.
func wrapWriteError(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("failed to %s: %w: %w", op, ErrConstraintViolation, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
