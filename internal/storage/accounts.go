package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
)

const accountSelect = `SELECT id, name, type, currency, created_at FROM accounts`

// GetAccounts returns all accounts ordered by name.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var accounts []model.Account
	if err := s.db.SelectContext(ctx, &accounts, accountSelect+` ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount returns an account by id, or nil when it does not exist.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var acct model.Account
	err := s.db.GetContext(ctx, &acct, accountSelect+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return &acct, nil
}

// CreateAccount creates an account holding money in currency.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, name string, accountType *string, currency string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if strings.TrimSpace(currency) == "" {
		return nil, fmt.Errorf("%w: missing currency", ErrInvalidAccount)
	}

	acct := model.Account{
		ID:        s.newID("acc"),
		Name:      strings.TrimSpace(name),
		Type:      accountType,
		Currency:  strings.ToUpper(strings.TrimSpace(currency)),
		CreatedAt: s.timestamp(),
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO accounts (id, name, type, currency, created_at)
		VALUES (:id, :name, :type, :currency, :created_at)`, acct)
	if err != nil {
		return nil, wrapWriteError("create account", err)
	}

	slog.Debug("created account", "id", acct.ID, "name", acct.Name)
	return &acct, nil
}

// DeleteAccount removes an account and, by cascade, all of its transactions.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account %q: %w", id, common.ErrNotFound)
	}
	return nil
}
