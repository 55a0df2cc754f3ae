package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/pennywise/internal/model"
)

const transactionSelect = `
	SELECT t.id, t.account_id, t.category_id, t.amount, t.currency, t.date,
		t.payee, t.note, t.created_at, c.name AS category_name
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id`

const transactionOrder = `ORDER BY t.date DESC, t.created_at DESC`

// CreateTransaction inserts a transaction and returns its generated id.
// An unknown account or category fails with ErrConstraintViolation.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn model.NewTransaction) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateNewTransaction(txn); err != nil {
		return "", err
	}

	id := s.newID("txn")
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, account_id, category_id, amount, currency, date, payee, note, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, txn.AccountID, txn.CategoryID, txn.AmountCents, txn.Currency,
		txn.Date, txn.Payee, txn.Note, s.timestamp(),
	)
	if err != nil {
		return "", wrapWriteError("insert transaction", err)
	}

	slog.Debug("created transaction", "id", id, "date", txn.Date, "amount", txn.AmountCents)
	return id, nil
}

// UpdateTransaction writes only the fields set in patch. An empty patch does
// nothing. Updating an id that does not exist is not an error.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	assignments := patch.Assignments()
	if len(assignments) == 0 {
		return nil
	}
	if err := validatePatch(patch); err != nil {
		return err
	}

	set := make([]string, 0, len(assignments))
	args := make([]any, 0, len(assignments)+1)
	for _, a := range assignments {
		set = append(set, a.Column+" = ?")
		args = append(args, a.Value)
	}
	args = append(args, id)

	query := "UPDATE transactions SET " + strings.Join(set, ", ") + " WHERE id = ?"
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapWriteError("update transaction", err)
	}

	affected, _ := result.RowsAffected()
	slog.Debug("updated transaction", "id", id, "columns", len(assignments), "rows", affected)
	return nil
}

// DeleteTransaction removes a transaction. Deleting an absent id is a no-op.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	slog.Debug("deleted transaction", "id", id)
	return nil
}

// GetTransaction returns one transaction with its category name, or nil
// when it does not exist.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var txn model.Transaction
	err := s.db.GetContext(ctx, &txn, transactionSelect+` WHERE t.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return &txn, nil
}

// ListTransactionsByMonth returns every transaction dated within month,
// newest date first, ties broken by newest created first.
func (s *SQLiteStorage) ListTransactionsByMonth(ctx context.Context, month model.Month) ([]model.Transaction, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	return s.ListTransactions(ctx, model.TransactionFilter{Month: &month})
}

// ListTransactions returns transactions matching every set filter, in the
// same order as ListTransactionsByMonth. Search is a substring match on
// payee or note using SQLite's LIKE (case-insensitive for ASCII).
func (s *SQLiteStorage) ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)

	if filter.Month != nil {
		if err := validateMonth(*filter.Month); err != nil {
			return nil, err
		}
		where = append(where, "t.date BETWEEN ? AND ?")
		args = append(args, filter.Month.Start(), filter.Month.End())
	}
	switch {
	case filter.Uncategorized:
		where = append(where, "t.category_id IS NULL")
	case filter.CategoryID != nil:
		where = append(where, "t.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.AccountID != "" {
		where = append(where, "t.account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.Search != "" {
		where = append(where, "(t.payee LIKE ? OR t.note LIKE ?)")
		q := "%" + filter.Search + "%"
		args = append(args, q, q)
	}

	query := transactionSelect
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t" + transactionOrder

	var txns []model.Transaction
	if err := s.db.SelectContext(ctx, &txns, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	slog.Debug("listed transactions", "count", len(txns), "conditions", len(where))
	return txns, nil
}

// MonthlyTotals sums a month's categorized transactions. Expense is reported
// as an absolute value and Net is Income minus Expense. Uncategorized
// amounts count toward neither and are reported on their own.
func (s *SQLiteStorage) MonthlyTotals(ctx context.Context, month model.Month) (*model.MonthlyTotals, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	start, end := month.Start(), month.End()

	var expense, income, uncategorized int64
	if err := s.db.GetContext(ctx, &expense, `
		SELECT COALESCE(SUM(t.amount), 0) AS total
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE c.type = 'expense' AND t.date BETWEEN ? AND ?`, start, end); err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}
	if err := s.db.GetContext(ctx, &income, `
		SELECT COALESCE(SUM(t.amount), 0) AS total
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE c.type = 'income' AND t.date BETWEEN ? AND ?`, start, end); err != nil {
		return nil, fmt.Errorf("failed to sum income: %w", err)
	}
	if err := s.db.GetContext(ctx, &uncategorized, `
		SELECT COALESCE(SUM(t.amount), 0) AS total
		FROM transactions t
		WHERE t.category_id IS NULL AND t.date BETWEEN ? AND ?`, start, end); err != nil {
		return nil, fmt.Errorf("failed to sum uncategorized: %w", err)
	}

	if expense < 0 {
		expense = -expense
	}
	return &model.MonthlyTotals{
		ExpenseCents:       expense,
		IncomeCents:        income,
		NetCents:           income - expense,
		UncategorizedCents: uncategorized,
	}, nil
}

// SpendByCategory returns one row per expense category for month, zero when
// nothing was spent, ordered by total descending then name ascending.
func (s *SQLiteStorage) SpendByCategory(ctx context.Context, month model.Month) ([]model.CategorySpend, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateMonth(month); err != nil {
		return nil, err
	}

	var spend []model.CategorySpend
	err := s.db.SelectContext(ctx, &spend, `
		SELECT
			c.id AS category_id,
			c.name AS category_name,
			COALESCE(SUM(t.amount), 0) AS total_cents
		FROM categories c
		LEFT JOIN transactions t
			ON t.category_id = c.id
			AND t.date BETWEEN ? AND ?
		WHERE c.type = 'expense'
		GROUP BY c.id, c.name
		ORDER BY total_cents DESC, c.name ASC`,
		month.Start(), month.End())
	if err != nil {
		return nil, fmt.Errorf("failed to query spend by category: %w", err)
	}
	return spend, nil
}

// CountTransactions returns the total number of stored transactions.
func (s *SQLiteStorage) CountTransactions(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM transactions`); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

// HasTransaction reports whether a transaction with the same account, date,
// amount and payee is already stored. Imports use it to skip rows seen before.
func (s *SQLiteStorage) HasTransaction(ctx context.Context, txn model.NewTransaction) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	var n int
	err := s.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM transactions
		WHERE account_id = ? AND date = ? AND amount = ? AND payee IS ?`,
		txn.AccountID, txn.Date, txn.AmountCents, txn.Payee)
	if err != nil {
		return false, fmt.Errorf("failed to look up transaction: %w", err)
	}
	return n > 0, nil
}
