package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
)

// CreateRule stores a payee pattern for a category. Rules are kept for
// later use; nothing applies them to transactions.
func (s *SQLiteStorage) CreateRule(ctx context.Context, pattern, categoryID string, priority int) (*model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: missing pattern", ErrInvalidRule)
	}
	if strings.TrimSpace(categoryID) == "" {
		return nil, fmt.Errorf("%w: missing category ID", ErrInvalidRule)
	}

	r := model.Rule{
		ID:         s.newID("rul"),
		Pattern:    pattern,
		CategoryID: categoryID,
		Priority:   priority,
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO rules (id, pattern, category_id, priority)
		VALUES (:id, :pattern, :category_id, :priority)`, r)
	if err != nil {
		return nil, wrapWriteError("create rule", err)
	}
	return &r, nil
}

// GetRules returns all rules, highest priority first.
func (s *SQLiteStorage) GetRules(ctx context.Context) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var rules []model.Rule
	err := s.db.SelectContext(ctx, &rules, `
		SELECT id, pattern, category_id, COALESCE(priority, 0) AS priority
		FROM rules
		ORDER BY priority DESC, pattern ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	return rules, nil
}

// DeleteRule removes a rule.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteByID(ctx, s, "rules", id)
}

// deleteByID deletes one row from a fixed table name and reports
// ErrNotFound when nothing matched.
func deleteByID(ctx context.Context, s *SQLiteStorage, table, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %q: %w", strings.TrimSuffix(table, "s"), id, common.ErrNotFound)
	}
	return nil
}
