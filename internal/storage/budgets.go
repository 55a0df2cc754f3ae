package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/pennywise/internal/model"
)

// CreateBudget stores a spending target for a category over [start, end].
func (s *SQLiteStorage) CreateBudget(ctx context.Context, categoryID, start, end string, amountCents int64) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateBudget(categoryID, start, end, amountCents); err != nil {
		return nil, err
	}

	b := model.Budget{
		ID:          s.newID("bud"),
		CategoryID:  categoryID,
		PeriodStart: start,
		PeriodEnd:   end,
		AmountCents: amountCents,
		CreatedAt:   s.timestamp(),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO budgets (id, category_id, period_start, period_end, amount, created_at)
		VALUES (:id, :category_id, :period_start, :period_end, :amount, :created_at)`, b)
	if err != nil {
		return nil, wrapWriteError("create budget", err)
	}
	return &b, nil
}

// GetBudgets returns all budgets, latest period first.
func (s *SQLiteStorage) GetBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var budgets []model.Budget
	err := s.db.SelectContext(ctx, &budgets, `
		SELECT id, category_id, period_start, period_end, amount, created_at
		FROM budgets
		ORDER BY period_start DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	return budgets, nil
}

// DeleteBudget removes a budget.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteByID(ctx, s, "budgets", id)
}
