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

const categorySelect = `SELECT id, name, type, icon, color, created_at FROM categories`

// GetCategories returns all categories, expense before income, by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var categories []model.Category
	if err := s.db.SelectContext(ctx, &categories, categorySelect+` ORDER BY type ASC, name ASC`); err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategory returns a category by id, or nil when it does not exist.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var cat model.Category
	err := s.db.GetContext(ctx, &cat, categorySelect+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

// GetCategoryByName returns the first category whose name matches,
// ignoring case, or nil.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var cat model.Category
	err := s.db.GetContext(ctx, &cat, categorySelect+` WHERE name = ? COLLATE NOCASE ORDER BY created_at LIMIT 1`,
		strings.TrimSpace(name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

// CreateCategory creates a category. Its type cannot change afterwards.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.CategoryType, icon, color *string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategory(name, categoryType); err != nil {
		return nil, err
	}

	cat := model.Category{
		ID:        s.newID("cat"),
		Name:      strings.TrimSpace(name),
		Type:      categoryType,
		Icon:      icon,
		Color:     color,
		CreatedAt: s.timestamp(),
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO categories (id, name, type, icon, color, created_at)
		VALUES (:id, :name, :type, :icon, :color, :created_at)`, cat)
	if err != nil {
		return nil, wrapWriteError("create category", err)
	}

	slog.Debug("created category", "id", cat.ID, "name", cat.Name, "type", cat.Type)
	return &cat, nil
}

// DeleteCategory removes a category. Transactions that referenced it stay
// and become uncategorized; budgets and rules for it are deleted.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("category %q: %w", id, common.ErrNotFound)
	}
	return nil
}
