package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/jmoiron/sqlx"
)

// baselineVersion is the version the baseline schema represents.
const baselineVersion = 1

// SchemaTargetVersion is the schema version this build migrates to.
var SchemaTargetVersion = targetVersion(migrations)

// Migration is an incremental schema change applied on top of the baseline.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

// migrations run in ascending Version order after the baseline schema.
// Each must be greater than baselineVersion. None exist yet.
var migrations []Migration

// schemaV1 is the baseline schema. Every statement is safe to repeat.
var schemaV1 = []string{
	`CREATE TABLE IF NOT EXISTS app_meta (
		k TEXT PRIMARY KEY,
		v TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT,
		currency TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL CHECK(type IN ('expense','income')),
		icon TEXT,
		color TEXT,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		category_id TEXT,
		amount INTEGER NOT NULL,
		currency TEXT NOT NULL,
		date TEXT NOT NULL,
		payee TEXT,
		note TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY(account_id) REFERENCES accounts(id) ON DELETE CASCADE,
		FOREIGN KEY(category_id) REFERENCES categories(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_id)`,

	`CREATE TABLE IF NOT EXISTS budgets (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		amount INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY(category_id) REFERENCES categories(id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS rules (
		id TEXT PRIMARY KEY,
		pattern TEXT NOT NULL,
		category_id TEXT NOT NULL,
		priority INTEGER DEFAULT 0,
		FOREIGN KEY(category_id) REFERENCES categories(id) ON DELETE CASCADE
	)`,
}

// DefaultAccountID is the account seeded into a fresh database.
const DefaultAccountID = "acc_cash"

var seedAccount = model.Account{ID: DefaultAccountID, Name: "Cash", Type: model.StringPtr("cash"), Currency: "USD"}

var seedCategories = []model.Category{
	{ID: "cat_groceries", Name: "Groceries", Type: model.CategoryTypeExpense, Icon: model.StringPtr("cart"), Color: model.StringPtr("teal")},
	{ID: "cat_restaurants", Name: "Restaurants", Type: model.CategoryTypeExpense, Icon: model.StringPtr("food"), Color: model.StringPtr("orange")},
	{ID: "cat_transport", Name: "Transport", Type: model.CategoryTypeExpense, Icon: model.StringPtr("car"), Color: model.StringPtr("purple")},
	{ID: "cat_rent", Name: "Rent", Type: model.CategoryTypeExpense, Icon: model.StringPtr("home"), Color: model.StringPtr("red")},
	{ID: "cat_utilities", Name: "Utilities", Type: model.CategoryTypeExpense, Icon: model.StringPtr("flash"), Color: model.StringPtr("blue")},
	{ID: "cat_entertain", Name: "Entertainment", Type: model.CategoryTypeExpense, Icon: model.StringPtr("music"), Color: model.StringPtr("pink")},
	{ID: "cat_salary", Name: "Salary", Type: model.CategoryTypeIncome, Icon: model.StringPtr("cash"), Color: model.StringPtr("green")},
	{ID: "cat_misc", Name: "Misc", Type: model.CategoryTypeExpense, Icon: model.StringPtr("dots-horizontal"), Color: model.StringPtr("gray")},
}

func targetVersion(steps []Migration) int {
	version := baselineVersion
	for _, m := range steps {
		if m.Version > version {
			version = m.Version
		}
	}
	return version
}

// Migrate creates the schema if absent, seeds a fresh database once, and
// applies any pending migrations. It is safe to call on every start.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	return s.migrate(ctx, migrations)
}

func (s *SQLiteStorage) migrate(ctx context.Context, steps []Migration) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.ensureBaseline(ctx)
	if err != nil {
		return err
	}

	for _, migration := range steps {
		if migration.Version <= current {
			continue
		}

		tx, txErr := s.db.BeginTxx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx.Tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if setErr := setMeta(ctx, tx, schemaVersionKey, strconv.Itoa(migration.Version)); setErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", setErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}
		current = migration.Version

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if want := targetVersion(steps); finalVersion != want {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", want, finalVersion)
	}

	return nil
}

// ensureBaseline creates the baseline schema and, on a database with no
// recorded version, records the baseline version and seeds defaults when
// the categories table is empty. It returns the stored version.
func (s *SQLiteStorage) ensureBaseline(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schemaV1 {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	current, err := schemaVersion(ctx, tx)
	if err != nil {
		return 0, err
	}

	seeded := false
	if current == 0 {
		if err := setMeta(ctx, tx, schemaVersionKey, strconv.Itoa(baselineVersion)); err != nil {
			return 0, fmt.Errorf("failed to set schema version: %w", err)
		}
		current = baselineVersion

		var categoryCount int
		if err := tx.GetContext(ctx, &categoryCount, `SELECT COUNT(*) FROM categories`); err != nil {
			return 0, fmt.Errorf("failed to count categories: %w", err)
		}
		if categoryCount == 0 {
			if err := s.seed(ctx, tx); err != nil {
				return 0, err
			}
			seeded = true
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit schema: %w", err)
	}

	if seeded {
		slog.Info("Seeded defaults",
			"accounts", 1,
			"categories", len(seedCategories))
	}
	return current, nil
}

func (s *SQLiteStorage) seed(ctx context.Context, tx *sqlx.Tx) error {
	now := s.timestamp()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO accounts(id, name, type, currency, created_at) VALUES (?, ?, ?, ?, ?)`,
		seedAccount.ID, seedAccount.Name, seedAccount.Type, seedAccount.Currency, now,
	); err != nil {
		return fmt.Errorf("failed to seed account: %w", err)
	}

	for _, cat := range seedCategories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories(id, name, type, icon, color, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			cat.ID, cat.Name, cat.Type, cat.Icon, cat.Color, now,
		); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", cat.ID, err)
		}
	}
	return nil
}
