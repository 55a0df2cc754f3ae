// Package testutil provides shared test fixtures backed by a real SQLite store.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, *storage.SQLiteStorage) error
	StorageOptions []storage.Option
	SkipMigrations bool
}

// SetupTestDB creates a migrated in-memory database seeded with the default
// account and categories. It is closed when the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:", opts.StorageOptions...)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// Txn builds a transaction on the default account in USD. Empty categoryID
// and payee are stored as NULL.
func Txn(date string, amountCents int64, categoryID, payee string) model.NewTransaction {
	return model.NewTransaction{
		AccountID:   storage.DefaultAccountID,
		CategoryID:  model.StringPtr(categoryID),
		AmountCents: amountCents,
		Currency:    "USD",
		Date:        date,
		Payee:       model.StringPtr(payee),
	}
}

// MustCreateTransaction inserts txn and returns its id or fails the test.
func (db *TestDB) MustCreateTransaction(txn model.NewTransaction) string {
	db.t.Helper()
	id, err := db.Storage.CreateTransaction(context.Background(), txn)
	if err != nil {
		db.t.Fatalf("failed to create transaction %+v: %v", txn, err)
	}
	return id
}

// MustCreateCategory creates a category or fails the test.
func (db *TestDB) MustCreateCategory(name string, categoryType model.CategoryType) *model.Category {
	db.t.Helper()
	cat, err := db.Storage.CreateCategory(context.Background(), name, categoryType, nil, nil)
	if err != nil {
		db.t.Fatalf("failed to create category %q: %v", name, err)
	}
	return cat
}

// MustCreateAccount creates an account or fails the test.
func (db *TestDB) MustCreateAccount(name, currency string) *model.Account {
	db.t.Helper()
	acct, err := db.Storage.CreateAccount(context.Background(), name, nil, currency)
	if err != nil {
		db.t.Fatalf("failed to create account %q: %v", name, err)
	}
	return acct
}
