// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/pennywise/internal/model"
)

// Migrator prepares the database schema.
type Migrator interface {
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
}

// TransactionStore reads and writes transactions.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, txn model.NewTransaction) (string, error)
	UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) error
	DeleteTransaction(ctx context.Context, id string) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactionsByMonth(ctx context.Context, month model.Month) ([]model.Transaction, error)
	ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
	MonthlyTotals(ctx context.Context, month model.Month) (*model.MonthlyTotals, error)
	SpendByCategory(ctx context.Context, month model.Month) ([]model.CategorySpend, error)
	CountTransactions(ctx context.Context) (int, error)
	HasTransaction(ctx context.Context, txn model.NewTransaction) (bool, error)
}

// CategoryStore manages categories.
type CategoryStore interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name string, categoryType model.CategoryType, icon, color *string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// AccountStore manages accounts.
type AccountStore interface {
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	CreateAccount(ctx context.Context, name string, accountType *string, currency string) (*model.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	Migrator
	TransactionStore
	CategoryStore
	AccountStore

	// Budget operations
	CreateBudget(ctx context.Context, categoryID, start, end string, amountCents int64) (*model.Budget, error)
	GetBudgets(ctx context.Context) ([]model.Budget, error)
	DeleteBudget(ctx context.Context, id string) error

	// Rule operations
	CreateRule(ctx context.Context, pattern, categoryID string, priority int) (*model.Rule, error)
	GetRules(ctx context.Context) ([]model.Rule, error)
	DeleteRule(ctx context.Context, id string) error

	// Database management
	GetMeta(ctx context.Context, key string) (string, bool, error)
	SetMeta(ctx context.Context, key, value string) error
	TableCounts(ctx context.Context) (map[string]int, error)
	Path() string
	Close() error
}

// HomeStore is what the home screen needs: schema setup plus month queries.
type HomeStore interface {
	Migrator
	TransactionStore
	GetCategories(ctx context.Context) ([]model.Category, error)
}
