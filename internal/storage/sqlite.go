package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/pennywise/internal/service"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// TimestampLayout is the ISO-8601 form used for created_at columns.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// memoryPath opens a private in-memory database.
const memoryPath = ":memory:"

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sqlx.DB
	now    func() time.Time
	newID  func(prefix string) string
	dbPath string
}

var _ service.Storage = (*SQLiteStorage)(nil)

// Option customizes a SQLiteStorage.
type Option func(*SQLiteStorage)

// WithClock replaces the clock used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStorage) {
		s.now = now
	}
}

// WithIDGenerator replaces the generator used for new row ids.
func WithIDGenerator(newID func(prefix string) string) Option {
	return func(s *SQLiteStorage) {
		s.newID = newID
	}
}

// NewID returns a new opaque row id such as "txn_6f1c...".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// NewSQLiteStorage opens (creating if needed) the database at dbPath.
// Call Migrate before using it.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != memoryPath {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite serializes writers anyway, and an in-memory
	// database only lives as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
		newID:  NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// NewCheckpointManager creates a checkpoint manager for this database.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	if s.dbPath == memoryPath {
		return nil, fmt.Errorf("checkpoints need a database file, not %s", memoryPath)
	}
	cm, err := NewCheckpointManager(s.db, s.dbPath)
	if err != nil {
		return nil, err
	}
	cm.now = s.now
	return cm, nil
}

func (s *SQLiteStorage) timestamp() string {
	return s.now().UTC().Format(TimestampLayout)
}

// TableCounts returns the number of rows in each application table.
func (s *SQLiteStorage) TableCounts(ctx context.Context) (map[string]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return countRows(ctx, s.db)
}

// dataTables lists application tables in foreign-key order, parents first.
var dataTables = []string{"app_meta", "accounts", "categories", "transactions", "budgets", "rules"}

func countRows(ctx context.Context, q sqlx.QueryerContext) (map[string]int, error) {
	counts := make(map[string]int, len(dataTables))
	for _, table := range dataTables {
		var n int
		// Table names come from the fixed list above.
		if err := sqlx.GetContext(ctx, q, &n, "SELECT COUNT(*) FROM "+table); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
