package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
)

const schemaVersionKey = "schema_version"

// GetMeta returns the value stored under key. The bool is false when the
// key is absent.
func (s *SQLiteStorage) GetMeta(ctx context.Context, key string) (string, bool, error) {
	if err := validateContext(ctx); err != nil {
		return "", false, err
	}
	if err := validateString(key, "key"); err != nil {
		return "", false, err
	}
	return getMeta(ctx, s.db, key)
}

// SetMeta stores value under key, replacing any previous value.
func (s *SQLiteStorage) SetMeta(ctx context.Context, key, value string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}
	return setMeta(ctx, s.db, key, value)
}

// SchemaVersion returns the stored schema version, 0 for a database that
// has never been migrated.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var tables int
	if err := s.db.GetContext(ctx, &tables,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'app_meta'`); err != nil {
		return 0, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if tables == 0 {
		return 0, nil
	}
	return schemaVersion(ctx, s.db)
}

func getMeta(ctx context.Context, q sqlx.QueryerContext, key string) (string, bool, error) {
	var v sql.NullString
	err := sqlx.GetContext(ctx, q, &v, `SELECT v FROM app_meta WHERE k = ? LIMIT 1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read meta %q: %w", key, err)
	}
	return v.String, true, nil
}

func setMeta(ctx context.Context, e sqlx.ExecerContext, key, value string) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO app_meta(k, v) VALUES(?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write meta %q: %w", key, err)
	}
	return nil
}

func schemaVersion(ctx context.Context, q sqlx.QueryerContext) (int, error) {
	v, ok, err := getMeta(ctx, q, schemaVersionKey)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	if !ok || v == "" {
		return 0, nil
	}
	version, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("malformed schema version %q: %w", v, err)
	}
	return version, nil
}
