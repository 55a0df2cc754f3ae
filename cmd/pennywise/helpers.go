package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/money"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/Veraticus/pennywise/internal/storage"
	"github.com/dustin/go-humanize"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := openStorage()
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openStorage opens the configured database without migrating it.
func openStorage() (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// checkpointManager returns the checkpoint manager for store.
func checkpointManager(store service.Storage) (*storage.CheckpointManager, error) {
	sqliteStore, ok := store.(*storage.SQLiteStorage)
	if !ok {
		return nil, fmt.Errorf("storage is not SQLite")
	}
	manager, err := sqliteStore.NewCheckpointManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return manager, nil
}

// resolveCategory finds a category by id or, failing that, by name.
func resolveCategory(ctx context.Context, store service.CategoryStore, ref string) (*model.Category, error) {
	ref = strings.TrimSpace(ref)
	cat, err := store.GetCategory(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if cat != nil {
		return cat, nil
	}

	cat, err = store.GetCategoryByName(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if cat == nil {
		return nil, common.NewUserError(fmt.Sprintf("Category %q does not exist", ref), common.ErrNotFound)
	}
	return cat, nil
}

// resolveMonth parses a YYYY-MM flag value; empty means the current month.
func resolveMonth(s string) (model.Month, error) {
	if strings.TrimSpace(s) == "" {
		return model.CurrentMonth(), nil
	}
	return model.ParseMonth(s)
}

// confirm asks the user a yes/no question unless force is set.
func confirm(ctx context.Context, in io.Reader, out io.Writer, force bool, question string) (bool, error) {
	if force {
		return true, nil
	}
	return cli.Confirm(ctx, cli.NewNonBlockingReader(in), out, question)
}

// newTable returns a tabwriter with a styled header row already written.
func newTable(out io.Writer, headers ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = cli.TableHeaderStyle.Render(h)
	}
	fmt.Fprintln(w, strings.Join(styled, "\t"))
	return w
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// formatTotals sums txns per currency, e.g. "$12.50" or "$12.50 + €3.00".
func formatTotals(txns []model.Transaction) string {
	sums := make(map[string]int64)
	for _, t := range txns {
		sums[t.Currency] += t.AmountCents
	}
	currencies := make([]string, 0, len(sums))
	for c := range sums {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	parts := make([]string, len(currencies))
	for i, c := range currencies {
		parts[i] = money.FormatCents(sums[c], c)
	}
	return strings.Join(parts, " + ")
}

// otherCurrencies lists the currencies in txns other than currency, sorted.
func otherCurrencies(txns []model.Transaction, currency string) []string {
	seen := make(map[string]bool)
	var others []string
	for _, t := range txns {
		if t.Currency != currency && !seen[t.Currency] {
			seen[t.Currency] = true
			others = append(others, t.Currency)
		}
	}
	sort.Strings(others)
	return others
}

// Helper functions

func formatFileSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}

func formatRelativeTime(t time.Time) string {
	if time.Since(t) > 7*24*time.Hour {
		return t.Local().Format("2006-01-02 15:04")
	}
	return humanize.Time(t)
}
