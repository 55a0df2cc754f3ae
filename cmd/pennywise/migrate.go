package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

A new database is created with the default Cash account and categories.
Running it again on an up-to-date database changes nothing.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	slog.Debug("Starting database migration",
		"database", settings.DatabasePath,
		"status_only", status)

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		fmt.Fprintln(out, cli.FormatTitle("Database Migration Status"))
		fmt.Fprintf(out, "Database:        %s\n", store.Path())
		fmt.Fprintf(out, "Current version: %d\n", current)
		fmt.Fprintf(out, "Latest version:  %d\n", storage.SchemaTargetVersion)
		if current < storage.SchemaTargetVersion {
			fmt.Fprintln(out, cli.FormatWarning("Migrations pending. Run: pennywise migrate"))
			return nil
		}

		counts, err := store.TableCounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to count rows: %w", err)
		}
		tables := make([]string, 0, len(counts))
		for table := range counts {
			tables = append(tables, table)
		}
		sort.Strings(tables)

		w := newTable(out, "TABLE", "ROWS")
		for _, table := range tables {
			fmt.Fprintf(w, "%s\t%d\n", table, counts[table])
		}
		return w.Flush()
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database is at schema version %d", current)))
	return nil
}
