package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/money"
	"github.com/Veraticus/pennywise/internal/ofx"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type importResult struct {
	file       string
	found      int
	duplicates int
	err        error
}

func importOFXCmd() *cobra.Command {
	var (
		accountID string
		currency  string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your bank.

Imported transactions are uncategorized. Transactions already recorded with the
same date, amount, payee, and account are skipped. A checkpoint is taken before
anything is written.`,
		Example: `  # Import single file
  pennywise import-ofx ~/Downloads/chase_jan_2024.qfx

  # Import all QFX files in a directory into the checking account
  pennywise import-ofx --account acc_checking ~/Downloads/*.qfx

  # Preview without saving
  pennywise import-ofx --dry-run ~/Downloads/ally.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			files, err := expandImportPaths(args)
			if err != nil {
				return err
			}

			if accountID == "" {
				accountID = settings.DefaultAccount
			}
			if currency == "" {
				currency = settings.DefaultCurrency
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account, err := store.GetAccount(ctx, accountID)
			if err != nil {
				return fmt.Errorf("failed to get account: %w", err)
			}
			if account == nil {
				return common.NewUserError(fmt.Sprintf("Account %q does not exist", accountID), common.ErrNotFound)
			}

			slog.Info("Importing OFX files",
				"file_count", len(files),
				"account", account.ID,
				"dry_run", dryRun)

			parser := ofx.NewParser()
			opts := ofx.ImportOptions{AccountID: account.ID, Currency: currency}
			seen := make(map[string]bool)
			var pending []model.NewTransaction
			var results []importResult

			for _, path := range files {
				result := importResult{file: filepath.Base(path)}

				txns, err := parseOFXFile(cmd, parser, path, opts)
				if err != nil {
					slog.Error("Failed to parse OFX file", "file", path, "error", err)
					result.err = err
					results = append(results, result)
					continue
				}
				result.found = len(txns)

				for _, txn := range txns {
					if seen[dedupKey(txn)] {
						result.duplicates++
						continue
					}
					seen[dedupKey(txn)] = true

					exists, err := store.HasTransaction(ctx, txn)
					if err != nil {
						return fmt.Errorf("failed to check for duplicates: %w", err)
					}
					if exists {
						result.duplicates++
						continue
					}
					pending = append(pending, txn)
				}
				results = append(results, result)
			}

			printImportSummary(out, results, pending, currency)

			if len(pending) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("Nothing new to import."))
				return nil
			}
			if dryRun {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions would be imported", len(pending))))
				return nil
			}

			hint := ""
			if manager, err := checkpointManager(store); err != nil {
				slog.Warn("Skipping checkpoint before import", "error", err)
			} else {
				info, err := manager.AutoCheckpoint(ctx, "import")
				if err != nil {
					return fmt.Errorf("failed to checkpoint before import: %w", err)
				}
				hint = "Restore with: pennywise checkpoint restore " + info.ID
				slog.Info("Created checkpoint before import", "id", info.ID)
			}

			ctx, stop := context.WithCancel(ctx)
			defer stop()
			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx = handler.HandleInterrupts(ctx, "Import", hint)

			bar := progressbar.NewOptions(len(pending),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan][bold]Importing transactions...[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)

			imported := 0
			for _, txn := range pending {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("import stopped after %d transactions: %w", imported, err)
				}
				if _, err := store.CreateTransaction(ctx, txn); err != nil {
					return fmt.Errorf("failed to save transaction dated %s: %w", txn.Date, err)
				}
				imported++
				if err := bar.Add(1); err != nil {
					slog.Warn("Failed to update progress bar", "error", err)
				}
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions into %s", imported, account.Name)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "Account id to import into (default: configured default account)")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code (default: configured default currency)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Preview import without saving")

	return cmd
}

// expandImportPaths resolves globs; a pattern with no matches is kept if it
// names an existing file.
func expandImportPaths(args []string) ([]string, error) {
	var files []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, common.NewUserError("No files found to import", nil)
	}
	return files, nil
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, path string, opts ofx.ImportOptions) ([]model.NewTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	txns, err := parser.ParseFile(cmd.Context(), f, opts)
	if errors.Is(err, ofx.ErrMissingAccount) {
		return nil, common.NewUserError("An account is required to import", err)
	}
	return txns, err
}

// dedupKey is the identity used to skip repeats within a batch: the same
// fields HasTransaction compares.
func dedupKey(txn model.NewTransaction) string {
	payee := "\x00"
	if txn.Payee != nil {
		payee = *txn.Payee
	}
	return strings.Join([]string{txn.AccountID, txn.Date, strconv.FormatInt(txn.AmountCents, 10), payee}, "|")
}

func printImportSummary(out io.Writer, results []importResult, pending []model.NewTransaction, currency string) {
	fmt.Fprintln(out, cli.FormatTitle("File import summary"))
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(out, "  %s %s: %s\n", cli.ErrorIcon, r.file, common.UserMessage(r.err))
			continue
		}
		fmt.Fprintf(out, "  %s %s: %d found, %d duplicates\n", cli.FolderIcon, r.file, r.found, r.duplicates)
	}

	if len(pending) == 0 {
		return
	}

	var total int64
	oldest, newest := pending[0].Date, pending[0].Date
	for _, txn := range pending {
		total += txn.AmountCents
		oldest = min(oldest, txn.Date)
		newest = max(newest, txn.Date)
	}
	fmt.Fprintf(out, "\n%s %d new transactions from %s to %s, totalling %s\n",
		cli.CoinIcon, len(pending), oldest, newest, money.FormatCents(total, currency))
}
