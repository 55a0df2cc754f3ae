package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/money"
	"github.com/Veraticus/pennywise/internal/tui/viewmodel"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var (
		amount   string
		payee    string
		date     string
		note     string
		category string
		account  string
		currency string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a transaction. Amounts are entered as positive decimals; whether
money went out or came in follows from the category's type.`,
		Example: `  pennywise add --amount 12.50 --payee "Corner Bakery" --category Groceries
  pennywise add --amount 2400 --category Salary --date 2024-03-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			form := viewmodel.AddForm{Amount: amount, Payee: payee, Date: date, Note: note}
			if category != "" {
				cat, err := resolveCategory(ctx, store, category)
				if err != nil {
					return err
				}
				form.CategoryID = cat.ID
			}

			defaults := viewmodel.Defaults{AccountID: settings.DefaultAccount, Currency: settings.DefaultCurrency}
			if account != "" {
				defaults.AccountID = account
			}
			if currency != "" {
				defaults.Currency = strings.ToUpper(currency)
			}

			txn, fieldErrs := form.Validate(time.Now(), defaults)
			if !fieldErrs.Empty() {
				return fieldError(fieldErrs)
			}

			id, err := store.CreateTransaction(ctx, txn)
			if err != nil {
				return fmt.Errorf("failed to add transaction: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s on %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				money.FormatCents(txn.AmountCents, txn.Currency),
				txn.Date,
				cli.InfoStyle.Render(id))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, e.g. 12.34 (required)")
	cmd.Flags().StringVarP(&payee, "payee", "p", "", "Who was paid or who paid you")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Free-form note")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category name or id (default uncategorized)")
	cmd.Flags().StringVar(&account, "account", "", "Account id (default from config)")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code (default from config)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// fieldError turns form errors into one message, in field order.
func fieldError(errs viewmodel.FieldErrors) error {
	var parts []string
	for _, field := range []string{viewmodel.FieldAmount, viewmodel.FieldPayee, viewmodel.FieldDate, viewmodel.FieldNote, viewmodel.FieldCategory} {
		if msg, ok := errs[field]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
		}
	}
	return common.NewUserError(strings.Join(parts, "; "), nil)
}

func editCmd() *cobra.Command {
	var (
		amount        string
		payee         string
		date          string
		note          string
		category      string
		account       string
		uncategorized bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Long:  `Change only the fields given as flags. An empty --payee or --note clears it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			flags := cmd.Flags()

			if category != "" && uncategorized {
				return fmt.Errorf("--category and --uncategorized cannot be used together")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			existing, err := store.GetTransaction(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get transaction: %w", err)
			}
			if existing == nil {
				return common.NewUserError(fmt.Sprintf("Transaction %s does not exist", id), common.ErrNotFound)
			}

			var patch model.TransactionPatch
			if flags.Changed("amount") {
				cents, err := money.ParseCents(amount)
				if err != nil {
					return common.NewUserError("amount: "+viewmodel.MsgAmountFormat, err)
				}
				patch.AmountCents = model.Set(cents)
			}
			if flags.Changed("date") {
				normalized, err := model.NormalizeDate(date)
				if err != nil {
					return common.NewUserError("date: "+viewmodel.MsgDateFormat, err)
				}
				patch.Date = model.Set(normalized)
			}
			if flags.Changed("payee") {
				patch.Payee = model.Set(model.StringPtr(strings.TrimSpace(payee)))
			}
			if flags.Changed("note") {
				patch.Note = model.Set(model.StringPtr(strings.TrimSpace(note)))
			}
			if flags.Changed("account") {
				patch.AccountID = model.Set(account)
			}
			if category != "" {
				cat, err := resolveCategory(ctx, store, category)
				if err != nil {
					return err
				}
				patch.CategoryID = model.Set(&cat.ID)
			}
			if uncategorized {
				patch.CategoryID = model.Set[*string](nil)
			}

			out := cmd.OutOrStdout()
			if patch.IsEmpty() {
				fmt.Fprintln(out, cli.FormatInfo("Nothing to change"))
				return nil
			}

			if err := store.UpdateTransaction(ctx, id, patch); err != nil {
				return fmt.Errorf("failed to update transaction: %w", err)
			}

			fmt.Fprintf(out, "%s Updated %s\n", cli.SuccessStyle.Render(cli.SuccessIcon), cli.InfoStyle.Render(id))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "New amount")
	cmd.Flags().StringVarP(&payee, "payee", "p", "", "New payee")
	cmd.Flags().StringVarP(&date, "date", "d", "", "New date as YYYY-MM-DD")
	cmd.Flags().StringVarP(&note, "note", "n", "", "New note")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category name or id")
	cmd.Flags().StringVar(&account, "account", "", "New account id")
	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "Remove the category")

	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Long:  `Delete a transaction. Deleting an id that does not exist does nothing.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteTransaction(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon), cli.InfoStyle.Render(args[0]))
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := store.GetTransaction(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get transaction: %w", err)
			}
			if txn == nil {
				return common.NewUserError(fmt.Sprintf("Transaction %s does not exist", args[0]), common.ErrNotFound)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:        %s\n", txn.ID)
			fmt.Fprintf(out, "Date:      %s\n", txn.Date)
			fmt.Fprintf(out, "Amount:    %s\n", money.FormatCents(txn.AmountCents, txn.Currency))
			fmt.Fprintf(out, "Payee:     %s\n", viewmodel.PayeeLabel(*txn))
			fmt.Fprintf(out, "Category:  %s\n", viewmodel.CategoryLabel(*txn))
			fmt.Fprintf(out, "Account:   %s\n", txn.AccountID)
			fmt.Fprintf(out, "Note:      %s\n", optional(txn.Note))
			fmt.Fprintf(out, "Created:   %s\n", txn.CreatedAt)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	var (
		month         string
		category      string
		account       string
		search        string
		uncategorized bool
		allMonths     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Example: `  pennywise list --month 2024-03
  pennywise list --uncategorized
  pennywise list --all --search coffee`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var filter model.TransactionFilter
			if !allMonths {
				m, err := resolveMonth(month)
				if err != nil {
					return err
				}
				filter.Month = &m
			}
			filter.AccountID = account
			filter.Search = search
			filter.Uncategorized = uncategorized

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if category != "" && !uncategorized {
				cat, err := resolveCategory(ctx, store, category)
				if err != nil {
					return err
				}
				filter.CategoryID = &cat.ID
			}

			txns, err := store.ListTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(txns) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No transactions found."))
				return nil
			}

			w := newTable(out, "DATE", "PAYEE", "CATEGORY", "AMOUNT", "ID")
			for _, t := range txns {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					t.Date,
					viewmodel.TruncateString(viewmodel.SanitizeForDisplay(viewmodel.PayeeLabel(t)), 32),
					viewmodel.CategoryLabel(t),
					money.FormatCents(t.AmountCents, t.Currency),
					cli.SubtleStyle.Render(t.ID),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\n%d transactions, total %s\n", len(txns), formatTotals(txns))
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default current month)")
	cmd.Flags().BoolVar(&allMonths, "all", false, "List every month")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only this category (name or id)")
	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "Only transactions without a category")
	cmd.Flags().StringVar(&account, "account", "", "Only this account id")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Substring of payee or note")

	return cmd
}

func summaryCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show a month's totals and spending by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			m, err := resolveMonth(month)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			view, err := viewmodel.NewHomeLoader(store).Load(ctx, m)
			if err != nil {
				return err
			}

			currency := settings.DefaultCurrency
			out := cmd.OutOrStdout()
			lines := []string{
				fmt.Sprintf("Total: %s", money.FormatCents(view.TotalCents, currency)),
				fmt.Sprintf("Transactions: %d", view.Count()),
				fmt.Sprintf("Spent:  %s", cli.FormatExpense(view.Totals.ExpenseCents, currency)),
				fmt.Sprintf("Earned: %s", cli.FormatIncome(view.Totals.IncomeCents, currency)),
				fmt.Sprintf("Net:    %s", money.FormatCents(view.Totals.NetCents, currency)),
			}
			if view.Totals.UncategorizedCents != 0 {
				lines = append(lines, cli.SubtleStyle.Render(
					fmt.Sprintf("Uncategorized: %s", money.FormatCents(view.Totals.UncategorizedCents, currency))))
			}
			fmt.Fprintln(out, cli.RenderBox(view.MonthLabel, strings.Join(lines, "\n")))
			if others := otherCurrencies(view.Transactions, currency); len(others) > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf(
					"This month also has %s transactions; they are added in as %s without conversion.",
					strings.Join(others, ", "), currency)))
			}

			rows := view.Breakdown()
			if len(rows) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			w := newTable(out, "CATEGORY", "SPENT", "SHARE")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%.1f%%\n", r.Name, money.FormatCents(r.TotalCents, currency), r.Percent)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default current month)")

	return cmd
}
