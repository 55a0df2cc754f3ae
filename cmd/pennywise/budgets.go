package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/money"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/spf13/cobra"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage budgets",
		Long:  `Budgets record a spending target for a category over a date range. They are not enforced.`,
	}

	cmd.AddCommand(listBudgetsCmd())
	cmd.AddCommand(addBudgetCmd())
	cmd.AddCommand(deleteBudgetCmd())

	return cmd
}

// categoryNames maps category ids to names for display.
func categoryNames(ctx context.Context, store service.CategoryStore) (map[string]string, error) {
	categories, err := store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func listBudgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all budgets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budgets, err := store.GetBudgets(ctx)
			if err != nil {
				return fmt.Errorf("failed to get budgets: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(budgets) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No budgets found. Use 'pennywise budgets add' to create one."))
				return nil
			}

			names, err := categoryNames(ctx, store)
			if err != nil {
				return err
			}

			w := newTable(out, "ID", "CATEGORY", "FROM", "TO", "AMOUNT")
			for _, b := range budgets {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					b.ID, names[b.CategoryID], b.PeriodStart, b.PeriodEnd,
					money.FormatCents(b.AmountCents, settings.DefaultCurrency))
			}
			return w.Flush()
		},
	}
}

func addBudgetCmd() *cobra.Command {
	var (
		category string
		amount   string
		start    string
		end      string
		month    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a budget",
		Example: `  pennywise budgets add --category Groceries --amount 400 --month 2024-03
  pennywise budgets add --category Rent --amount 1500 --start 2024-01-01 --end 2024-12-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cents, err := money.ParseCents(amount)
			if err != nil {
				return common.NewUserError("Use an amount like 400 or 400.00", err)
			}

			if month != "" {
				m, err := model.ParseMonth(month)
				if err != nil {
					return err
				}
				start, end = m.Start(), m.End()
			}
			if start == "" || end == "" {
				return common.NewUserError("Give --month, or both --start and --end", nil)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := resolveCategory(ctx, store, category)
			if err != nil {
				return err
			}

			budget, err := store.CreateBudget(ctx, cat.ID, start, end, cents)
			if err != nil {
				return fmt.Errorf("failed to create budget: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created budget of %s for %s, %s to %s (ID: %s)",
				money.FormatCents(budget.AmountCents, settings.DefaultCurrency), cat.Name,
				budget.PeriodStart, budget.PeriodEnd, budget.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category name or id (required)")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Budgeted amount (required)")
	cmd.Flags().StringVarP(&month, "month", "m", "", "Budget a single month (YYYY-MM)")
	cmd.Flags().StringVar(&start, "start", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Last day (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func deleteBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteBudget(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete budget %s: %w", args[0], err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted budget "+args[0]))
			return nil
		},
	}
}
