package main

import (
	"fmt"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage payee rules",
		Long: `Rules map a payee pattern to a category. They are stored for later use
and are not applied to transactions.`,
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(deleteRuleCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules, highest priority first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(rules) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No rules found. Use 'pennywise rules add' to create one."))
				return nil
			}

			names, err := categoryNames(ctx, store)
			if err != nil {
				return err
			}

			w := newTable(out, "ID", "PATTERN", "CATEGORY", "PRIORITY")
			for _, r := range rules {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.ID, r.Pattern, names[r.CategoryID], r.Priority)
			}
			return w.Flush()
		},
	}
}

func addRuleCmd() *cobra.Command {
	var (
		category string
		priority int
	)

	cmd := &cobra.Command{
		Use:     "add <pattern>",
		Short:   "Add a rule",
		Example: `  pennywise rules add "STARBUCKS" --category Restaurants --priority 10`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := resolveCategory(ctx, store, category)
			if err != nil {
				return err
			}

			rule, err := store.CreateRule(ctx, args[0], cat.ID, priority)
			if err != nil {
				return fmt.Errorf("failed to create rule: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Created rule %q → %s (ID: %s)", rule.Pattern, cat.Name, rule.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category name or id (required)")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "Higher priorities are listed first")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func deleteRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRule(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete rule %s: %w", args[0], err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted rule "+args[0]))
			return nil
		},
	}
}
