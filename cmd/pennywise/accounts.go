package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/spf13/cobra"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(deleteAccountCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.GetAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to get accounts: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(accounts) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No accounts found. Use 'pennywise accounts add' to create one."))
				return nil
			}

			w := newTable(out, "ID", "NAME", "TYPE", "CURRENCY")
			for _, a := range accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Name, optional(a.Type), a.Currency)
			}
			return w.Flush()
		},
	}
}

func addAccountCmd() *cobra.Command {
	var (
		accountType string
		currency    string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			switch model.AccountType(accountType) {
			case "", model.AccountTypeCash, model.AccountTypeChecking, model.AccountTypeCredit, model.AccountTypeSavings:
			default:
				return common.NewUserError(fmt.Sprintf("Unknown account type %q", accountType), nil)
			}
			if currency == "" {
				currency = settings.DefaultCurrency
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account, err := store.CreateAccount(ctx, strings.TrimSpace(args[0]), model.StringPtr(accountType), strings.ToUpper(currency))
			if err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Created account %q (ID: %s)", account.Name, account.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountType, "type", "t", "", "Account type (cash, checking, credit, savings)")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code (default from config)")

	return cmd
}

func deleteAccountCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account and all of its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account, err := store.GetAccount(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get account: %w", err)
			}
			if account == nil {
				return common.NewUserError(fmt.Sprintf("Account %s does not exist", args[0]), common.ErrNotFound)
			}

			out := cmd.OutOrStdout()
			ok, err := confirm(ctx, cmd.InOrStdin(), out, force,
				fmt.Sprintf("Delete account %q and all of its transactions?", account.Name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, cli.SubtleStyle.Render("Deletion cancelled."))
				return nil
			}

			if err := store.DeleteAccount(ctx, account.ID); err != nil {
				return fmt.Errorf("failed to delete account: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted account %q", account.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
