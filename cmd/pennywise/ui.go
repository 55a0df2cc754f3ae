package main

import (
	"github.com/Veraticus/pennywise/internal/tui"
	"github.com/Veraticus/pennywise/internal/tui/viewmodel"
	"github.com/spf13/cobra"
)

func uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive home screen",
		Long: `Show the month's totals, spending by category, and transactions.

Use ←/→ to change month, a to add a transaction, d to delete the selected one,
and ? for all shortcuts. Logs go to logging.file when it is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return tui.Run(ctx,
				tui.WithStore(store),
				tui.WithDefaults(viewmodel.Defaults{
					AccountID: settings.DefaultAccount,
					Currency:  settings.DefaultCurrency,
				}),
				tui.WithLogging(settings.LogFile, settings.LogLevel),
			)
		},
	}
}
