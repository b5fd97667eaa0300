package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/report"
	"github.com/Veraticus/spice-insights/internal/storage"
)

func accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List known accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				accounts, err := store.ListAccounts(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list accounts: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.NewFormatter().FormatAccounts(accounts))
				return nil
			})
		},
	}
}
