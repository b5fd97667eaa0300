package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/storage"
	"github.com/Veraticus/spice-insights/internal/tui"
)

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse all insights in an interactive terminal view",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStore(ctx, func(store *storage.SQLiteStorage) error {
				accountID, err := resolveAccount(ctx, store, accountFlag(cmd))
				if err != nil {
					return err
				}
				engine, cache, err := newEngine(store)
				if err != nil {
					return err
				}
				var results tui.Results
				if cache != nil {
					results = cache
				}
				return tui.Run(ctx, engine, results, accountID)
			})
		},
	}
}
