package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/report"
	"github.com/Veraticus/spice-insights/internal/storage"
)

func alertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Budget and spending alerts raised by analyses",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List alerts, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			unread, _ := cmd.Flags().GetBool("unread")
			ctx := cmd.Context()
			return withStore(ctx, func(store *storage.SQLiteStorage) error {
				accountID, err := resolveAccount(ctx, store, accountFlag(cmd))
				if err != nil {
					return err
				}
				alerts, err := store.ListAlerts(ctx, accountID, unread)
				if err != nil {
					return fmt.Errorf("failed to list alerts: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.NewFormatter().FormatAlerts(alerts))
				return nil
			})
		},
	}
	list.Flags().Bool("unread", false, "only show unread alerts")

	read := &cobra.Command{
		Use:   "read <alert-id>...",
		Short: "Mark alerts as read",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withStore(ctx, func(store *storage.SQLiteStorage) error {
				for _, id := range args {
					if err := store.MarkAlertRead(ctx, id); err != nil {
						return fmt.Errorf("failed to mark alert %s read: %w", id, err)
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Marked %d alert(s) read", len(args))))
				return nil
			})
		},
	}

	cmd.AddCommand(list, read)
	return cmd
}
