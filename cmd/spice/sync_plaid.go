package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/plaid"
	"github.com/Veraticus/spice-insights/internal/storage"
)

func syncPlaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-plaid",
		Short: "Fetch recent transactions from Plaid",
		Long: `Fetch accounts and transactions from the Plaid item configured with
plaid.client_id, plaid.secret, plaid.environment and plaid.access_token
(or the PLAID_* environment variables). Transactions already stored are skipped.`,
		RunE: runSyncPlaid,
	}

	cmd.Flags().Int("days", 90, "number of days of history to fetch")

	return cmd
}

func runSyncPlaid(cmd *cobra.Command, _ []string) error {
	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		return fmt.Errorf("--days must be positive")
	}

	cfg, err := config.LoadPlaidConfig(viper.GetViper())
	if err != nil {
		return err
	}
	client, err := plaid.NewClient(cfg)
	if err != nil {
		return err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	return withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
		handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Sync")
		ctx, stop := handler.HandleInterrupts(cmd.Context(), false)
		defer stop()

		result, err := plaid.Sync(ctx, client, store, start, end)
		invalidatePatterns(context.WithoutCancel(ctx), store, result.Changed)
		if err != nil {
			if common.IsRetryable(err) {
				return common.NewUserError("Plaid is throttling requests. Try again in a few minutes.", err)
			}
			return err
		}
		common.LogInfo("Plaid sync finished", common.Fields{
			"accounts": result.Accounts,
			"fetched":  result.Fetched,
			"inserted": result.Inserted,
			"days":     days,
		})

		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
			"Synced %d account(s): %d transactions fetched, %d new",
			result.Accounts, result.Fetched, result.Inserted)))
		return nil
	})
}
