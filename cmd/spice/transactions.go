package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/report"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/storage"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "Inspect and categorize stored transactions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent transactions for an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			days, _ := cmd.Flags().GetInt("days")
			limit, _ := cmd.Flags().GetInt("limit")
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}

			ctx := cmd.Context()
			return withStore(ctx, func(store *storage.SQLiteStorage) error {
				accountID, err := resolveAccount(ctx, store, accountFlag(cmd))
				if err != nil {
					return err
				}
				txns, err := store.GetTransactions(ctx, listFilter(accountID, days, limit, time.Now()))
				if err != nil {
					return fmt.Errorf("failed to list transactions: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.NewFormatter().FormatTransactions(txns))
				return nil
			})
		},
	}
	list.Flags().Int("days", 30, "number of days to show")
	list.Flags().Int("limit", 0, "maximum number of transactions (0 for no limit)")

	categorize := &cobra.Command{
		Use:   "categorize <transaction-id> [category]",
		Short: "Set or clear the category of a transaction",
		Long: `Set the category used by budgets and category insights. Omit the
category, or pass --clear, to mark the transaction uncategorized.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			unset, _ := cmd.Flags().GetBool("clear")
			category, err := categoryArg(args[1:], unset)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return withStore(ctx, func(store *storage.SQLiteStorage) error {
				txn, err := store.GetTransactionByID(ctx, args[0])
				if err != nil {
					if errors.Is(err, common.ErrNotFound) {
						return common.NewUserError("Transaction not found. Run 'spice transactions list' to see IDs.", err)
					}
					return err
				}
				if err := store.UpdateTransactionCategory(ctx, txn.ID, category); err != nil {
					return err
				}

				label := "uncategorized"
				if category != nil {
					label = *category
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
					"%s (%s) is now %s", txn.Description, txn.Date.Format("2006-01-02"), label)))
				return nil
			})
		},
	}
	categorize.Flags().Bool("clear", false, "remove the category")

	cmd.AddCommand(list, categorize)
	return cmd
}

func listFilter(accountID string, days, limit int, now time.Time) service.TransactionFilter {
	start := now.AddDate(0, 0, -days)
	return service.TransactionFilter{
		AccountID: accountID,
		StartDate: &start,
		EndDate:   &now,
		Limit:     limit,
	}
}

// categoryArg returns nil when the category should be cleared.
func categoryArg(args []string, unset bool) (*string, error) {
	if unset {
		if len(args) > 0 {
			return nil, fmt.Errorf("--clear cannot be combined with a category")
		}
		return nil, nil
	}
	if len(args) == 0 {
		return nil, nil
	}
	category := strings.TrimSpace(args[0])
	if category == "" {
		return nil, fmt.Errorf("category cannot be blank")
	}
	return &category, nil
}
