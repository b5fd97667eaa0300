package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/report"
	"github.com/Veraticus/spice-insights/internal/storage"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage monthly category budgets",
	}

	cmd.AddCommand(budgetsSetCmd())
	cmd.AddCommand(budgetsListCmd())
	cmd.AddCommand(budgetsDeleteCmd())

	return cmd
}

func budgetsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set <category> <monthly-limit>",
		Short:   "Create or update a category budget",
		Example: "  spice budgets set Groceries 600",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := parseLimit(args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withStore(ctx, func(store *storage.SQLiteStorage) error {
				accountID, err := resolveAccount(ctx, store, accountFlag(cmd))
				if err != nil {
					return err
				}
				budget := &model.Budget{AccountID: accountID, Category: strings.TrimSpace(args[0]), MonthlyLimit: limit}
				if err := store.SetBudget(ctx, budget); err != nil {
					return fmt.Errorf("failed to save budget: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Budget for %s set to %s per month",
					budget.Category, report.NewFormatter().Money(limit))))
				return nil
			})
		},
	}
}

func budgetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"list"},
		Short:   "Show this month's usage of every budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStore(ctx, func(store *storage.SQLiteStorage) error {
				accountID, err := resolveAccount(ctx, store, accountFlag(cmd))
				if err != nil {
					return err
				}
				engine, _, err := newEngine(store)
				if err != nil {
					return err
				}
				statuses, err := engine.BudgetStatus(ctx, accountID)
				if err != nil {
					return explain(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.NewFormatter().FormatBudgets(statuses))
				return nil
			})
		},
	}
}

func budgetsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category>",
		Short: "Remove a category budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withStore(ctx, func(store *storage.SQLiteStorage) error {
				accountID, err := resolveAccount(ctx, store, accountFlag(cmd))
				if err != nil {
					return err
				}
				if err := store.DeleteBudget(ctx, accountID, args[0]); err != nil {
					return fmt.Errorf("failed to delete budget: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted budget for "+args[0]))
				return nil
			})
		},
	}
}

// parseLimit accepts amounts like "600", "600.50" or "$1,200".
func parseLimit(s string) (float64, error) {
	clean := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	limit, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid monthly limit %q: %w", s, err)
	}
	if limit <= 0 {
		return 0, fmt.Errorf("monthly limit must be positive, got %s", s)
	}
	return limit, nil
}
