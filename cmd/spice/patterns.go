package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/report"
	"github.com/Veraticus/spice-insights/internal/storage"
)

// analysisFunc runs one analysis and returns its raw result and rendering.
type analysisFunc func(ctx context.Context, e *insight.Engine, f *report.Formatter, accountID string) (any, string, error)

// storedFunc reads a previously stored result instead of recomputing it.
type storedFunc func(ctx context.Context, r insight.PatternReader, f *report.Formatter, accountID string) (any, string, error)

type analysisCommand struct {
	run    analysisFunc
	stored storedFunc
	use    string
	short  string
}

// storedSnapshots reads snapshots of the given types, rendering each.
func storedSnapshots(patternTypes ...string) storedFunc {
	return func(ctx context.Context, r insight.PatternReader, f *report.Formatter, id string) (any, string, error) {
		snaps := make([]insight.Snapshot, 0, len(patternTypes))
		rendered := make([]string, 0, len(patternTypes))
		for _, pt := range patternTypes {
			snap, err := r.GetSnapshot(ctx, id, pt)
			if err != nil {
				return nil, "", err
			}
			snaps = append(snaps, *snap)
			rendered = append(rendered, f.FormatSnapshot(*snap))
		}
		if len(snaps) == 1 {
			return snaps[0], rendered[0], nil
		}
		return snaps, strings.Join(rendered, "\n\n"), nil
	}
}

var patternCommands = []analysisCommand{
	{
		use:   "daily",
		short: "Weekday and hour-of-day spending over the last 90 days",
		run: func(ctx context.Context, e *insight.Engine, f *report.Formatter, id string) (any, string, error) {
			r, err := e.DailyPatterns(ctx, id)
			return r, f.FormatDaily(r), err
		},
		stored: storedSnapshots(insight.SnapshotDaily, insight.SnapshotHourly),
	},
	{
		use:   "weekly",
		short: "Weekly totals and trend over the last 12 weeks",
		run: func(ctx context.Context, e *insight.Engine, f *report.Formatter, id string) (any, string, error) {
			r, err := e.WeeklyPatterns(ctx, id)
			return r, f.FormatWeekly(r), err
		},
		stored: storedSnapshots(insight.SnapshotWeekly),
	},
	{
		use:   "monthly",
		short: "Monthly totals, top categories and seasonal averages over the last year",
		run: func(ctx context.Context, e *insight.Engine, f *report.Formatter, id string) (any, string, error) {
			r, err := e.MonthlyPatterns(ctx, id)
			return r, f.FormatMonthly(r), err
		},
		stored: storedSnapshots(insight.SnapshotMonthly),
	},
	{
		use:   "recurring",
		short: "Recurring payments detected in the last 180 days",
		run: func(ctx context.Context, e *insight.Engine, f *report.Formatter, id string) (any, string, error) {
			r, err := e.RecurringPayments(ctx, id)
			return r, f.FormatRecurring(r), err
		},
		stored: func(ctx context.Context, r insight.PatternReader, f *report.Formatter, id string) (any, string, error) {
			series, err := r.GetRecurring(ctx, id)
			return series, f.FormatRecurring(series), err
		},
	},
	{
		use:   "anomalies",
		short: "Days with unusually high spending",
		run: func(ctx context.Context, e *insight.Engine, f *report.Formatter, id string) (any, string, error) {
			r, err := e.Anomalies(ctx, id)
			return r, f.FormatAnomalies(r), err
		},
	},
	{
		use:   "categories",
		short: "Category spending in the last 30 days compared with the 30 before",
		run: func(ctx context.Context, e *insight.Engine, f *report.Formatter, id string) (any, string, error) {
			r, err := e.CategoryInsights(ctx, id)
			return r, f.FormatCategories(r), err
		},
	},
	{
		use:   "insights",
		short: "Summary of spending habits, weekly trend and upcoming payments",
		run: func(ctx context.Context, e *insight.Engine, f *report.Formatter, id string) (any, string, error) {
			r, err := e.PatternInsights(ctx, id)
			return r, f.FormatInsights(r), err
		},
	},
	{
		use:   "recommendations",
		short: "Personalized recommendations from health, category trends and budgets",
		run: func(ctx context.Context, e *insight.Engine, f *report.Formatter, id string) (any, string, error) {
			r, err := e.Recommendations(ctx, id)
			return r, f.FormatRecommendations(r), err
		},
	},
	{
		use:   "projection",
		short: "Projected monthly spending, income and savings from recent days",
		run: func(ctx context.Context, e *insight.Engine, f *report.Formatter, id string) (any, string, error) {
			r, err := e.Projection(ctx, id)
			return r, f.FormatProjection(r), err
		},
	},
	{
		use:   "savings",
		short: "Categories where spending could be cut, with estimated savings",
		run: func(ctx context.Context, e *insight.Engine, f *report.Formatter, id string) (any, string, error) {
			r, err := e.SavingsOpportunities(ctx, id)
			return r, f.FormatSavings(r), err
		},
	},
}

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Analyze spending patterns",
	}
	cmd.PersistentFlags().Bool("json", false, "print the raw result as JSON")
	cmd.PersistentFlags().Bool("cached", false, "show the last stored result instead of recomputing (daily, weekly, monthly, recurring)")

	for _, a := range patternCommands {
		cmd.AddCommand(a.command())
	}
	return cmd
}

func healthCmd() *cobra.Command {
	health := analysisCommand{
		use:   "health",
		short: "Financial health score for the last 30 days",
		run: func(ctx context.Context, e *insight.Engine, f *report.Formatter, id string) (any, string, error) {
			r, err := e.HealthScore(ctx, id)
			return r, f.FormatHealth(r), err
		},
	}
	cmd := health.command()
	cmd.Flags().Bool("json", false, "print the raw result as JSON")
	return cmd
}

func (a analysisCommand) command() *cobra.Command {
	return &cobra.Command{
		Use:   a.use,
		Short: a.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			cached, _ := cmd.Flags().GetBool("cached")
			if cached && a.stored == nil {
				return common.NewUserError(fmt.Sprintf("'%s' has no stored result; run it without --cached", a.use), nil)
			}

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

				var raw any
				var rendered string
				if cached {
					var reader insight.PatternReader
					if cache != nil {
						reader = cache
					}
					raw, rendered, err = a.readStored(ctx, reader, accountID)
				} else {
					raw, rendered, err = a.run(ctx, engine, report.NewFormatter(), accountID)
				}
				if err != nil {
					return explain(err)
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), raw)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return err
			})
		},
	}
}

// readStored serves the command from the pattern store.
func (a analysisCommand) readStored(ctx context.Context, reader insight.PatternReader, accountID string) (any, string, error) {
	if reader == nil {
		return nil, "", common.NewUserError("Stored results are disabled (patterns.store is none).", nil)
	}
	raw, rendered, err := a.stored(ctx, reader, report.NewFormatter(), accountID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, "", common.NewUserError(fmt.Sprintf("No stored result yet; run 'spice patterns %s' first.", a.use), err)
	}
	return raw, rendered, err
}
