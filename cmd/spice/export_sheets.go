package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/sheets"
	"github.com/Veraticus/spice-insights/internal/storage"
)

func exportSheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-sheets",
		Short: "Export monthly totals, recurring payments, anomalies and health to Google Sheets",
		Long: `Write an insight report to Google Sheets. Authenticate first with
'spice auth sheets' or configure sheets.service_account_path.

Each run replaces the contents of the Monthly, Recurring, Anomalies and
Health tabs.`,
		RunE: runExportSheets,
	}
}

func runExportSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	v := viper.GetViper()

	if v.GetString("sheets.refresh_token") == "" {
		if token, err := sheets.LoadToken(config.SheetsTokenFile()); err == nil && token.RefreshToken != "" {
			v.Set("sheets.refresh_token", token.RefreshToken)
		}
	}
	cfg, err := config.LoadSheetsConfig(v)
	if err != nil {
		return fmt.Errorf("google sheets is not configured (run 'spice auth sheets'): %w", err)
	}

	return withStore(ctx, func(store *storage.SQLiteStorage) error {
		accountID, err := resolveAccount(ctx, store, accountFlag(cmd))
		if err != nil {
			return err
		}
		engine, _, err := newEngine(store)
		if err != nil {
			return err
		}

		input, err := gatherReport(ctx, engine, accountID, time.Now())
		if err != nil {
			return err
		}

		writer, err := sheets.NewWriter(ctx, *cfg, slog.Default())
		if err != nil {
			return err
		}
		if err := writer.Write(ctx, sheets.BuildReport(input)); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Report exported to Google Sheets"))
		return nil
	})
}

// reportSource is the part of the engine an export reads.
type reportSource interface {
	MonthlyPatterns(ctx context.Context, accountID string) (insight.MonthlyPatterns, error)
	RecurringPayments(ctx context.Context, accountID string) ([]insight.RecurringSeries, error)
	Anomalies(ctx context.Context, accountID string) (insight.AnomalyReport, error)
	HealthScore(ctx context.Context, accountID string) (insight.HealthScore, error)
}

// gatherReport runs the analyses an export needs. Sections without enough
// history are left out; any other failure aborts the export.
func gatherReport(ctx context.Context, src reportSource, accountID string, now time.Time) (sheets.ReportInput, error) {
	in := sheets.ReportInput{GeneratedAt: now, AccountID: accountID}

	skip := func(section string, err error) error {
		if insight.IsInsufficientData(err) {
			slog.Warn("Skipping report section", "section", section, "reason", err)
			return nil
		}
		return explain(err)
	}

	monthly, err := src.MonthlyPatterns(ctx, accountID)
	if err != nil {
		if err := skip("monthly", err); err != nil {
			return in, err
		}
	} else {
		in.Monthly = &monthly
	}

	recurring, err := src.RecurringPayments(ctx, accountID)
	if err != nil {
		if err := skip("recurring", err); err != nil {
			return in, err
		}
	}
	in.Recurring = recurring

	anomalies, err := src.Anomalies(ctx, accountID)
	if err != nil {
		if err := skip("anomalies", err); err != nil {
			return in, err
		}
	} else {
		in.Anomalies = &anomalies
	}

	health, err := src.HealthScore(ctx, accountID)
	if err != nil {
		if err := skip("health", err); err != nil {
			return in, err
		}
	} else {
		in.Health = &health
	}

	return in, nil
}
