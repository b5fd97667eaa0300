package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/spice-insights/internal/common"
)

const dateLayout = "2006-01-02"

// ReportWriter exports an insight report.
type ReportWriter interface {
	Write(ctx context.Context, report *Report) error
}

var _ ReportWriter = (*Writer)(nil)

// Writer implements ReportWriter for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}, nil
}

// Write replaces the contents of every report tab.
func (w *Writer) Write(ctx context.Context, report *Report) error {
	w.logger.Info("starting sheets export",
		"account_id", report.AccountID,
		"months", len(report.Months),
		"recurring", len(report.Recurring),
		"anomalies", len(report.Anomalies))

	spreadsheetID, sheetIDs, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     common.DefaultRetryOptions().MaxDelay,
		Multiplier:   2.0,
	}

	tabs := PrepareTabs(report)
	for _, tab := range Tabs {
		values := tabs[tab]
		if clearErr := w.clearSheet(ctx, spreadsheetID, tab); clearErr != nil {
			return fmt.Errorf("failed to clear %s: %w", tab, clearErr)
		}

		err = common.WithRetry(ctx, func() error {
			return w.writeData(ctx, spreadsheetID, tab, values)
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", tab, err)
		}
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, sheetIDs)
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed", "spreadsheet_id", spreadsheetID)
	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet returns the spreadsheet ID and the sheet ID of every
// report tab, creating the spreadsheet or missing tabs as needed.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, map[string]int64, error) {
	if w.config.SpreadsheetID == "" {
		spreadsheet := &sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{
				Title:    w.config.SpreadsheetName,
				TimeZone: w.config.TimeZone,
			},
		}
		for _, tab := range Tabs {
			spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
				Properties: &sheets.SheetProperties{Title: tab},
			})
		}

		created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
		if err != nil {
			return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
		}

		w.logger.Info("created new spreadsheet",
			"id", created.SpreadsheetId,
			"url", created.SpreadsheetUrl)

		return created.SpreadsheetId, sheetIDsByTitle(created.Sheets), nil
	}

	existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}
	ids := sheetIDsByTitle(existing.Sheets)

	var requests []*sheets.Request
	for _, tab := range missingTabs(ids) {
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab}},
		})
	}
	if len(requests) == 0 {
		return w.config.SpreadsheetID, ids, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(w.config.SpreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to add report tabs: %w", err)
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			ids[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
		}
	}
	return w.config.SpreadsheetID, ids, nil
}

func sheetIDsByTitle(list []*sheets.Sheet) map[string]int64 {
	ids := make(map[string]int64, len(list))
	for _, s := range list {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids
}

func missingTabs(ids map[string]int64) []string {
	var missing []string
	for _, tab := range Tabs {
		if _, ok := ids[tab]; !ok {
			missing = append(missing, tab)
		}
	}
	return missing
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID, tab string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, tab+"!A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// writeData writes rows to one tab in batches.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := i + w.config.BatchSize
		if end > len(values) {
			end = len(values)
		}

		batch := values[i:end]
		rangeStr := fmt.Sprintf("%s!A%d", tab, i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", tab, "start_row", i+1, "rows", len(batch))
	}
	return nil
}

// applyFormatting bolds and freezes the header row of every tab.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetIDs map[string]int64) error {
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: formattingRequests(sheetIDs),
	}).Context(ctx).Do()
	return err
}

func formattingRequests(sheetIDs map[string]int64) []*sheets.Request {
	var requests []*sheets.Request
	for _, tab := range Tabs {
		id, ok := sheetIDs[tab]
		if !ok {
			continue
		}
		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{SheetId: id, StartRowIndex: 0, EndRowIndex: 1},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        id,
						GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
			&sheets.Request{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{SheetId: id, Dimension: "COLUMNS", StartIndex: 0, EndIndex: 10},
				},
			},
		)
	}
	return requests
}

// PrepareTabs renders the report into cell values keyed by tab title.
func PrepareTabs(r *Report) map[string][][]any {
	return map[string][][]any{
		TabMonthly:   prepareMonthly(r),
		TabRecurring: prepareRecurring(r),
		TabAnomalies: prepareAnomalies(r),
		TabHealth:    prepareHealth(r),
	}
}

func prepareMonthly(r *Report) [][]any {
	values := make([][]any, 0, len(r.Months)+1)
	values = append(values, []any{"Month", "Total", "Transactions", "Mean", "Median", "Std Dev", "Top Category", "Top Category Total"})
	for _, m := range r.Months {
		values = append(values, []any{
			m.Month,
			m.Total.InexactFloat64(),
			m.Transactions,
			m.Mean.InexactFloat64(),
			m.Median.InexactFloat64(),
			m.StdDev.InexactFloat64(),
			m.TopCategory,
			m.TopCategoryTotal.InexactFloat64(),
		})
	}
	return values
}

func prepareRecurring(r *Report) [][]any {
	values := make([][]any, 0, len(r.Recurring)+3)
	values = append(values, []any{"Merchant", "Category", "Frequency", "Average Amount", "Monthly Cost", "Interval (days)", "Confidence", "Occurrences", "Last Seen", "Next Expected"})
	for _, s := range r.Recurring {
		next := ""
		if s.NextExpected != nil {
			next = s.NextExpected.Format(dateLayout)
		}
		values = append(values, []any{
			s.Merchant,
			s.Category,
			s.Frequency,
			s.AverageAmount.InexactFloat64(),
			s.MonthlyCost.InexactFloat64(),
			s.IntervalDays.InexactFloat64(),
			s.Confidence.InexactFloat64(),
			s.OccurrenceCount,
			s.LastSeen.Format(dateLayout),
			next,
		})
	}
	values = append(values,
		[]any{},
		[]any{"Estimated monthly total", "", "", "", r.RecurringTotal.InexactFloat64()},
	)
	return values
}

func prepareAnomalies(r *Report) [][]any {
	values := make([][]any, 0, len(r.Anomalies)+1)
	values = append(values, []any{"Date", "Severity", "Amount", "Above Average", "Transactions"})
	for _, a := range r.Anomalies {
		values = append(values, []any{
			a.Date.Format(dateLayout),
			a.Severity,
			a.Amount.InexactFloat64(),
			a.AboveAverage.InexactFloat64(),
			a.Transactions,
		})
	}
	return values
}

func prepareHealth(r *Report) [][]any {
	values := make([][]any, 0, len(r.Health)+len(r.Recommendations)+6)
	values = append(values, []any{"Component", "Score", "Max"})
	for _, h := range r.Health {
		values = append(values, []any{h.Component, h.Score.InexactFloat64(), h.Max.InexactFloat64()})
	}
	values = append(values,
		[]any{"Total", r.HealthTotal.InexactFloat64(), 100},
		[]any{"Grade", r.Grade},
	)
	if len(r.Recommendations) > 0 {
		values = append(values, []any{}, []any{"Recommendations"})
		for _, rec := range r.Recommendations {
			values = append(values, []any{rec})
		}
	}
	return values
}
