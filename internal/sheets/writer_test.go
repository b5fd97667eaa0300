package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/spice-insights/internal/insight"
)

var exportTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func sampleInput() ReportInput {
	next := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	return ReportInput{
		GeneratedAt: exportTime,
		AccountID:   "acc1",
		Monthly: &insight.MonthlyPatterns{
			Months: []insight.MonthSummary{
				{
					PeriodBucket:  insight.PeriodBucket{PeriodType: insight.PeriodMonth, Key: "2024-04", Total: 1234.567, Mean: 41.15, Median: 30, StdDev: 12.3456, Count: 30},
					TopCategories: []insight.CategoryTotal{{Category: "Groceries", Total: 400.005}},
				},
				{
					PeriodBucket: insight.PeriodBucket{PeriodType: insight.PeriodMonth, Key: "2024-05", Total: 99, Mean: 99, Median: 99, Count: 1},
				},
			},
		},
		Recurring: []insight.RecurringSeries{
			{MerchantKey: "netflix", Category: "Entertainment", Frequency: insight.FrequencyMonthly, AverageAmount: 15.99, AverageInterval: 30.33, Confidence: 0.954, OccurrenceCount: 6, LastSeen: next.AddDate(0, -1, 0), NextExpected: &next},
			{MerchantKey: "gym", Category: "Fitness", Frequency: insight.FrequencyWeekly, AverageAmount: 10, AverageInterval: 7, Confidence: 0.8, OccurrenceCount: 8, LastSeen: next},
		},
		Anomalies: &insight.AnomalyReport{
			Anomalies: []insight.Anomaly{{Date: next, Severity: insight.SeverityHigh, Amount: 500, DeviationFromMean: 400, TransactionCount: 3}},
		},
		Health: &insight.HealthScore{
			Grade:           insight.GradeB,
			Total:           82.44,
			Components:      insight.HealthComponents{BudgetAdherence: 30, SpendingConsistency: 20.44, SavingsRate: 17, TransactionRegularity: 15},
			Recommendations: []string{"Increase savings"},
		},
	}
}

func TestBuildReport(t *testing.T) {
	r := BuildReport(sampleInput())

	require.Len(t, r.Months, 2)
	assert.Equal(t, "2024-04", r.Months[0].Month)
	assert.Equal(t, "1234.57", r.Months[0].Total.String())
	assert.Equal(t, "Groceries", r.Months[0].TopCategory)
	assert.Equal(t, "", r.Months[1].TopCategory)

	require.Len(t, r.Recurring, 2)
	assert.Equal(t, "15.99", r.Recurring[0].AverageAmount.String())
	assert.Equal(t, "0.95", r.Recurring[0].Confidence.String())
	// Weekly series count 52/12 times per month
	assert.Equal(t, "43.33", r.Recurring[1].MonthlyCost.String())
	assert.True(t, r.RecurringTotal.Equal(r.Recurring[0].MonthlyCost.Add(r.Recurring[1].MonthlyCost)))

	require.Len(t, r.Anomalies, 1)
	assert.Equal(t, "high", r.Anomalies[0].Severity)

	assert.Equal(t, "B", r.Grade)
	assert.Equal(t, "82.4", r.HealthTotal.String())
	require.Len(t, r.Health, 4)
	assert.Equal(t, "30", r.Health[0].Max.String())
}

func TestBuildReport_EmptySections(t *testing.T) {
	r := BuildReport(ReportInput{AccountID: "acc1"})

	assert.Empty(t, r.Months)
	assert.Empty(t, r.Recurring)
	assert.Empty(t, r.Anomalies)
	assert.Empty(t, r.Health)
	assert.True(t, r.RecurringTotal.IsZero())

	tabs := PrepareTabs(r)
	for _, tab := range Tabs {
		assert.NotEmpty(t, tabs[tab], "tab %s should at least have a header", tab)
	}
}

func TestPrepareTabs(t *testing.T) {
	tabs := PrepareTabs(BuildReport(sampleInput()))

	monthly := tabs[TabMonthly]
	require.Len(t, monthly, 3)
	assert.Equal(t, "Month", monthly[0][0])
	assert.Equal(t, []any{"2024-04", 1234.57, 30, 41.15, 30.0, 12.35, "Groceries", 400.01}, monthly[1])

	recurring := tabs[TabRecurring]
	assert.Equal(t, "netflix", recurring[1][0])
	assert.Equal(t, "2024-06-15", recurring[1][9])
	assert.Equal(t, "", recurring[2][9])
	assert.Equal(t, "Estimated monthly total", recurring[len(recurring)-1][0])

	anomalies := tabs[TabAnomalies]
	require.Len(t, anomalies, 2)
	assert.Equal(t, []any{"2024-06-15", "high", 500.0, 400.0, 3}, anomalies[1])

	health := tabs[TabHealth]
	assert.Equal(t, []any{"Grade", "B"}, health[6])
	assert.Equal(t, []any{"Increase savings"}, health[len(health)-1])
}

func TestMissingTabsAndFormatting(t *testing.T) {
	ids := map[string]int64{TabMonthly: 0, TabHealth: 7}
	assert.Equal(t, []string{TabRecurring, TabAnomalies}, missingTabs(ids))

	requests := formattingRequests(ids)
	assert.Len(t, requests, 6)

	all := sheetIDsByTitle([]*sheets.Sheet{
		{Properties: &sheets.SheetProperties{Title: TabMonthly, SheetId: 1}},
		{Properties: nil},
	})
	assert.Equal(t, map[string]int64{TabMonthly: 1}, all)
}

func TestCallbackHandler(t *testing.T) {
	codes := make(chan string, 1)
	errs := make(chan error, 1)
	handler := callbackHandler("expected", codes, errs)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=wrong&code=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Error(t, <-errs)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=expected&code=abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", <-codes)
}

func TestMockWriter(t *testing.T) {
	m := NewMockWriter()
	report := BuildReport(sampleInput())

	require.NoError(t, m.Write(context.Background(), report))
	assert.Equal(t, 1, m.WriteCalls)
	assert.Same(t, report, m.LastReport)
}
