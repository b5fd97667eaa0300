package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/sheets"
)

type fakeReportSource struct {
	monthlyErr error
	healthErr  error
}

func (f fakeReportSource) MonthlyPatterns(context.Context, string) (insight.MonthlyPatterns, error) {
	return insight.MonthlyPatterns{Months: []insight.MonthSummary{{PeriodBucket: insight.PeriodBucket{Key: "2024-03", Total: 900}}}}, f.monthlyErr
}

func (f fakeReportSource) RecurringPayments(context.Context, string) ([]insight.RecurringSeries, error) {
	return []insight.RecurringSeries{{MerchantKey: "rent", Frequency: insight.FrequencyMonthly, AverageAmount: 1200}}, nil
}

func (f fakeReportSource) Anomalies(context.Context, string) (insight.AnomalyReport, error) {
	return insight.AnomalyReport{}, &insight.InsufficientDataError{Analysis: "anomalies", Reason: "too few days", Have: 4, Need: 10}
}

func (f fakeReportSource) HealthScore(context.Context, string) (insight.HealthScore, error) {
	return insight.HealthScore{Grade: insight.GradeB, Total: 82}, f.healthErr
}

func TestGatherReport(t *testing.T) {
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	in, err := gatherReport(context.Background(), fakeReportSource{}, "acct", now)
	require.NoError(t, err)

	assert.Equal(t, "acct", in.AccountID)
	require.NotNil(t, in.Monthly)
	assert.Len(t, in.Recurring, 1)
	assert.Nil(t, in.Anomalies, "insufficient history skips the section")
	require.NotNil(t, in.Health)

	r := sheets.BuildReport(in)
	assert.Len(t, r.Months, 1)
	assert.Empty(t, r.Anomalies)
}

func TestGatherReportFailsOnOtherErrors(t *testing.T) {
	boom := errors.New("database locked")

	_, err := gatherReport(context.Background(), fakeReportSource{healthErr: boom}, "acct", time.Now())
	assert.ErrorIs(t, err, boom)

	_, err = gatherReport(context.Background(), fakeReportSource{monthlyErr: insight.ErrAccountNotFound}, "acct", time.Now())
	assert.ErrorIs(t, err, insight.ErrAccountNotFound)
}
