package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/model"
)

var day = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestMoney(t *testing.T) {
	f := NewFormatter()

	tests := []struct {
		want   string
		amount float64
	}{
		{"$0.00", 0},
		{"$12.50", 12.5},
		{"$1,234.56", 1234.56},
		{"$1,000,000.00", 1e6},
		{"-$42.10", -42.1},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Money(tt.amount))
		})
	}
}

func TestFormatHealth(t *testing.T) {
	f := NewFormatter()
	out := f.FormatHealth(insight.HealthScore{
		Grade: insight.GradeC,
		Total: 72.5,
		Components: insight.HealthComponents{
			BudgetAdherence:       30,
			SpendingConsistency:   12.5,
			SavingsRate:           20,
			TransactionRegularity: 10,
		},
		Recommendations: []string{insight.RecommendConsistency},
	})

	assert.Contains(t, out, "Grade")
	assert.Contains(t, out, "72.5 / 100")
	assert.Contains(t, out, "Budget adherence")
	assert.Contains(t, out, "30.0 / 30")
	assert.Contains(t, out, "Transaction regularity")
	assert.Contains(t, out, insight.RecommendConsistency)
}

func TestFormatRecurring(t *testing.T) {
	f := NewFormatter()

	assert.Contains(t, f.FormatRecurring(nil), "No recurring payments detected")

	next := day.AddDate(0, 1, 0)
	out := f.FormatRecurring([]insight.RecurringSeries{
		{
			MerchantKey:     "netflix",
			Frequency:       insight.FrequencyMonthly,
			AverageAmount:   15.99,
			OccurrenceCount: 6,
			Confidence:      0.95,
			NextExpected:    &next,
		},
		{
			MerchantKey:     "gym",
			Frequency:       insight.FrequencyWeekly,
			AverageAmount:   12,
			OccurrenceCount: 8,
			Confidence:      0.75,
		},
	})

	assert.Contains(t, out, "netflix")
	assert.Contains(t, out, "Apr 15, 2024")
	assert.Contains(t, out, "$15.99")
	// 15.99 + 12*52/12
	assert.Contains(t, out, "$67.99")
}

func TestFormatAnomalies(t *testing.T) {
	f := NewFormatter()

	quiet := f.FormatAnomalies(insight.AnomalyReport{Days: 20, Mean: 40, StdDev: 5, Threshold: 50})
	assert.Contains(t, quiet, "No unusual spending days")
	assert.Contains(t, quiet, "20 days")

	out := f.FormatAnomalies(insight.AnomalyReport{
		Days:      30,
		Mean:      50,
		StdDev:    10,
		Threshold: 70,
		Anomalies: []insight.Anomaly{
			{Date: day, Severity: insight.SeverityHigh, Amount: 1500, DeviationFromMean: 1450, TransactionCount: 2},
		},
	})
	assert.Contains(t, out, "Mar 15, 2024")
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "$1,500.00")
	assert.Contains(t, out, "+$1,450.00")
}

func TestFormatBudgets(t *testing.T) {
	f := NewFormatter()

	assert.Contains(t, f.FormatBudgets(nil), "No budgets configured")

	out := f.FormatBudgets([]insight.BudgetStatus{
		{Category: "Dining", State: insight.BudgetExceeded, Spent: 250, Limit: 200, UsagePct: 125, Remaining: 0},
		{Category: "Groceries", State: insight.BudgetSafe, Spent: 100, Limit: 400, UsagePct: 25, Remaining: 300},
	})
	assert.Contains(t, out, "Dining")
	assert.Contains(t, out, "125.0%")
	assert.Contains(t, out, "exceeded")
	assert.Contains(t, out, "$300.00")
}

func TestFormatCategories(t *testing.T) {
	f := NewFormatter()

	insights := make([]insight.CategoryInsight, 0, 12)
	for i := 0; i < 12; i++ {
		insights = append(insights, insight.CategoryInsight{
			Category:  string(rune('A' + i)),
			Trend:     insight.TrendIncreasing,
			Recent:    110,
			Previous:  100,
			ChangePct: 10,
		})
	}

	out := f.FormatCategories(insights)
	assert.Contains(t, out, "+10.0%")
	assert.Contains(t, out, "... and 2 more categories")
}

func TestFormatDailyEmptyAndPopulated(t *testing.T) {
	f := NewFormatter()

	assert.Contains(t, f.FormatDaily(insight.DailyPatterns{AnalysisPeriod: "x"}), "No spending in this period")

	out := f.FormatDaily(insight.DailyPatterns{
		AnalysisPeriod:    "2024-01-01 to 2024-03-31",
		TotalTransactions: 3,
		Weekdays: []insight.PeriodBucket{
			{Key: "Monday", Count: 2, Total: 60, Mean: 30, Median: 30},
		},
		Hours: []insight.PeriodBucket{
			{Key: "9", Count: 1, Total: 20, Mean: 20, Median: 20},
		},
		TopTransactions: []insight.TopTransaction{
			{Date: day, Description: "Hardware Store", Category: "Home", Amount: 2200},
		},
	})
	assert.Contains(t, out, "2024-01-01 to 2024-03-31")
	assert.Contains(t, out, "Monday")
	assert.Contains(t, out, "Hardware Store")
	assert.Contains(t, out, "$2,200.00")
	assert.Contains(t, out, "3 transactions analyzed")
}

func TestFormatWeeklyAndMonthly(t *testing.T) {
	f := NewFormatter()

	weekly := f.FormatWeekly(insight.WeeklyPatterns{
		Trend:         insight.TrendDecreasing,
		AverageWeekly: 321.5,
		Weeks: []insight.WeekSummary{
			{FirstDate: day, LastDate: day.AddDate(0, 0, 2), PeriodBucket: insight.PeriodBucket{Key: "2024-W11", Count: 4, Total: 321.5}},
		},
	})
	assert.Contains(t, weekly, "2024-W11")
	assert.Contains(t, weekly, "$321.50")
	assert.Contains(t, weekly, "decreasing")

	monthly := f.FormatMonthly(insight.MonthlyPatterns{
		Months: []insight.MonthSummary{
			{
				PeriodBucket:  insight.PeriodBucket{Key: "2024-03", Count: 10, Total: 1000, Mean: 100},
				TopCategories: []insight.CategoryTotal{{Category: "Rent", Total: 800}, {Category: "Food", Total: 200}},
			},
		},
		Seasonal: []insight.SeasonalMonth{{Month: time.March, AverageSpend: 1000, DataPoints: 1}},
	})
	assert.Contains(t, monthly, "2024-03")
	assert.Contains(t, monthly, "Rent, Food")
	assert.Contains(t, monthly, "March")
}

func TestFormatInsights(t *testing.T) {
	f := NewFormatter()
	next := day.AddDate(0, 0, 3)

	out := f.FormatInsights(insight.PatternInsights{
		HighestDay:            &insight.PeriodBucket{Key: "Saturday", Mean: 80},
		LowestDay:             &insight.PeriodBucket{Key: "Tuesday", Mean: 10},
		Spender:               insight.SpenderWeekend,
		WeeklyTrend:           insight.TrendStable,
		TrendMessage:          "Your weekly spending is consistent",
		RecurringCount:        2,
		HighConfidenceCount:   1,
		RecurringMonthlyTotal: 1215.99,
		Upcoming:              []insight.RecurringSeries{{MerchantKey: "rent", AverageAmount: 1200, NextExpected: &next}},
		Recommendations:       []string{"Review recurring payments for optimization"},
	})

	assert.Contains(t, out, "Saturday")
	assert.Contains(t, out, "weekend spender")
	assert.Contains(t, out, "$1,215.99 per month")
	assert.Contains(t, out, "rent $1,200.00 on Mar 18, 2024")
	assert.Contains(t, out, "Review recurring payments")
}

func TestFormatAlertsAndAccounts(t *testing.T) {
	f := NewFormatter()

	assert.Contains(t, f.FormatAlerts(nil), "No alerts")
	out := f.FormatAlerts([]model.Alert{
		{ID: "a1", CreatedAt: day, Message: "Budget warning for Dining: 85.0% used"},
		{ID: "a2", CreatedAt: day, Message: "older", Read: true},
	})
	assert.Contains(t, out, "Budget warning for Dining")
	assert.Contains(t, out, "[a1]")
	assert.Contains(t, out, "older")

	accounts := f.FormatAccounts([]model.Account{{ID: "acct-1", Name: "Checking", Institution: "OFX", CreatedAt: day}})
	assert.Contains(t, accounts, "acct-1")
	assert.Contains(t, accounts, "2024-03-15")
}

func TestFormatTransactions(t *testing.T) {
	f := NewFormatter()

	assert.Contains(t, f.FormatTransactions(nil), "No transactions")

	groceries := "Groceries"
	out := f.FormatTransactions([]model.Transaction{
		{ID: "t1", Date: day, Description: "WHOLE FOODS", AmountOut: 42.1, Category: &groceries},
		{ID: "t2", Date: day, Description: "PAYROLL", AmountIn: 2500},
	})
	assert.Contains(t, out, "-$42.10")
	assert.Contains(t, out, "$2,500.00")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, model.UncategorizedLabel)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestRenderProgressBarBounds(t *testing.T) {
	s := NewStyles()
	assert.Equal(t, 10, strings.Count(s.RenderProgressBar(1.5, 10), "█"))
	assert.Equal(t, 10, strings.Count(s.RenderProgressBar(-1, 10), "░"))
	half := s.RenderProgressBar(0.5, 0)
	assert.Equal(t, 15, strings.Count(half, "█"))
	assert.Equal(t, 15, strings.Count(half, "░"))
}

func TestFormatRecommendations(t *testing.T) {
	f := NewFormatter()
	out := f.FormatRecommendations([]string{"Review Dining budget", "Use the 50/30/20 budgeting rule"})
	assert.Contains(t, out, "1.")
	assert.Contains(t, out, "Review Dining budget")
	assert.Contains(t, out, "2.")

	assert.Contains(t, f.FormatRecommendations(nil), "No recommendations")
}

func TestFormatProjection(t *testing.T) {
	out := NewFormatter().FormatProjection(insight.Projection{
		Since:           day,
		Days:            7,
		DailySpending:   40,
		DailyIncome:     100,
		MonthlySpending: 1200,
		MonthlyIncome:   3000,
		MonthlySavings:  1800,
	})
	assert.Contains(t, out, "last 7 active days since Mar 15, 2024")
	assert.Contains(t, out, "$1,200.00")
	assert.Contains(t, out, "$1,800.00")
}

func TestFormatSavings(t *testing.T) {
	f := NewFormatter()
	out := f.FormatSavings(insight.SavingsPlan{
		Opportunities: []insight.SavingsOpportunity{
			{Category: "Rent", Reason: insight.SavingsHighSpending, Recent: 1500, MonthlySavings: 150},
		},
		MonthlyTotal: 150,
		AnnualTotal:  1800,
	})
	assert.Contains(t, out, "High spending category")
	assert.Contains(t, out, "$150.00 per month")
	assert.Contains(t, out, "$1,800.00 per year")

	assert.Contains(t, f.FormatSavings(insight.SavingsPlan{}), "No savings opportunities")
}

func TestFormatSnapshot(t *testing.T) {
	snap := insight.NewSnapshot("acc", insight.SnapshotWeekly, day, []insight.PeriodBucket{
		{PeriodType: insight.PeriodISOWeek, Key: "2024-W10", Count: 10, Total: 250, Mean: 25, Median: 20},
	})
	out := NewFormatter().FormatSnapshot(snap)
	assert.Contains(t, out, "Stored Weekly Patterns")
	assert.Contains(t, out, "Computed Mar 15, 2024 12:00")
	assert.Contains(t, out, "2024-W10")
	assert.Contains(t, out, "50.0%")
}
