package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/model"
)

func TestEvaluateBudgets(t *testing.T) {
	budgets := []model.Budget{
		{Category: "Food", MonthlyLimit: 1000},
		{Category: "Transport", MonthlyLimit: 500},
		{Category: "Fun", MonthlyLimit: 200},
		{Category: "Gifts", MonthlyLimit: 0},
	}
	spend := map[string]float64{"Food": 1200, "Transport": 400, "Fun": 50}

	statuses := EvaluateBudgets(budgets, spend, nil)
	require.Len(t, statuses, 4)

	byCategory := make(map[string]BudgetStatus)
	for _, s := range statuses {
		byCategory[s.Category] = s
	}

	assert.Equal(t, BudgetExceeded, byCategory["Food"].State)
	assert.Equal(t, 0.0, byCategory["Food"].Remaining)
	assert.InDelta(t, 120.0, byCategory["Food"].UsagePct, 1e-9)

	assert.Equal(t, BudgetWarning, byCategory["Transport"].State)
	assert.Equal(t, 100.0, byCategory["Transport"].Remaining)

	assert.Equal(t, BudgetSafe, byCategory["Fun"].State)
	assert.Equal(t, 150.0, byCategory["Fun"].Remaining)

	assert.Equal(t, BudgetSafe, byCategory["Gifts"].State)
	assert.Zero(t, byCategory["Gifts"].UsagePct)

	assert.Equal(t, "Food", statuses[0].Category)
}

func TestEvaluateBudgets_WarningBoundary(t *testing.T) {
	statuses := EvaluateBudgets([]model.Budget{{Category: "Food", MonthlyLimit: 100}}, map[string]float64{"Food": 80}, nil)
	require.Len(t, statuses, 1)
	assert.Equal(t, BudgetWarning, statuses[0].State)
}

func TestSpendByCategory(t *testing.T) {
	txns := []model.Transaction{
		withCategory(spend(day(0), 10, "a"), "Food"),
		withCategory(spend(day(1), 15, "b"), "Food"),
		spend(day(1), 7, "c"),
		income(day(2), 1000),
	}
	got := SpendByCategory(txns)
	assert.Equal(t, map[string]float64{"Food": 25, model.UncategorizedLabel: 7}, got)
}

func TestBudgetAlerts(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	statuses := []BudgetStatus{
		{Category: "Food", State: BudgetExceeded, Spent: 1200, Limit: 1000, UsagePct: 120},
		{Category: "Transport", State: BudgetWarning, Spent: 400, Limit: 500, UsagePct: 80},
		{Category: "Fun", State: BudgetSafe, Spent: 10, Limit: 200, UsagePct: 5},
	}

	alerts := BudgetAlerts("acc-1", statuses, now)
	require.Len(t, alerts, 2)

	assert.Equal(t, model.AlertBudgetExceeded, alerts[0].Type)
	assert.Equal(t, "Budget exceeded for Food! Spent 1,200 (limit: 1,000)", alerts[0].Message)
	require.NotNil(t, alerts[0].Amount)
	assert.Equal(t, 1200.0, *alerts[0].Amount)
	require.NotNil(t, alerts[0].Category)
	assert.Equal(t, "Food", *alerts[0].Category)
	assert.Equal(t, "acc-1", alerts[0].AccountID)
	assert.Equal(t, now, alerts[0].CreatedAt)

	assert.Equal(t, model.AlertBudgetWarning, alerts[1].Type)
	assert.Equal(t, "Budget warning for Transport: 80.0% used", alerts[1].Message)
}

func TestAnomalyAlerts(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	anomalies := []Anomaly{
		{Date: civilDay(day(3)), Amount: 1500, DeviationFromMean: 1300, Severity: SeverityHigh},
		{Date: civilDay(day(2)), Amount: 300, DeviationFromMean: 100, Severity: SeverityMedium},
	}

	alerts := AnomalyAlerts("acc-1", anomalies, now)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertAnomalyHigh, alerts[0].Type)
	assert.Equal(t, "Unusual spending on 2024-01-04: 1,500 (1,300 above your daily average)", alerts[0].Message)
	assert.Nil(t, alerts[0].Category)
}
