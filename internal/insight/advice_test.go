package insight

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/model"
)

func TestSmartRecommendations_PadsWithGeneralTips(t *testing.T) {
	health := HealthScore{Recommendations: []string{RecommendBudget}}

	recs := SmartRecommendations(health, nil, nil)

	require.Len(t, recs, minRecommendations)
	assert.Equal(t, RecommendBudget, recs[0])
	assert.Equal(t, generalTips[:minRecommendations-1], recs[1:])
}

func TestSmartRecommendations_Specific(t *testing.T) {
	categories := []CategoryInsight{
		{Category: "Dining", Trend: TrendIncreasing, ChangePct: 40},
		{Category: "Travel", Trend: TrendIncreasing, ChangePct: 20},
		{Category: "Rent", Trend: TrendDecreasing, ChangePct: -30},
	}
	budgets := []BudgetStatus{
		{Category: "Dining", State: BudgetExceeded, UsagePct: 112.5},
		{Category: "Fuel", State: BudgetWarning, UsagePct: 90},
	}

	recs := SmartRecommendations(HealthScore{}, categories, budgets)

	assert.Equal(t, "Consider reducing Dining spending - it increased by 40.0%", recs[0])
	assert.Equal(t, "Review Dining budget - you've exceeded the limit by 12.5%", recs[1])
	assert.Equal(t, generalTips[0], recs[2])
	assert.Len(t, recs, minRecommendations)
}

func TestSmartRecommendations_Capped(t *testing.T) {
	var categories []CategoryInsight
	for i := 0; i < 12; i++ {
		categories = append(categories, CategoryInsight{Category: fmt.Sprintf("c%d", i), Trend: TrendIncreasing, ChangePct: 50})
	}

	recs := SmartRecommendations(HealthScore{Recommendations: []string{RecommendSavings}}, categories, nil)

	require.Len(t, recs, maxRecommendations)
	assert.Equal(t, RecommendSavings, recs[0])
}

func TestProjectMonthly_UsesLastActiveDays(t *testing.T) {
	var txns []model.Transaction
	// Two quiet weeks of small spending, then seven active days every other day.
	for i := 0; i < 14; i++ {
		txns = append(txns, spend(day(i), 1, "old"))
	}
	for i := 0; i < 7; i++ {
		txns = append(txns, spend(day(20+2*i), 10, "new"))
	}
	txns = append(txns, income(day(32), 140))

	p, err := ProjectMonthly(txns)
	require.NoError(t, err)

	assert.Equal(t, projectionDays, p.Days)
	assert.Equal(t, civilDay(day(20)), p.Since)
	assert.InDelta(t, 10.0, p.DailySpending, 1e-9)
	assert.InDelta(t, 20.0, p.DailyIncome, 1e-9)
	assert.InDelta(t, 300.0, p.MonthlySpending, 1e-9)
	assert.InDelta(t, 300.0, p.MonthlySavings, 1e-9)
}

func TestProjectMonthly_InsufficientData(t *testing.T) {
	_, err := ProjectMonthly([]model.Transaction{spend(day(0), 5, "x"), spend(day(0), 5, "y")})

	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, 1, ide.Have)
	assert.Equal(t, projectionDays, ide.Need)
}

func TestFindSavings(t *testing.T) {
	categories := []CategoryInsight{
		{Category: "Rent", Trend: TrendStable, Recent: 1200},
		{Category: "Dining", Trend: TrendIncreasing, Recent: 400, ChangePct: 30},
		{Category: "Fuel", Trend: TrendIncreasing, Recent: 100, ChangePct: 15},
		{Category: "Gym", Trend: TrendDecreasing, Recent: 50, ChangePct: -40},
	}

	plan := FindSavings(categories, nil)

	require.Len(t, plan.Opportunities, 2)
	rent, dining := plan.Opportunities[0], plan.Opportunities[1]
	assert.Equal(t, "Rent", rent.Category)
	assert.Equal(t, SavingsHighSpending, rent.Reason)
	assert.InDelta(t, 120.0, rent.MonthlySavings, 1e-9)
	assert.Equal(t, "Dining", dining.Category)
	assert.Equal(t, SavingsRisingFast, dining.Reason)
	assert.InDelta(t, 60.0, dining.MonthlySavings, 1e-9)
	assert.InDelta(t, 180.0, plan.MonthlyTotal, 1e-9)
	assert.InDelta(t, 2160.0, plan.AnnualTotal, 1e-9)
}

func TestFindSavings_KeepsLargestFive(t *testing.T) {
	var categories []CategoryInsight
	for i := 1; i <= 7; i++ {
		categories = append(categories, CategoryInsight{Category: fmt.Sprintf("c%d", i), Recent: float64(1000 + 100*i)})
	}

	plan := FindSavings(categories, nil)

	require.Len(t, plan.Opportunities, maxSavings)
	assert.Equal(t, "c7", plan.Opportunities[0].Category)
	assert.Equal(t, "c3", plan.Opportunities[maxSavings-1].Category)
}

func TestFindSavings_Empty(t *testing.T) {
	plan := FindSavings(nil, nil)
	assert.NotNil(t, plan.Opportunities)
	assert.Zero(t, plan.AnnualTotal)
}
