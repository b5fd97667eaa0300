package insight

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spice-insights/internal/model"
)

func TestScoreHealth_NoBudgetsNoIncome(t *testing.T) {
	// Five outflows over three days with daily totals 100, 200, 300.
	txns := []model.Transaction{
		spend(day(0), 50, "a"),
		spend(day(0).Add(time.Hour), 50, "b"),
		spend(day(1), 200, "c"),
		spend(day(2), 100, "d"),
		spend(day(2).Add(time.Hour), 200, "e"),
	}

	score := ScoreHealth(HealthInput{Window: txns})

	wantConsistency := 25 - (math.Sqrt(20000.0/3)/200)*10
	assert.Equal(t, 0.0, score.Components.BudgetAdherence)
	assert.Equal(t, 0.0, score.Components.SavingsRate)
	assert.Equal(t, 10.0, score.Components.TransactionRegularity)
	assert.InDelta(t, wantConsistency, score.Components.SpendingConsistency, 1e-9)
	assert.Equal(t, score.Components.Sum(), score.Total)
	assert.Equal(t, GradeF, score.Grade)
	assert.Equal(t, []string{RecommendBudget, RecommendSavings, RecommendRegularity}, score.Recommendations)
}

func TestScoreHealth_ThreeTransactions(t *testing.T) {
	txns := []model.Transaction{
		spend(day(0), 100, "a"),
		spend(day(1), 100, "b"),
		spend(day(2), 100, "c"),
	}

	score := ScoreHealth(HealthInput{Window: txns})
	assert.Equal(t, 0.0, score.Components.BudgetAdherence)
	assert.Equal(t, 0.0, score.Components.SavingsRate)
	assert.Equal(t, 0.0, score.Components.TransactionRegularity)
	assert.Equal(t, 25.0, score.Components.SpendingConsistency)
	assert.Equal(t, score.Components.Sum(), score.Total)
}

func TestScoreHealth_PerfectScore(t *testing.T) {
	var txns []model.Transaction
	for i := 0; i < 20; i++ {
		txns = append(txns, spend(day(i), 50, "groceries"))
	}
	txns = append(txns, income(day(0), 5000))

	budgets := []BudgetStatus{
		{Category: "Food", State: BudgetSafe},
		{Category: "Fun", State: BudgetSafe},
	}

	score := ScoreHealth(HealthInput{Window: txns, Budgets: budgets})
	assert.Equal(t, HealthComponents{
		BudgetAdherence:       30,
		SpendingConsistency:   25,
		SavingsRate:           25,
		TransactionRegularity: 20,
	}, score.Components)
	assert.Equal(t, 100.0, score.Total)
	assert.Equal(t, GradeA, score.Grade)
	assert.Empty(t, score.Recommendations)
}

func TestBudgetAdherence(t *testing.T) {
	assert.Zero(t, budgetAdherence(nil))
	assert.Equal(t, 10.0, budgetAdherence([]BudgetStatus{
		{State: BudgetSafe},
		{State: BudgetWarning},
		{State: BudgetExceeded},
	}))
}

func TestSpendingConsistency(t *testing.T) {
	assert.Zero(t, spendingConsistency([]model.Transaction{spend(day(0), 10, "x")}), "one day is not enough")

	// Totals 10 and 1000: cv ~0.98, score ~15.2.
	got := spendingConsistency([]model.Transaction{spend(day(0), 10, "x"), spend(day(1), 1000, "y")})
	assert.InDelta(t, 25-990.0/2/505*10, got, 1e-9)

	// Extremely uneven totals floor at zero.
	var uneven []model.Transaction
	for i := 0; i < 10; i++ {
		uneven = append(uneven, spend(day(i), 1, "x"))
	}
	uneven = append(uneven, spend(day(10), 100000, "y"))
	assert.Zero(t, spendingConsistency(uneven))
}

func TestSavingsRate(t *testing.T) {
	tests := []struct {
		name string
		txns []model.Transaction
		want float64
	}{
		{name: "no income", txns: []model.Transaction{spend(day(0), 10, "x")}, want: 0},
		{name: "negative savings floors at zero", txns: []model.Transaction{income(day(0), 100), spend(day(1), 300, "x")}, want: 0},
		{name: "twenty percent", txns: []model.Transaction{income(day(0), 100), spend(day(1), 80, "x")}, want: 10},
		{name: "half saved earns full marks", txns: []model.Transaction{income(day(0), 100), spend(day(1), 50, "x")}, want: 25},
		{name: "everything saved is capped", txns: []model.Transaction{income(day(0), 100)}, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, savingsRate(tt.txns), 1e-9)
		})
	}
}

func TestTransactionRegularity(t *testing.T) {
	tests := map[int]float64{0: 0, 4: 0, 5: 10, 9: 10, 10: 15, 19: 15, 20: 20, 200: 20}
	for count, want := range tests {
		assert.Equal(t, want, transactionRegularity(count), "count %d", count)
	}
}

func TestGradeFor(t *testing.T) {
	tests := map[float64]Grade{100: GradeA, 85: GradeA, 84.9: GradeB, 70: GradeB, 55: GradeC, 40: GradeD, 39.99: GradeF, 0: GradeF}
	for total, want := range tests {
		assert.Equal(t, want, gradeFor(total), "total %v", total)
	}
}

func TestRecommendations_Order(t *testing.T) {
	recs := recommendations(HealthComponents{})
	assert.Equal(t, []string{RecommendBudget, RecommendConsistency, RecommendSavings, RecommendRegularity}, recs)

	recs = recommendations(HealthComponents{BudgetAdherence: 20, SpendingConsistency: 14.9, SavingsRate: 15, TransactionRegularity: 20})
	assert.Equal(t, []string{RecommendConsistency}, recs)
}
