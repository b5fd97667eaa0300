package insight

import (
	"math"

	"github.com/Veraticus/spice-insights/internal/model"
)

// Component ceilings.
const (
	MaxBudgetAdherence       = 30.0
	MaxSpendingConsistency   = 25.0
	MaxSavingsRate           = 25.0
	MaxTransactionRegularity = 20.0
)

// Recommendation thresholds and messages, in component order.
const (
	budgetRecommendThreshold      = 20.0
	consistencyRecommendThreshold = 15.0
	savingsRecommendThreshold     = 15.0
	regularityRecommendThreshold  = 15.0

	RecommendBudget      = "Set realistic budget limits and track your spending more closely"
	RecommendConsistency = "Try to maintain more consistent daily spending patterns"
	RecommendSavings     = "Increase your savings rate by reducing unnecessary expenses"
	RecommendRegularity  = "Upload your bank statements more regularly for better tracking"
)

// HealthInput is everything the health scorer needs.
type HealthInput struct {
	// Window holds the transactions of the scoring window (typically 30 days).
	Window []model.Transaction
	// Budgets is the current-month status of every configured budget.
	Budgets []BudgetStatus
}

// ScoreHealth combines the four component scores into a graded total.
func ScoreHealth(in HealthInput) HealthScore {
	components := HealthComponents{
		BudgetAdherence:       budgetAdherence(in.Budgets),
		SpendingConsistency:   spendingConsistency(in.Window),
		SavingsRate:           savingsRate(in.Window),
		TransactionRegularity: transactionRegularity(len(in.Window)),
	}

	total := components.Sum()
	return HealthScore{
		Components:      components,
		Total:           total,
		Grade:           gradeFor(total),
		Recommendations: recommendations(components),
	}
}

// budgetAdherence awards credit for budgets below the warning threshold.
// No budgets earns nothing.
func budgetAdherence(budgets []BudgetStatus) float64 {
	if len(budgets) == 0 {
		return 0
	}
	safe := 0
	for _, b := range budgets {
		if b.State == BudgetSafe {
			safe++
		}
	}
	return float64(safe) / float64(len(budgets)) * MaxBudgetAdherence
}

func spendingConsistency(txns []model.Transaction) float64 {
	values := totals(dailyOutflowTotals(txns))
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	cv := 1.0
	if m > 0 {
		cv = populationStdDev(values) / m
	}
	return math.Min(MaxSpendingConsistency, math.Max(0, MaxSpendingConsistency-cv*10))
}

func savingsRate(txns []model.Transaction) float64 {
	var income, spending float64
	for _, t := range txns {
		income += t.AmountIn
		spending += t.AmountOut
	}
	if income <= 0 {
		return 0
	}
	rate := (income - spending) / income * 100
	return clamp(rate*0.5, 0, MaxSavingsRate)
}

// transactionRegularity is a step function of the transaction count.
func transactionRegularity(count int) float64 {
	switch {
	case count >= 20:
		return 20
	case count >= 10:
		return 15
	case count >= 5:
		return 10
	default:
		return 0
	}
}

func gradeFor(total float64) Grade {
	switch {
	case total >= 85:
		return GradeA
	case total >= 70:
		return GradeB
	case total >= 55:
		return GradeC
	case total >= 40:
		return GradeD
	default:
		return GradeF
	}
}

func recommendations(c HealthComponents) []string {
	recs := []string{}
	if c.BudgetAdherence < budgetRecommendThreshold {
		recs = append(recs, RecommendBudget)
	}
	if c.SpendingConsistency < consistencyRecommendThreshold {
		recs = append(recs, RecommendConsistency)
	}
	if c.SavingsRate < savingsRecommendThreshold {
		recs = append(recs, RecommendSavings)
	}
	if c.TransactionRegularity < regularityRecommendThreshold {
		recs = append(recs, RecommendRegularity)
	}
	return recs
}
