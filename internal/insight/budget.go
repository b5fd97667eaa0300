package insight

import (
	"math"
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/spice-insights/internal/model"
)

// EvaluateBudgets compares current-month outflow per category to each budget.
// spend maps category name to the amount spent this month.
func EvaluateBudgets(budgets []model.Budget, spend map[string]float64, cfg *Config) []BudgetStatus {
	cfg = orDefault(cfg)

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := spend[b.Category]
		var usage float64
		if b.MonthlyLimit > 0 {
			usage = spent / b.MonthlyLimit * 100
		}

		state := BudgetSafe
		switch {
		case usage >= 100:
			state = BudgetExceeded
		case usage >= cfg.BudgetWarningPct:
			state = BudgetWarning
		}

		statuses = append(statuses, BudgetStatus{
			Category:  b.Category,
			State:     state,
			Spent:     spent,
			Limit:     b.MonthlyLimit,
			UsagePct:  usage,
			Remaining: math.Max(0, b.MonthlyLimit-spent),
		})
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Category < statuses[j].Category
	})
	return statuses
}

// SpendByCategory sums outflow per category.
func SpendByCategory(txns []model.Transaction) map[string]float64 {
	out := make(map[string]float64)
	for _, t := range txns {
		if t.IsOutflow() {
			out[t.CategoryName()] += t.AmountOut
		}
	}
	return out
}

var alertPrinter = message.NewPrinter(language.English)

// BudgetAlerts returns alert data for budgets in warning or exceeded state.
func BudgetAlerts(accountID string, statuses []BudgetStatus, now time.Time) []model.Alert {
	var alerts []model.Alert
	for _, s := range statuses {
		var a model.Alert
		switch s.State {
		case BudgetExceeded:
			a.Type = model.AlertBudgetExceeded
			a.Message = alertPrinter.Sprintf("Budget exceeded for %s! Spent %.0f (limit: %.0f)", s.Category, s.Spent, s.Limit)
		case BudgetWarning:
			a.Type = model.AlertBudgetWarning
			a.Message = alertPrinter.Sprintf("Budget warning for %s: %.1f%% used", s.Category, s.UsagePct)
		default:
			continue
		}
		spent := s.Spent
		category := s.Category
		a.AccountID = accountID
		a.Amount = &spent
		a.Category = &category
		a.CreatedAt = now
		alerts = append(alerts, a)
	}
	return alerts
}

// AnomalyAlerts returns alert data for high-severity anomalies.
func AnomalyAlerts(accountID string, anomalies []Anomaly, now time.Time) []model.Alert {
	var alerts []model.Alert
	for _, an := range anomalies {
		if an.Severity != SeverityHigh {
			continue
		}
		amount := an.Amount
		alerts = append(alerts, model.Alert{
			AccountID: accountID,
			Type:      model.AlertAnomalyHigh,
			Message: alertPrinter.Sprintf("Unusual spending on %s: %.0f (%.0f above your daily average)",
				an.Date.Format(dayLayout), an.Amount, an.DeviationFromMean),
			Amount:    &amount,
			CreatedAt: now,
		})
	}
	return alerts
}
