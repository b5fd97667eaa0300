package insight

import (
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

const (
	minRecommendations   = 5
	maxRecommendations   = 8
	recommendIncreasePct = 25.0

	projectionDays      = 7
	projectionMonthDays = 30

	savingsHighRate   = 0.10
	savingsRisingRate = 0.15
	savingsRisingPct  = 20.0
	maxSavings        = 5
)

var generalTips = []string{
	"Track daily expenses to increase awareness",
	"Set up automatic savings transfers",
	"Review and cancel unused subscriptions",
	"Use the 50/30/20 budgeting rule",
	"Build an emergency fund covering 6 months of expenses",
	"Invest in financial education and skills",
}

// SmartRecommendations merges the health recommendations with advice drawn
// from fast-growing categories and exceeded budgets. The list is padded with
// general tips to at least five entries and capped at eight.
func SmartRecommendations(health HealthScore, categories []CategoryInsight, budgets []BudgetStatus) []string {
	recs := append([]string{}, health.Recommendations...)

	for _, c := range categories {
		if c.Trend == TrendIncreasing && c.ChangePct > recommendIncreasePct {
			recs = append(recs, fmt.Sprintf("Consider reducing %s spending - it increased by %.1f%%", c.Category, c.ChangePct))
		}
	}
	for _, b := range budgets {
		if b.State == BudgetExceeded {
			recs = append(recs, fmt.Sprintf("Review %s budget - you've exceeded the limit by %.1f%%", b.Category, b.UsagePct-100))
		}
	}

	if missing := minRecommendations - len(recs); missing > 0 {
		recs = append(recs, generalTips[:missing]...)
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// Projection extrapolates a 30-day month from the last seven active days.
type Projection struct {
	Since           time.Time `json:"since"`
	Days            int       `json:"days"`
	DailySpending   float64   `json:"daily_spending"`
	DailyIncome     float64   `json:"daily_income"`
	MonthlySpending float64   `json:"projected_monthly_spending"`
	MonthlyIncome   float64   `json:"projected_monthly_income"`
	MonthlySavings  float64   `json:"projected_monthly_savings"`
}

// ProjectMonthly averages spending and income over the seven most recent
// dates that carry any transaction. Dates without activity are skipped, not
// counted as zero.
func ProjectMonthly(txns []model.Transaction) (Projection, error) {
	type flow struct{ out, in float64 }
	byDay := make(map[time.Time]*flow)
	for _, t := range txns {
		d := civilDay(t.Date)
		f, ok := byDay[d]
		if !ok {
			f = &flow{}
			byDay[d] = f
		}
		f.out += t.AmountOut
		f.in += t.AmountIn
	}
	if len(byDay) < projectionDays {
		return Projection{}, insufficient("projection", "not enough active days", len(byDay), projectionDays)
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	days = days[len(days)-projectionDays:]

	var out, in float64
	for _, d := range days {
		out += byDay[d].out
		in += byDay[d].in
	}

	p := Projection{
		Since:         days[0],
		Days:          projectionDays,
		DailySpending: out / projectionDays,
		DailyIncome:   in / projectionDays,
	}
	p.MonthlySpending = p.DailySpending * projectionMonthDays
	p.MonthlyIncome = p.DailyIncome * projectionMonthDays
	p.MonthlySavings = p.MonthlyIncome - p.MonthlySpending
	return p, nil
}

// SavingsReason says why a category was flagged.
type SavingsReason string

const (
	SavingsHighSpending SavingsReason = "high_spending"
	SavingsRisingFast   SavingsReason = "rapidly_increasing"
)

// SavingsOpportunity is one category with an estimated monthly saving.
type SavingsOpportunity struct {
	Category       string        `json:"category"`
	Reason         SavingsReason `json:"reason"`
	Recent         float64       `json:"current_spending"`
	MonthlySavings float64       `json:"potential_monthly_savings"`
}

// SavingsPlan lists the largest savings opportunities with their totals.
type SavingsPlan struct {
	Opportunities []SavingsOpportunity `json:"opportunities"`
	MonthlyTotal  float64              `json:"monthly_total"`
	AnnualTotal   float64              `json:"annual_total"`
}

// FindSavings flags categories whose recent spend exceeds the high-spend
// threshold (10% saving) or that grew by more than 20% (15% saving). The
// five largest savings are kept.
func FindSavings(categories []CategoryInsight, cfg *Config) SavingsPlan {
	cfg = orDefault(cfg)

	opps := make([]SavingsOpportunity, 0)
	for _, c := range categories {
		switch {
		case c.Recent > cfg.SavingsHighSpend:
			opps = append(opps, SavingsOpportunity{
				Category:       c.Category,
				Reason:         SavingsHighSpending,
				Recent:         c.Recent,
				MonthlySavings: c.Recent * savingsHighRate,
			})
		case c.Trend == TrendIncreasing && c.ChangePct > savingsRisingPct:
			opps = append(opps, SavingsOpportunity{
				Category:       c.Category,
				Reason:         SavingsRisingFast,
				Recent:         c.Recent,
				MonthlySavings: c.Recent * savingsRisingRate,
			})
		}
	}

	sort.SliceStable(opps, func(i, j int) bool {
		if opps[i].MonthlySavings != opps[j].MonthlySavings {
			return opps[i].MonthlySavings > opps[j].MonthlySavings
		}
		return opps[i].Category < opps[j].Category
	})
	if len(opps) > maxSavings {
		opps = opps[:maxSavings]
	}

	plan := SavingsPlan{Opportunities: opps}
	for _, o := range opps {
		plan.MonthlyTotal += o.MonthlySavings
	}
	plan.AnnualTotal = plan.MonthlyTotal * 12
	return plan
}
