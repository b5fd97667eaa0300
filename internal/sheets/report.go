package sheets

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-insights/internal/insight"
)

// ReportInput gathers the engine results that make up an export. Nil
// sections are left empty in the spreadsheet.
type ReportInput struct {
	GeneratedAt time.Time
	Monthly     *insight.MonthlyPatterns
	Anomalies   *insight.AnomalyReport
	Health      *insight.HealthScore
	AccountID   string
	Recurring   []insight.RecurringSeries
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// BuildReport converts engine results into spreadsheet rows.
func BuildReport(in ReportInput) *Report {
	r := &Report{
		GeneratedAt: in.GeneratedAt,
		AccountID:   in.AccountID,
	}

	if in.Monthly != nil {
		for _, m := range in.Monthly.Months {
			row := MonthRow{
				Month:        m.Key,
				Total:        money(m.Total),
				Mean:         money(m.Mean),
				Median:       money(m.Median),
				StdDev:       money(m.StdDev),
				Transactions: m.Count,
			}
			if len(m.TopCategories) > 0 {
				row.TopCategory = m.TopCategories[0].Category
				row.TopCategoryTotal = money(m.TopCategories[0].Total)
			}
			r.Months = append(r.Months, row)
		}
	}

	recurringTotal := decimal.Zero
	for _, s := range in.Recurring {
		monthly := money(insight.MonthlyEquivalent(s))
		recurringTotal = recurringTotal.Add(monthly)
		r.Recurring = append(r.Recurring, RecurringRow{
			LastSeen:        s.LastSeen,
			NextExpected:    s.NextExpected,
			Merchant:        s.MerchantKey,
			Category:        s.Category,
			Frequency:       string(s.Frequency),
			AverageAmount:   money(s.AverageAmount),
			MonthlyCost:     monthly,
			IntervalDays:    decimal.NewFromFloat(s.AverageInterval).Round(1),
			Confidence:      decimal.NewFromFloat(s.Confidence).Round(2),
			OccurrenceCount: s.OccurrenceCount,
		})
	}
	r.RecurringTotal = recurringTotal

	if in.Anomalies != nil {
		for _, a := range in.Anomalies.Anomalies {
			r.Anomalies = append(r.Anomalies, AnomalyRow{
				Date:         a.Date,
				Severity:     string(a.Severity),
				Amount:       money(a.Amount),
				AboveAverage: money(a.DeviationFromMean),
				Transactions: a.TransactionCount,
			})
		}
	}

	if in.Health != nil {
		h := in.Health
		r.Grade = string(h.Grade)
		r.HealthTotal = decimal.NewFromFloat(h.Total).Round(1)
		r.Recommendations = append(r.Recommendations, h.Recommendations...)
		r.Health = []HealthRow{
			{Component: "Budget adherence", Score: decimal.NewFromFloat(h.Components.BudgetAdherence).Round(1), Max: decimal.NewFromFloat(insight.MaxBudgetAdherence)},
			{Component: "Spending consistency", Score: decimal.NewFromFloat(h.Components.SpendingConsistency).Round(1), Max: decimal.NewFromFloat(insight.MaxSpendingConsistency)},
			{Component: "Savings rate", Score: decimal.NewFromFloat(h.Components.SavingsRate).Round(1), Max: decimal.NewFromFloat(insight.MaxSavingsRate)},
			{Component: "Transaction regularity", Score: decimal.NewFromFloat(h.Components.TransactionRegularity).Round(1), Max: decimal.NewFromFloat(insight.MaxTransactionRegularity)},
		}
	}

	return r
}
