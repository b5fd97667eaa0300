package insight

import (
	"sort"
	"strconv"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

const (
	topTransactionLimit = 5
	topCategoryLimit    = 5
)

// AnalyzeDaily computes weekday and hour buckets and the largest outflows of
// the transactions inside w.
func AnalyzeDaily(txns []model.Transaction, w Window) DailyPatterns {
	inWindow := filterWindow(sortedByDate(txns), w)

	return DailyPatterns{
		Period:            w,
		AnalysisPeriod:    w.String(),
		Weekdays:          SortedBuckets(aggregateBy(inWindow, PeriodWeekday, weekdayKey)),
		Hours:             SortedBuckets(aggregateBy(inWindow, PeriodHour, hourKey)),
		TopTransactions:   topTransactions(inWindow, topTransactionLimit),
		TotalTransactions: len(inWindow),
	}
}

func topTransactions(txns []model.Transaction, n int) []TopTransaction {
	out := make([]TopTransaction, 0, len(txns))
	for _, t := range outflows(txns) {
		out = append(out, TopTransaction{
			Date:        t.Date,
			Description: t.Description,
			Category:    t.CategoryName(),
			Amount:      t.AmountOut,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// AnalyzeWeekly computes ISO-week buckets and the trend of weekly totals.
func AnalyzeWeekly(txns []model.Transaction, w Window, cfg *Config) WeeklyPatterns {
	inWindow := filterWindow(sortedByDate(txns), w)
	buckets := SortedBuckets(aggregateBy(inWindow, PeriodISOWeek, isoWeekKey))

	first := make(map[string]time.Time)
	last := make(map[string]time.Time)
	for _, t := range outflows(inWindow) {
		k := isoWeekKey(t.Date)
		if _, ok := first[k]; !ok {
			first[k] = civilDay(t.Date)
		}
		last[k] = civilDay(t.Date)
	}

	weeks := make([]WeekSummary, len(buckets))
	for i, b := range buckets {
		weeks[i] = WeekSummary{PeriodBucket: b, FirstDate: first[b.Key], LastDate: last[b.Key]}
	}

	weeklyTotals := bucketTotals(buckets)
	return WeeklyPatterns{
		Period:         w,
		AnalysisPeriod: w.String(),
		Weeks:          weeks,
		Trend:          EstimateTrend(weeklyTotals, cfg),
		AverageWeekly:  mean(weeklyTotals),
	}
}

// AnalyzeMonthly computes month buckets, their top categories and the
// average spend per month of the year.
func AnalyzeMonthly(txns []model.Transaction, w Window) MonthlyPatterns {
	inWindow := filterWindow(sortedByDate(txns), w)
	buckets := SortedBuckets(aggregateBy(inWindow, PeriodMonth, monthKey))

	byMonth := make(map[string][]model.Transaction)
	for _, t := range outflows(inWindow) {
		k := monthKey(t.Date)
		byMonth[k] = append(byMonth[k], t)
	}

	months := make([]MonthSummary, len(buckets))
	for i, b := range buckets {
		months[i] = MonthSummary{PeriodBucket: b, TopCategories: topCategories(byMonth[b.Key], topCategoryLimit)}
	}

	return MonthlyPatterns{
		Period:         w,
		AnalysisPeriod: w.String(),
		Months:         months,
		Seasonal:       Seasonal(buckets),
	}
}

// Seasonal averages month bucket totals by month of the year.
func Seasonal(monthBuckets []PeriodBucket) []SeasonalMonth {
	grouped := make(map[time.Month][]float64)
	for _, b := range monthBuckets {
		if len(b.Key) < 7 {
			continue
		}
		n, err := strconv.Atoi(b.Key[5:7])
		if err != nil || n < 1 || n > 12 {
			continue
		}
		grouped[time.Month(n)] = append(grouped[time.Month(n)], b.Total)
	}

	out := make([]SeasonalMonth, 0, len(grouped))
	for m, values := range grouped {
		out = append(out, SeasonalMonth{Month: m, AverageSpend: mean(values), DataPoints: len(values)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
