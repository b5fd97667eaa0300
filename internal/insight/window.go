package insight

import (
	"sort"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// Window is an inclusive range of calendar dates. A transaction belongs to
// the window when the date of its own local timestamp falls inside it.
type Window struct {
	Start time.Time
	End   time.Time
}

// Lookback returns the window covering today and the preceding days.
func Lookback(now time.Time, days int) Window {
	today := civilDay(now)
	return Window{Start: today.AddDate(0, 0, -days), End: today}
}

// Contains reports whether the calendar date of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	d := civilDay(t)
	return !d.Before(civilDay(w.Start)) && !d.After(civilDay(w.End))
}

// String formats the window as "YYYY-MM-DD to YYYY-MM-DD".
func (w Window) String() string {
	return w.Start.Format("2006-01-02") + " to " + w.End.Format("2006-01-02")
}

// fetchRange widens the window to instants that cover its dates at any UTC
// offset. Sources are queried with it and the result filtered by Contains.
func (w Window) fetchRange() (start, end time.Time) {
	return civilDay(w.Start).AddDate(0, 0, -1), civilDay(w.End).AddDate(0, 0, 2)
}

func monthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// sortedByDate returns a copy of txns in ascending date order. Sources may
// return either order.
func sortedByDate(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func filterWindow(txns []model.Transaction, w Window) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if w.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

func outflows(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.IsOutflow() {
			out = append(out, t)
		}
	}
	return out
}

// civilDay truncates t to its calendar date in UTC so day arithmetic is
// unaffected by DST transitions.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(civilDay(b).Sub(civilDay(a)).Hours() / 24)
}

// DailyTotal is the aggregate outflow for one calendar day.
type DailyTotal struct {
	Date  time.Time
	Total float64
	Count int
}

// dailyOutflowTotals aggregates outflow per calendar day in ascending date
// order. Days without outflow are absent.
func dailyOutflowTotals(txns []model.Transaction) []DailyTotal {
	buckets := aggregateBy(txns, periodDay, dayKey)
	days := make([]DailyTotal, 0, len(buckets))
	for key, b := range buckets {
		date, err := time.Parse(dayLayout, key)
		if err != nil {
			continue
		}
		days = append(days, DailyTotal{Date: date, Total: b.Total, Count: b.Count})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

func totals(days []DailyTotal) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = d.Total
	}
	return out
}
