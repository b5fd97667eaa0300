package insight

import (
	"sort"

	"github.com/Veraticus/spice-insights/internal/model"
)

// CompareCategories reports per-category outflow change between two periods.
// Change is 0 when the category had no previous spending.
func CompareCategories(recent, previous []model.Transaction, cfg *Config) []CategoryInsight {
	cfg = orDefault(cfg)

	recentSpend := SpendByCategory(recent)
	prevSpend := SpendByCategory(previous)

	names := make(map[string]struct{}, len(recentSpend)+len(prevSpend))
	for name := range recentSpend {
		names[name] = struct{}{}
	}
	for name := range prevSpend {
		names[name] = struct{}{}
	}

	insights := make([]CategoryInsight, 0, len(names))
	for name := range names {
		r, p := recentSpend[name], prevSpend[name]
		var change float64
		if p > 0 {
			change = (r - p) / p * 100
		}
		trend := TrendStable
		switch {
		case change > cfg.CategoryChangePct:
			trend = TrendIncreasing
		case change < -cfg.CategoryChangePct:
			trend = TrendDecreasing
		}
		insights = append(insights, CategoryInsight{
			Category:  name,
			Trend:     trend,
			Recent:    r,
			Previous:  p,
			ChangePct: change,
		})
	}

	sort.Slice(insights, func(i, j int) bool {
		if insights[i].Recent != insights[j].Recent {
			return insights[i].Recent > insights[j].Recent
		}
		return insights[i].Category < insights[j].Category
	})
	return insights
}

// topCategories returns the n largest categories by outflow.
func topCategories(txns []model.Transaction, n int) []CategoryTotal {
	spend := SpendByCategory(txns)
	out := make([]CategoryTotal, 0, len(spend))
	for name, total := range spend {
		out = append(out, CategoryTotal{Category: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
