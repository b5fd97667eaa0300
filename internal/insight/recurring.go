package insight

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/Veraticus/spice-insights/internal/model"
)

const maxMerchantKeyLen = 50

// NormalizeDescription reduces a transaction description to a merchant key:
// lower case, without digits or punctuation, single-spaced, at most 50 runes.
// Letters, other numerals and underscores are kept as word characters.
// Distinct merchants sharing a long text prefix collapse into one key.
func NormalizeDescription(description string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(description) {
		switch {
		case unicode.IsDigit(r):
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r), r == '_':
			b.WriteRune(r)
		}
	}

	key := strings.Join(strings.Fields(b.String()), " ")
	if runes := []rune(key); len(runes) > maxMerchantKeyLen {
		key = strings.TrimSpace(string(runes[:maxMerchantKeyLen]))
	}
	return key
}

// SeriesAnalysis is the interval analysis of one merchant group.
type SeriesAnalysis struct {
	Series      RecurringSeries
	Consistency float64
	IsRecurring bool
}

// AnalyzeGroup measures the interval regularity of transactions that share a
// merchant key. The group is recurring when its consistency exceeds the
// configured threshold and it has enough members.
func AnalyzeGroup(merchantKey string, group []model.Transaction, cfg *Config) SeriesAnalysis {
	cfg = orDefault(cfg)
	sorted := sortedByDate(group)

	intervals := make([]float64, 0, len(sorted))
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, float64(daysBetween(sorted[i-1].Date, sorted[i].Date)))
	}

	meanInterval := mean(intervals)
	var consistency float64
	if meanInterval > 0 {
		consistency = 1 - populationStdDev(intervals)/meanInterval
	}

	recurring := len(intervals) > 0 &&
		consistency > cfg.RecurringConsistency &&
		len(sorted) >= cfg.RecurringMinOccurrences

	series := RecurringSeries{
		MerchantKey:     merchantKey,
		Category:        dominantCategory(sorted),
		Frequency:       classifyFrequency(meanInterval),
		AverageAmount:   mean(outflowAmounts(sorted)),
		AverageInterval: meanInterval,
		Confidence:      clamp(consistency, 0, 1),
		OccurrenceCount: len(sorted),
	}
	if len(sorted) > 0 {
		series.LastSeen = civilDay(sorted[len(sorted)-1].Date)
	}
	if recurring {
		next := series.LastSeen.AddDate(0, 0, int(math.Round(meanInterval)))
		series.NextExpected = &next
	}

	return SeriesAnalysis{Series: series, Consistency: consistency, IsRecurring: recurring}
}

func classifyFrequency(meanInterval float64) Frequency {
	switch {
	case meanInterval <= 7:
		return FrequencyWeekly
	case meanInterval <= 31:
		return FrequencyMonthly
	case meanInterval <= 93:
		return FrequencyQuarterly
	default:
		return FrequencyIrregular
	}
}

// GroupByMerchant groups outflow transactions by normalized description.
func GroupByMerchant(txns []model.Transaction) map[string][]model.Transaction {
	groups := make(map[string][]model.Transaction)
	for _, t := range txns {
		if !t.IsOutflow() {
			continue
		}
		key := NormalizeDescription(t.Description)
		groups[key] = append(groups[key], t)
	}
	return groups
}

// DetectRecurring returns the recurring series found among the outflow
// transactions, highest confidence first. The result depends only on txns.
func DetectRecurring(txns []model.Transaction, cfg *Config) []RecurringSeries {
	cfg = orDefault(cfg)

	var series []RecurringSeries
	for key, group := range GroupByMerchant(txns) {
		if len(group) < cfg.RecurringMinOccurrences {
			continue
		}
		analysis := AnalyzeGroup(key, group, cfg)
		if analysis.IsRecurring {
			series = append(series, analysis.Series)
		}
	}

	sort.Slice(series, func(i, j int) bool {
		if series[i].Confidence != series[j].Confidence {
			return series[i].Confidence > series[j].Confidence
		}
		return series[i].MerchantKey < series[j].MerchantKey
	})
	return series
}

// MonthlyEquivalent converts a series' average amount to a monthly cost.
func MonthlyEquivalent(s RecurringSeries) float64 {
	switch s.Frequency {
	case FrequencyWeekly:
		return s.AverageAmount * 52 / 12
	case FrequencyQuarterly:
		return s.AverageAmount / 3
	case FrequencyMonthly:
		return s.AverageAmount
	default:
		if s.AverageInterval <= 0 {
			return 0
		}
		return s.AverageAmount * 30 / s.AverageInterval
	}
}

func dominantCategory(txns []model.Transaction) string {
	counts := make(map[string]int)
	best := model.UncategorizedLabel
	bestCount := 0
	for _, t := range txns {
		name := t.CategoryName()
		counts[name]++
		if counts[name] > bestCount || (counts[name] == bestCount && name < best) {
			best = name
			bestCount = counts[name]
		}
	}
	return best
}

// upcoming returns the recurring series expected within the next days.
func upcoming(series []RecurringSeries, now time.Time, days int) []RecurringSeries {
	limit := civilDay(now).AddDate(0, 0, days)
	var out []RecurringSeries
	for _, s := range series {
		if s.NextExpected != nil && !s.NextExpected.After(limit) && !s.NextExpected.Before(civilDay(now)) {
			out = append(out, s)
		}
	}
	return out
}
