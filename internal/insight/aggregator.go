package insight

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

const dayLayout = "2006-01-02"

// KeyFunc maps a transaction timestamp to a bucket key.
type KeyFunc func(time.Time) string

func weekdayKey(t time.Time) string { return t.Weekday().String() }

func hourKey(t time.Time) string { return strconv.Itoa(t.Hour()) }

func isoWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func monthKey(t time.Time) string { return t.Format("2006-01") }

func dayKey(t time.Time) string { return t.Format(dayLayout) }

// KeyFuncFor returns the grouping function for a period type.
func KeyFuncFor(period PeriodType) (KeyFunc, error) {
	switch period {
	case PeriodWeekday:
		return weekdayKey, nil
	case PeriodHour:
		return hourKey, nil
	case PeriodISOWeek:
		return isoWeekKey, nil
	case PeriodMonth:
		return monthKey, nil
	case periodDay:
		return dayKey, nil
	default:
		return nil, fmt.Errorf("unknown period type %q", period)
	}
}

// Aggregate buckets outflow transactions by period and computes per-bucket
// statistics. Transactions without outflow are ignored and keys with no
// outflow are absent from the result.
func Aggregate(txns []model.Transaction, period PeriodType) (map[string]PeriodBucket, error) {
	key, err := KeyFuncFor(period)
	if err != nil {
		return nil, err
	}
	return aggregateBy(txns, period, key), nil
}

func aggregateBy(txns []model.Transaction, period PeriodType, key KeyFunc) map[string]PeriodBucket {
	grouped := make(map[string][]float64)
	for _, t := range txns {
		if !t.IsOutflow() {
			continue
		}
		k := key(t.Date)
		grouped[k] = append(grouped[k], t.AmountOut)
	}

	buckets := make(map[string]PeriodBucket, len(grouped))
	for k, amounts := range grouped {
		buckets[k] = PeriodBucket{
			PeriodType: period,
			Key:        k,
			Mean:       mean(amounts),
			Median:     median(amounts),
			StdDev:     populationStdDev(amounts),
			Total:      sum(amounts),
			Count:      len(amounts),
		}
	}
	return buckets
}

// SortedBuckets orders buckets for presentation: weekdays Monday first,
// hours numerically, weeks and months chronologically.
func SortedBuckets(buckets map[string]PeriodBucket) []PeriodBucket {
	out := make([]PeriodBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return bucketOrder(out[i]) < bucketOrder(out[j]) ||
			(bucketOrder(out[i]) == bucketOrder(out[j]) && out[i].Key < out[j].Key)
	})
	return out
}

func bucketOrder(b PeriodBucket) int {
	switch b.PeriodType {
	case PeriodWeekday:
		for d := time.Sunday; d <= time.Saturday; d++ {
			if d.String() == b.Key {
				// Monday=0 ... Sunday=6
				return (int(d) + 6) % 7
			}
		}
		return 7
	case PeriodHour:
		h, err := strconv.Atoi(b.Key)
		if err != nil {
			return 24
		}
		return h
	default:
		return 0
	}
}

func bucketTotals(buckets []PeriodBucket) []float64 {
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = b.Total
	}
	return out
}
