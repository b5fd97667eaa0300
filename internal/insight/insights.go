package insight

import (
	"time"
)

// SpenderType describes whether spending concentrates on weekends.
type SpenderType string

const (
	SpenderWeekend  SpenderType = "weekend"
	SpenderWeekday  SpenderType = "weekday"
	SpenderBalanced SpenderType = "balanced"
)

const (
	spenderMargin           = 1.2
	highConfidenceRecurring = 0.8
	upcomingDays            = 7
)

// General recommendations shown with pattern insights.
var patternRecommendations = []string{
	"Set budget alerts for your high-spending days",
	"Review recurring payments for optimization",
	"Track weekly trends to maintain spending control",
	"Set category-specific limits with budgets",
}

var trendMessages = map[Trend]string{
	TrendIncreasing: "Your weekly spending is trending upward",
	TrendDecreasing: "Your weekly spending is trending downward",
	TrendStable:     "Your weekly spending is consistent",
}

// PatternInsights summarizes habits across the daily, weekly and recurring analyses.
type PatternInsights struct {
	HighestDay            *PeriodBucket     `json:"highest_day,omitempty"`
	LowestDay             *PeriodBucket     `json:"lowest_day,omitempty"`
	Spender               SpenderType       `json:"spender"`
	WeeklyTrend           Trend             `json:"weekly_trend"`
	TrendMessage          string            `json:"trend_message,omitempty"`
	Upcoming              []RecurringSeries `json:"upcoming"`
	Recommendations       []string          `json:"recommendations"`
	RecurringCount        int               `json:"recurring_count"`
	HighConfidenceCount   int               `json:"high_confidence_count"`
	RecurringMonthlyTotal float64           `json:"recurring_monthly_total"`
}

// BuildInsights derives pattern insights. Any input may be nil when its
// analysis was unavailable.
func BuildInsights(daily *DailyPatterns, weekly *WeeklyPatterns, recurring []RecurringSeries, now time.Time) PatternInsights {
	out := PatternInsights{
		Spender:         SpenderBalanced,
		WeeklyTrend:     TrendInsufficientData,
		Recommendations: append([]string(nil), patternRecommendations...),
	}

	if daily != nil && len(daily.Weekdays) > 0 {
		highest, lowest := daily.Weekdays[0], daily.Weekdays[0]
		for _, b := range daily.Weekdays[1:] {
			if b.Mean > highest.Mean {
				highest = b
			}
			if b.Mean < lowest.Mean {
				lowest = b
			}
		}
		out.HighestDay = &highest
		out.LowestDay = &lowest
		out.Spender = classifySpender(daily.Weekdays)
	}

	if weekly != nil {
		out.WeeklyTrend = weekly.Trend
		out.TrendMessage = trendMessages[weekly.Trend]
	}

	out.RecurringCount = len(recurring)
	for _, s := range recurring {
		out.RecurringMonthlyTotal += MonthlyEquivalent(s)
		if s.Confidence > highConfidenceRecurring {
			out.HighConfidenceCount++
		}
	}
	out.Upcoming = upcoming(recurring, now, upcomingDays)

	return out
}

// classifySpender compares the per-day average on weekends with weekdays.
// Averages divide by the full number of days in each group.
func classifySpender(weekdays []PeriodBucket) SpenderType {
	var weekend, weekday float64
	for _, b := range weekdays {
		switch b.Key {
		case time.Saturday.String(), time.Sunday.String():
			weekend += b.Mean
		default:
			weekday += b.Mean
		}
	}
	weekend /= 2
	weekday /= 5

	switch {
	case weekend > weekday*spenderMargin:
		return SpenderWeekend
	case weekday > weekend*spenderMargin:
		return SpenderWeekday
	default:
		return SpenderBalanced
	}
}
