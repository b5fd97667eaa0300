package insight

import (
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// PeriodType selects how transactions are grouped into buckets.
type PeriodType string

const (
	// PeriodWeekday groups by weekday name ("Monday").
	PeriodWeekday PeriodType = "weekday"
	// PeriodHour groups by hour of day ("0" to "23").
	PeriodHour PeriodType = "hour"
	// PeriodISOWeek groups by ISO week ("2024-W09").
	PeriodISOWeek PeriodType = "isoweek"
	// PeriodMonth groups by calendar month ("2024-03").
	PeriodMonth PeriodType = "month"

	periodDay PeriodType = "day"
)

// PeriodBucket holds descriptive statistics of the outflows in one period.
type PeriodBucket struct {
	PeriodType PeriodType `json:"period_type"`
	Key        string     `json:"period_key"`
	Mean       float64    `json:"mean"`
	Median     float64    `json:"median"`
	StdDev     float64    `json:"std_dev"`
	Total      float64    `json:"total"`
	Count      int        `json:"count"`
}

// Trend classifies the direction of a series of period totals.
type Trend string

const (
	// TrendIncreasing indicates the slope exceeds the noise threshold.
	TrendIncreasing Trend = "increasing"
	// TrendDecreasing indicates the slope is below the negative noise threshold.
	TrendDecreasing Trend = "decreasing"
	// TrendStable indicates drift within the noise threshold.
	TrendStable Trend = "stable"
	// TrendInsufficientData indicates too few points to fit a trend.
	TrendInsufficientData Trend = "insufficient_data"
)

// Frequency is the cadence class of a recurring series.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyIrregular Frequency = "irregular"
)

// RecurringSeries is a detected repeating payment.
type RecurringSeries struct {
	LastSeen        time.Time  `json:"last_seen_date"`
	NextExpected    *time.Time `json:"next_expected_date,omitempty"`
	MerchantKey     string     `json:"merchant_key"`
	Category        string     `json:"category"`
	Frequency       Frequency  `json:"frequency_class"`
	AverageAmount   float64    `json:"average_amount"`
	AverageInterval float64    `json:"average_interval_days"`
	Confidence      float64    `json:"confidence"`
	OccurrenceCount int        `json:"occurrence_count"`
}

// Severity grades an anomaly.
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Anomaly is a day whose outflow deviates from the recent baseline.
type Anomaly struct {
	Date              time.Time `json:"date"`
	Severity          Severity  `json:"severity"`
	Amount            float64   `json:"amount"`
	DeviationFromMean float64   `json:"deviation_from_mean"`
	TransactionCount  int       `json:"transaction_count"`
}

// Grade is the letter grade of a health score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// HealthComponents are the four bounded sub-scores of a health score.
type HealthComponents struct {
	BudgetAdherence       float64 `json:"budget_adherence"`
	SpendingConsistency   float64 `json:"spending_consistency"`
	SavingsRate           float64 `json:"savings_rate"`
	TransactionRegularity float64 `json:"transaction_regularity"`
}

// Sum returns the total of all components.
func (c HealthComponents) Sum() float64 {
	return c.BudgetAdherence + c.SpendingConsistency + c.SavingsRate + c.TransactionRegularity
}

// HealthScore is a graded composite score with recommendations.
type HealthScore struct {
	Grade           Grade            `json:"grade"`
	Recommendations []string         `json:"recommendations"`
	Components      HealthComponents `json:"components"`
	Total           float64          `json:"total"`
}

// BudgetState is the usage state of a budget.
type BudgetState string

const (
	BudgetSafe     BudgetState = "safe"
	BudgetWarning  BudgetState = "warning"
	BudgetExceeded BudgetState = "exceeded"
)

// BudgetStatus describes current-month usage of one category budget.
type BudgetStatus struct {
	Category  string      `json:"category"`
	State     BudgetState `json:"status"`
	Spent     float64     `json:"spent"`
	Limit     float64     `json:"limit"`
	UsagePct  float64     `json:"usage_percentage"`
	Remaining float64     `json:"remaining"`
}

// CategoryInsight compares recent spending in a category to the prior period.
type CategoryInsight struct {
	Category  string  `json:"category"`
	Trend     Trend   `json:"trend"`
	Recent    float64 `json:"recent_spending"`
	Previous  float64 `json:"previous_spending"`
	ChangePct float64 `json:"change_percentage"`
}

// TopTransaction is a large outflow shown alongside daily patterns.
type TopTransaction struct {
	Date        time.Time `json:"time"`
	Description string    `json:"merchant"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
}

// DailyPatterns is the result of a daily pattern analysis.
type DailyPatterns struct {
	Period            Window           `json:"-"`
	AnalysisPeriod    string           `json:"analysis_period"`
	Weekdays          []PeriodBucket   `json:"daily_patterns"`
	Hours             []PeriodBucket   `json:"hourly_patterns"`
	TopTransactions   []TopTransaction `json:"top_transactions"`
	TotalTransactions int              `json:"total_transactions"`
}

// WeekSummary extends an ISO-week bucket with its first and last outflow dates.
type WeekSummary struct {
	FirstDate time.Time `json:"first_date"`
	LastDate  time.Time `json:"last_date"`
	PeriodBucket
}

// WeeklyPatterns is the result of a weekly pattern analysis.
type WeeklyPatterns struct {
	Period         Window        `json:"-"`
	AnalysisPeriod string        `json:"analysis_period"`
	Trend          Trend         `json:"trend"`
	Weeks          []WeekSummary `json:"weekly_patterns"`
	AverageWeekly  float64       `json:"average_weekly_spending"`
}

// CategoryTotal is outflow attributed to one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// MonthSummary extends a month bucket with its largest categories.
type MonthSummary struct {
	TopCategories []CategoryTotal `json:"top_categories"`
	PeriodBucket
}

// SeasonalMonth is the average monthly total for one month of the year.
type SeasonalMonth struct {
	Month        time.Month `json:"month"`
	AverageSpend float64    `json:"average_spending"`
	DataPoints   int        `json:"data_points"`
}

// MonthlyPatterns is the result of a monthly pattern analysis.
type MonthlyPatterns struct {
	Period         Window          `json:"-"`
	AnalysisPeriod string          `json:"analysis_period"`
	Months         []MonthSummary  `json:"monthly_patterns"`
	Seasonal       []SeasonalMonth `json:"seasonal_analysis"`
}

// AnomalyReport is the result of an anomaly scan.
type AnomalyReport struct {
	Period    Window    `json:"-"`
	Anomalies []Anomaly `json:"anomalies"`
	Mean      float64   `json:"mean"`
	StdDev    float64   `json:"std_dev"`
	Threshold float64   `json:"threshold"`
	Days      int       `json:"days"`
}

// Snapshot is a persisted copy of one pattern analysis for an account.
// A store replaces any prior snapshot with the same account and type.
type Snapshot struct {
	ComputedAt  time.Time
	AccountID   string
	PatternType string
	Buckets     []SnapshotBucket
}

// SnapshotBucket is a bucket with the confidence derived from its sample size.
type SnapshotBucket struct {
	PeriodBucket
	Confidence float64
}

// Snapshot pattern types.
const (
	SnapshotDaily   = "daily"
	SnapshotHourly  = "hourly"
	SnapshotWeekly  = "weekly"
	SnapshotMonthly = "monthly"
)

// snapshotSampleSize is the count at which a bucket reaches full confidence.
var snapshotSampleSize = map[string]int{
	SnapshotDaily:   10,
	SnapshotHourly:  10,
	SnapshotWeekly:  20,
	SnapshotMonthly: 30,
}

// SnapshotConfidence returns min(1, count/N) for the given pattern type.
func SnapshotConfidence(patternType string, count int) float64 {
	n, ok := snapshotSampleSize[patternType]
	if !ok || n <= 0 {
		return 0
	}
	return clamp(float64(count)/float64(n), 0, 1)
}

// NewSnapshot wraps buckets for persistence.
func NewSnapshot(accountID, patternType string, computedAt time.Time, buckets []PeriodBucket) Snapshot {
	out := make([]SnapshotBucket, len(buckets))
	for i, b := range buckets {
		out[i] = SnapshotBucket{PeriodBucket: b, Confidence: SnapshotConfidence(patternType, b.Count)}
	}
	return Snapshot{
		ComputedAt:  computedAt,
		AccountID:   accountID,
		PatternType: patternType,
		Buckets:     out,
	}
}

// outflowAmounts extracts AmountOut values.
func outflowAmounts(txns []model.Transaction) []float64 {
	out := make([]float64, len(txns))
	for i, t := range txns {
		out[i] = t.AmountOut
	}
	return out
}
