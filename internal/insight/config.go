package insight

// Default thresholds. These values are empirical cutoffs and are kept
// exactly for compatibility with previously reported results.
const (
	// DefaultRecurringConsistency is the interval consistency a merchant group
	// must exceed to be reported as recurring.
	DefaultRecurringConsistency = 0.7
	// DefaultRecurringMinOccurrences is the smallest group size considered.
	DefaultRecurringMinOccurrences = 3
	// DefaultAnomalySigma is the number of standard deviations above the mean
	// a daily total must exceed.
	DefaultAnomalySigma = 2.0
	// DefaultAnomalyMeanFactor is the multiple of the mean a daily total must
	// also exceed. Guards against near-zero standard deviations.
	DefaultAnomalyMeanFactor = 1.5
	// DefaultAnomalyHighFactor is the multiple of the mean above which an
	// anomaly is high severity.
	DefaultAnomalyHighFactor = 2.0
	// DefaultAnomalyMinDays is the number of spending days required.
	DefaultAnomalyMinDays = 10
	// DefaultTrendThreshold is the slope, as a fraction of the mean, that
	// separates a trend from noise.
	DefaultTrendThreshold = 0.05
	// DefaultTrendMinPoints is the number of totals required to estimate a trend.
	DefaultTrendMinPoints = 4
	// DefaultBudgetWarningPct is the usage percentage at which a budget warns.
	DefaultBudgetWarningPct = 80.0
	// DefaultCategoryChangePct is the change percentage that marks a category
	// as increasing or decreasing.
	DefaultCategoryChangePct = 10.0
	// DefaultSavingsHighSpend is the 30-day category spend above which a
	// category is flagged as a savings opportunity regardless of its trend.
	DefaultSavingsHighSpend = 1000.0
)

// Lookback windows in days.
const (
	DailyLookbackDays     = 90
	WeeklyLookbackDays    = 12 * 7
	MonthlyLookbackDays   = 365
	RecurringLookbackDays = 180
	HealthLookbackDays    = 30
	CategoryLookbackDays  = 30

	MinAnomalyWindowDays     = 30
	MaxAnomalyWindowDays     = 60
	DefaultAnomalyWindowDays = MaxAnomalyWindowDays
)

// Config holds the tunable thresholds of the engine.
type Config struct {
	RecurringConsistency    float64
	AnomalySigma            float64
	AnomalyMeanFactor       float64
	AnomalyHighFactor       float64
	TrendThreshold          float64
	BudgetWarningPct        float64
	CategoryChangePct       float64
	SavingsHighSpend        float64
	RecurringMinOccurrences int
	AnomalyMinDays          int
	AnomalyWindowDays       int
	TrendMinPoints          int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RecurringConsistency:    DefaultRecurringConsistency,
		RecurringMinOccurrences: DefaultRecurringMinOccurrences,
		AnomalySigma:            DefaultAnomalySigma,
		AnomalyMeanFactor:       DefaultAnomalyMeanFactor,
		AnomalyHighFactor:       DefaultAnomalyHighFactor,
		AnomalyMinDays:          DefaultAnomalyMinDays,
		AnomalyWindowDays:       DefaultAnomalyWindowDays,
		TrendThreshold:          DefaultTrendThreshold,
		TrendMinPoints:          DefaultTrendMinPoints,
		BudgetWarningPct:        DefaultBudgetWarningPct,
		CategoryChangePct:       DefaultCategoryChangePct,
		SavingsHighSpend:        DefaultSavingsHighSpend,
	}
}

// anomalyWindow clamps the configured anomaly window to its allowed range.
func (c *Config) anomalyWindow() int {
	switch {
	case c.AnomalyWindowDays < MinAnomalyWindowDays:
		return MinAnomalyWindowDays
	case c.AnomalyWindowDays > MaxAnomalyWindowDays:
		return MaxAnomalyWindowDays
	default:
		return c.AnomalyWindowDays
	}
}

func orDefault(cfg *Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return cfg
}
