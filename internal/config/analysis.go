package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/insight"
)

// Pattern store backends.
const (
	PatternStoreSQLite = "sqlite"
	PatternStoreMemory = "memory"
	PatternStoreNone   = "none"
)

// PatternStoreConfig selects where computed results are persisted.
type PatternStoreConfig struct {
	Backend  string
	CacheTTL time.Duration
}

// LoadAnalysisConfig overlays analysis.* values from v on the defaults.
func LoadAnalysisConfig(v *viper.Viper) (*insight.Config, error) {
	cfg := insight.DefaultConfig()

	floats := []struct {
		dst *float64
		key string
	}{
		{&cfg.RecurringConsistency, "analysis.recurring_consistency"},
		{&cfg.AnomalySigma, "analysis.anomaly_sigma"},
		{&cfg.AnomalyMeanFactor, "analysis.anomaly_mean_factor"},
		{&cfg.AnomalyHighFactor, "analysis.anomaly_high_factor"},
		{&cfg.TrendThreshold, "analysis.trend_threshold"},
		{&cfg.BudgetWarningPct, "analysis.budget_warning_pct"},
		{&cfg.CategoryChangePct, "analysis.category_change_pct"},
		{&cfg.SavingsHighSpend, "analysis.savings_high_spend"},
	}
	for _, f := range floats {
		if !v.IsSet(f.key) {
			continue
		}
		val := v.GetFloat64(f.key)
		if val < 0 {
			return nil, fmt.Errorf("%w: %s must be non-negative", common.ErrInvalidConfig, f.key)
		}
		*f.dst = val
	}

	ints := []struct {
		dst *int
		key string
	}{
		{&cfg.RecurringMinOccurrences, "analysis.recurring_min_occurrences"},
		{&cfg.AnomalyMinDays, "analysis.anomaly_min_days"},
		{&cfg.AnomalyWindowDays, "analysis.anomaly_window_days"},
		{&cfg.TrendMinPoints, "analysis.trend_min_points"},
	}
	for _, i := range ints {
		if !v.IsSet(i.key) {
			continue
		}
		val := v.GetInt(i.key)
		if val < 1 {
			return nil, fmt.Errorf("%w: %s must be at least 1", common.ErrInvalidConfig, i.key)
		}
		*i.dst = val
	}

	if cfg.RecurringConsistency > 1 {
		return nil, fmt.Errorf("%w: analysis.recurring_consistency must be at most 1", common.ErrInvalidConfig)
	}

	return cfg, nil
}

// LoadPatternStoreConfig reads patterns.store and patterns.cache_ttl.
func LoadPatternStoreConfig(v *viper.Viper) (PatternStoreConfig, error) {
	cfg := PatternStoreConfig{Backend: PatternStoreSQLite, CacheTTL: 30 * time.Minute}

	if v.IsSet("patterns.store") {
		cfg.Backend = v.GetString("patterns.store")
	}
	switch cfg.Backend {
	case PatternStoreSQLite, PatternStoreMemory, PatternStoreNone:
	default:
		return cfg, fmt.Errorf("%w: unknown patterns.store %q", common.ErrInvalidConfig, cfg.Backend)
	}

	if v.IsSet("patterns.cache_ttl") {
		cfg.CacheTTL = v.GetDuration("patterns.cache_ttl")
	}
	if cfg.CacheTTL <= 0 {
		return cfg, fmt.Errorf("%w: patterns.cache_ttl must be positive", common.ErrInvalidConfig)
	}
	return cfg, nil
}

// DatabasePath returns the expanded database.path, or the default location.
func DatabasePath(v *viper.Viper) string {
	if p := v.GetString("database.path"); p != "" {
		return ExpandPath(p)
	}
	return ExpandPath("~/.local/share/spice/spice.db")
}
