package insight

// EstimateTrend fits a least-squares line over the ordered totals and
// classifies its slope relative to the mean. A slope within
// TrendThreshold*mean of zero is stable; this filters drift, it is not a
// significance test.
func EstimateTrend(values []float64, cfg *Config) Trend {
	cfg = orDefault(cfg)
	if len(values) < cfg.TrendMinPoints || len(values) < 2 {
		return TrendInsufficientData
	}

	slope, ok := linearSlope(values)
	if !ok {
		return TrendInsufficientData
	}

	limit := cfg.TrendThreshold * mean(values)
	switch {
	case slope > limit:
		return TrendIncreasing
	case slope < -limit:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
