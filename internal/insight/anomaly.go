package insight

import (
	"sort"

	"github.com/Veraticus/spice-insights/internal/model"
)

// DetectAnomalies flags calendar days whose total outflow exceeds both
// mean+AnomalySigma*stddev and AnomalyMeanFactor*mean of the daily totals.
// Only days with outflow contribute to the baseline. Results are newest first.
func DetectAnomalies(txns []model.Transaction, cfg *Config) (AnomalyReport, error) {
	cfg = orDefault(cfg)

	days := dailyOutflowTotals(txns)
	if len(days) < cfg.AnomalyMinDays {
		return AnomalyReport{Days: len(days)}, insufficient("anomaly scan", "not enough spending days", len(days), cfg.AnomalyMinDays)
	}

	values := totals(days)
	m := mean(values)
	sd := populationStdDev(values)
	threshold := m + cfg.AnomalySigma*sd
	if !isFinite(threshold) {
		return AnomalyReport{}, &ComputationError{Operation: "anomaly threshold", Err: errNonFinite}
	}

	report := AnomalyReport{
		Mean:      m,
		StdDev:    sd,
		Threshold: threshold,
		Days:      len(days),
		Anomalies: []Anomaly{},
	}

	for _, d := range days {
		if d.Total <= threshold || d.Total <= cfg.AnomalyMeanFactor*m {
			continue
		}
		severity := SeverityMedium
		if d.Total > cfg.AnomalyHighFactor*m {
			severity = SeverityHigh
		}
		report.Anomalies = append(report.Anomalies, Anomaly{
			Date:              d.Date,
			Amount:            d.Total,
			DeviationFromMean: d.Total - m,
			Severity:          severity,
			TransactionCount:  d.Count,
		})
	}

	sort.Slice(report.Anomalies, func(i, j int) bool {
		return report.Anomalies[i].Date.After(report.Anomalies[j].Date)
	})
	return report, nil
}
