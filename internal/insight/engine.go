// Package insight analyzes transaction history for spending patterns,
// recurring payments, anomalies and overall financial health.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// Deps contains the collaborators of the engine.
type Deps struct {
	// Transactions provides the transaction history. Required.
	Transactions TransactionSource
	// Budgets provides category budgets. Optional; nil means no budgets.
	Budgets BudgetSource
	// Patterns receives computed snapshots. Optional.
	Patterns PatternStore
	// Alerts receives alert events. Optional.
	Alerts AlertSink
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Transactions == nil {
		return fmt.Errorf("transaction source dependency is required")
	}
	return nil
}

// Engine runs analyses for one account at a time. It holds no per-call
// state and is safe for concurrent use.
type Engine struct {
	deps Deps
	cfg  *Config
}

// NewEngine creates a new engine with the provided dependencies.
func NewEngine(deps Deps, cfg *Config) (*Engine, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Engine{deps: deps, cfg: orDefault(cfg)}, nil
}

// Config returns the thresholds in use.
func (e *Engine) Config() Config {
	return *e.cfg
}

func (e *Engine) load(ctx context.Context, accountID string, w Window) ([]model.Transaction, error) {
	start, end := w.fetchRange()
	txns, err := e.deps.Transactions.GetAccountTransactions(ctx, accountID, start, end)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return filterWindow(sortedByDate(txns), w), nil
}

// DailyPatterns analyzes spending by weekday and hour over the last 90 days.
func (e *Engine) DailyPatterns(ctx context.Context, accountID string) (DailyPatterns, error) {
	now := e.deps.Now()
	w := Lookback(now, DailyLookbackDays)
	txns, err := e.load(ctx, accountID, w)
	if err != nil {
		return DailyPatterns{}, err
	}
	result, err := dailyFrom(txns, w)
	if err != nil {
		return DailyPatterns{}, err
	}
	slog.Debug("Daily patterns computed",
		"account_id", accountID,
		"transactions", result.TotalTransactions,
		"weekdays", len(result.Weekdays))

	e.storeSnapshot(ctx, NewSnapshot(accountID, SnapshotDaily, now, result.Weekdays))
	e.storeSnapshot(ctx, NewSnapshot(accountID, SnapshotHourly, now, result.Hours))
	return result, nil
}

// WeeklyPatterns analyzes spending by ISO week over the last 12 weeks.
func (e *Engine) WeeklyPatterns(ctx context.Context, accountID string) (WeeklyPatterns, error) {
	now := e.deps.Now()
	w := Lookback(now, WeeklyLookbackDays)
	txns, err := e.load(ctx, accountID, w)
	if err != nil {
		return WeeklyPatterns{}, err
	}
	result, err := weeklyFrom(txns, w, e.cfg)
	if err != nil {
		return WeeklyPatterns{}, err
	}
	slog.Debug("Weekly patterns computed", "account_id", accountID, "weeks", len(result.Weeks), "trend", result.Trend)

	buckets := make([]PeriodBucket, len(result.Weeks))
	for i, wk := range result.Weeks {
		buckets[i] = wk.PeriodBucket
	}
	e.storeSnapshot(ctx, NewSnapshot(accountID, SnapshotWeekly, now, buckets))
	return result, nil
}

func dailyFrom(txns []model.Transaction, w Window) (DailyPatterns, error) {
	in := filterWindow(txns, w)
	if len(in) == 0 {
		return DailyPatterns{}, insufficient("daily patterns", "no transactions found", 0, 1)
	}
	return AnalyzeDaily(in, w), nil
}

func weeklyFrom(txns []model.Transaction, w Window, cfg *Config) (WeeklyPatterns, error) {
	in := filterWindow(txns, w)
	if len(in) == 0 {
		return WeeklyPatterns{}, insufficient("weekly patterns", "no transactions found", 0, 1)
	}
	return AnalyzeWeekly(in, w, cfg), nil
}

// MonthlyPatterns analyzes spending by calendar month over the last year.
func (e *Engine) MonthlyPatterns(ctx context.Context, accountID string) (MonthlyPatterns, error) {
	now := e.deps.Now()
	w := Lookback(now, MonthlyLookbackDays)
	txns, err := e.load(ctx, accountID, w)
	if err != nil {
		return MonthlyPatterns{}, err
	}
	if len(txns) == 0 {
		return MonthlyPatterns{}, insufficient("monthly patterns", "no transactions found", 0, 1)
	}

	result := AnalyzeMonthly(txns, w)
	slog.Debug("Monthly patterns computed", "account_id", accountID, "months", len(result.Months))

	buckets := make([]PeriodBucket, len(result.Months))
	for i, m := range result.Months {
		buckets[i] = m.PeriodBucket
	}
	e.storeSnapshot(ctx, NewSnapshot(accountID, SnapshotMonthly, now, buckets))
	return result, nil
}

// RecurringPayments detects recurring series over the last 180 days and
// replaces any previously stored series for the account.
func (e *Engine) RecurringPayments(ctx context.Context, accountID string) ([]RecurringSeries, error) {
	w := Lookback(e.deps.Now(), RecurringLookbackDays)
	txns, err := e.load(ctx, accountID, w)
	if err != nil {
		return nil, err
	}

	series := DetectRecurring(txns, e.cfg)
	slog.Debug("Recurring payments detected", "account_id", accountID, "series", len(series))

	e.storeRecurring(ctx, accountID, series)
	return series, nil
}

// Anomalies scans the trailing anomaly window for unusual spending days.
// High severity anomalies are forwarded to the alert sink.
func (e *Engine) Anomalies(ctx context.Context, accountID string) (AnomalyReport, error) {
	now := e.deps.Now()
	w := Lookback(now, e.cfg.anomalyWindow())
	txns, err := e.load(ctx, accountID, w)
	if err != nil {
		return AnomalyReport{}, err
	}

	report, err := DetectAnomalies(txns, e.cfg)
	report.Period = w
	if err != nil {
		return report, err
	}
	slog.Debug("Anomaly scan complete", "account_id", accountID, "days", report.Days, "anomalies", len(report.Anomalies))

	e.recordAlerts(ctx, AnomalyAlerts(accountID, report.Anomalies, now))
	return report, nil
}

// BudgetStatus evaluates current-month spending against every budget and
// forwards warnings to the alert sink.
func (e *Engine) BudgetStatus(ctx context.Context, accountID string) ([]BudgetStatus, error) {
	now := e.deps.Now()
	txns, err := e.load(ctx, accountID, Window{Start: monthStart(now), End: now})
	if err != nil {
		return nil, err
	}

	statuses, err := e.budgetStatus(ctx, accountID, txns, now)
	if err != nil {
		return nil, err
	}
	e.recordAlerts(ctx, BudgetAlerts(accountID, statuses, now))
	return statuses, nil
}

func (e *Engine) budgetStatus(ctx context.Context, accountID string, txns []model.Transaction, now time.Time) ([]BudgetStatus, error) {
	if e.deps.Budgets == nil {
		return []BudgetStatus{}, nil
	}
	budgets, err := e.deps.Budgets.GetBudgets(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}
	monthTxns := filterWindow(txns, Window{Start: monthStart(now), End: now})
	return EvaluateBudgets(budgets, SpendByCategory(monthTxns), e.cfg), nil
}

// HealthScore computes the composite financial health score over the last
// 30 days, with budget adherence measured on the current month.
func (e *Engine) HealthScore(ctx context.Context, accountID string) (HealthScore, error) {
	now := e.deps.Now()
	w := Lookback(now, HealthLookbackDays)
	read := w
	if ms := monthStart(now); ms.Before(read.Start) {
		read.Start = ms
	}

	txns, err := e.load(ctx, accountID, read)
	if err != nil {
		return HealthScore{}, err
	}

	statuses, err := e.budgetStatus(ctx, accountID, txns, now)
	if err != nil {
		return HealthScore{}, err
	}

	score := ScoreHealth(HealthInput{Window: filterWindow(txns, w), Budgets: statuses})
	if !isFinite(score.Total) {
		return HealthScore{}, &ComputationError{Operation: "health score", Err: errNonFinite}
	}
	slog.Debug("Health score computed", "account_id", accountID, "total", score.Total, "grade", score.Grade)
	return score, nil
}

// CategoryInsights compares the last 30 days of category spending with the
// 30 days before.
func (e *Engine) CategoryInsights(ctx context.Context, accountID string) ([]CategoryInsight, error) {
	recent, previous := categoryWindows(e.deps.Now())
	txns, err := e.load(ctx, accountID, Window{Start: previous.Start, End: recent.End})
	if err != nil {
		return nil, err
	}
	return CompareCategories(filterWindow(txns, recent), filterWindow(txns, previous), e.cfg), nil
}

func categoryWindows(now time.Time) (recent, previous Window) {
	recent = Lookback(now, CategoryLookbackDays)
	previous = Window{
		Start: recent.Start.AddDate(0, 0, -CategoryLookbackDays),
		End:   recent.Start.AddDate(0, 0, -1),
	}
	return recent, previous
}

// Recommendations combines health, category and budget advice from one read
// of the last 60 days.
func (e *Engine) Recommendations(ctx context.Context, accountID string) ([]string, error) {
	now := e.deps.Now()
	recent, previous := categoryWindows(now)
	txns, err := e.load(ctx, accountID, Window{Start: previous.Start, End: recent.End})
	if err != nil {
		return nil, err
	}

	statuses, err := e.budgetStatus(ctx, accountID, txns, now)
	if err != nil {
		return nil, err
	}
	health := ScoreHealth(HealthInput{Window: filterWindow(txns, Lookback(now, HealthLookbackDays)), Budgets: statuses})
	categories := CompareCategories(filterWindow(txns, recent), filterWindow(txns, previous), e.cfg)

	recs := SmartRecommendations(health, categories, statuses)
	slog.Debug("Recommendations built", "account_id", accountID, "count", len(recs))
	return recs, nil
}

// Projection extrapolates monthly spending and income from the most recent
// active days of the last 90.
func (e *Engine) Projection(ctx context.Context, accountID string) (Projection, error) {
	txns, err := e.load(ctx, accountID, Lookback(e.deps.Now(), DailyLookbackDays))
	if err != nil {
		return Projection{}, err
	}
	return ProjectMonthly(txns)
}

// SavingsOpportunities estimates achievable monthly savings per category.
func (e *Engine) SavingsOpportunities(ctx context.Context, accountID string) (SavingsPlan, error) {
	categories, err := e.CategoryInsights(ctx, accountID)
	if err != nil {
		return SavingsPlan{}, err
	}
	return FindSavings(categories, e.cfg), nil
}

// PatternInsights combines the daily, weekly and recurring analyses from a
// single read of the recurring lookback. Analyses lacking data are left out
// of the result. Only the recurring series are persisted.
func (e *Engine) PatternInsights(ctx context.Context, accountID string) (PatternInsights, error) {
	now := e.deps.Now()
	txns, err := e.load(ctx, accountID, Lookback(now, RecurringLookbackDays))
	if err != nil {
		return PatternInsights{}, err
	}

	var dailyPtr *DailyPatterns
	if daily, err := dailyFrom(txns, Lookback(now, DailyLookbackDays)); err == nil {
		dailyPtr = &daily
	}
	var weeklyPtr *WeeklyPatterns
	if weekly, err := weeklyFrom(txns, Lookback(now, WeeklyLookbackDays), e.cfg); err == nil {
		weeklyPtr = &weekly
	}

	recurring := DetectRecurring(txns, e.cfg)
	e.storeRecurring(ctx, accountID, recurring)

	return BuildInsights(dailyPtr, weeklyPtr, recurring, now), nil
}

func (e *Engine) storeSnapshot(ctx context.Context, snap Snapshot) {
	if e.deps.Patterns == nil {
		return
	}
	if err := e.deps.Patterns.UpsertSnapshot(ctx, snap); err != nil {
		slog.Warn("Failed to store pattern snapshot",
			"account_id", snap.AccountID,
			"pattern_type", snap.PatternType,
			"error", err)
	}
}

func (e *Engine) storeRecurring(ctx context.Context, accountID string, series []RecurringSeries) {
	if e.deps.Patterns == nil {
		return
	}
	if err := e.deps.Patterns.ReplaceRecurring(ctx, accountID, series); err != nil {
		slog.Warn("Failed to store recurring series", "account_id", accountID, "error", err)
	}
}

func (e *Engine) recordAlerts(ctx context.Context, alerts []model.Alert) {
	if e.deps.Alerts == nil || len(alerts) == 0 {
		return
	}
	if err := e.deps.Alerts.RecordAlerts(ctx, alerts); err != nil {
		slog.Warn("Failed to record alerts", "count", len(alerts), "error", err)
	}
}
