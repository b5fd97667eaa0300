package insight

import (
	"context"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// TransactionSource supplies transactions for an account. Implementations
// return an error wrapping common.ErrNotFound for unknown accounts. Order is
// not significant.
type TransactionSource interface {
	GetAccountTransactions(ctx context.Context, accountID string, start, end time.Time) ([]model.Transaction, error)
}

// BudgetSource supplies the configured category budgets of an account.
type BudgetSource interface {
	GetBudgets(ctx context.Context, accountID string) ([]model.Budget, error)
}

// PatternStore persists computed results. Every write fully replaces the
// previous value for the same account and pattern type.
type PatternStore interface {
	UpsertSnapshot(ctx context.Context, snapshot Snapshot) error
	ReplaceRecurring(ctx context.Context, accountID string, series []RecurringSeries) error
}

// AlertSink receives alert-worthy events for delivery elsewhere.
type AlertSink interface {
	RecordAlerts(ctx context.Context, alerts []model.Alert) error
}

// PatternReader returns previously persisted results. Both methods return an
// error wrapping common.ErrNotFound when nothing has been stored yet.
type PatternReader interface {
	GetSnapshot(ctx context.Context, accountID, patternType string) (*Snapshot, error)
	GetRecurring(ctx context.Context, accountID string) ([]RecurringSeries, error)
}
