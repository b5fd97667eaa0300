// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	AccountID string
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer. It satisfies every
// collaborator interface of the insight engine.
type Storage interface {
	insight.TransactionSource
	insight.BudgetSource
	insight.PatternStore
	insight.PatternReader
	insight.AlertSink

	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)

	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	UpdateTransactionCategory(ctx context.Context, id string, category *string) error

	// Budget operations
	SetBudget(ctx context.Context, budget *model.Budget) error
	DeleteBudget(ctx context.Context, accountID, category string) error

	// Pattern snapshots
	DeletePatterns(ctx context.Context, accountID string) error

	// Alerts
	ListAlerts(ctx context.Context, accountID string, unreadOnly bool) ([]model.Alert, error)
	MarkAlertRead(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
