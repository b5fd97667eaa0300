package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// TransactionFetcher defines the contract for fetching transaction data.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
}
