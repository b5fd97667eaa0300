package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// MockClient is a mock implementation of TransactionFetcher for testing.
type MockClient struct {
	GetTransactionsFn func(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetAccountsFn     func(ctx context.Context) ([]model.Account, error)

	GetTransactionsCalls []GetTransactionsCall
	GetAccountsCalls     int
}

// GetTransactionsCall records the parameters of a GetTransactions call.
type GetTransactionsCall struct {
	StartDate time.Time
	EndDate   time.Time
}

var _ TransactionFetcher = (*MockClient)(nil)

// NewMockClient creates a new mock Plaid client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// GetTransactions records the call and returns GetTransactionsFn's result.
func (m *MockClient) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	m.GetTransactionsCalls = append(m.GetTransactionsCalls, GetTransactionsCall{StartDate: startDate, EndDate: endDate})
	if m.GetTransactionsFn != nil {
		return m.GetTransactionsFn(ctx, startDate, endDate)
	}
	return []model.Transaction{}, nil
}

// GetAccounts records the call and returns GetAccountsFn's result.
func (m *MockClient) GetAccounts(ctx context.Context) ([]model.Account, error) {
	m.GetAccountsCalls++
	if m.GetAccountsFn != nil {
		return m.GetAccountsFn(ctx)
	}
	return []model.Account{}, nil
}
