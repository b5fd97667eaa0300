package plaid

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

func validConfig() Config {
	return Config{
		ClientID:    "test-client-id",
		Secret:      "test-secret",
		Environment: "sandbox",
		AccessToken: "test-token",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		modify  func(*Config)
		target  error
		name    string
		errMsg  string
		wantErr bool
	}{
		{name: "valid config", modify: func(*Config) {}},
		{name: "missing client ID", modify: func(c *Config) { c.ClientID = "" }, wantErr: true, target: common.ErrMissingConfig, errMsg: "plaid client ID is required"},
		{name: "missing secret", modify: func(c *Config) { c.Secret = "" }, wantErr: true, target: common.ErrMissingConfig, errMsg: "plaid secret is required"},
		{name: "missing access token", modify: func(c *Config) { c.AccessToken = "" }, wantErr: true, target: common.ErrMissingConfig, errMsg: "plaid access token is required"},
		{name: "missing environment", modify: func(c *Config) { c.Environment = "" }, wantErr: true, target: common.ErrMissingConfig, errMsg: "plaid environment is required"},
		{name: "invalid environment", modify: func(c *Config) { c.Environment = "development" }, wantErr: true, target: common.ErrInvalidConfig, errMsg: "invalid Plaid environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(validConfig())
	require.NoError(t, err)
	assert.NotNil(t, client.client)
	assert.Equal(t, "test-token", client.accessToken)
	assert.Equal(t, common.DefaultRetryOptions(), client.retryOpts)

	client, err = NewClient(Config{ClientID: "only-id"})
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestClient_GetTransactions_Validation(t *testing.T) {
	client := &Client{
		accessToken: "test-token",
		logger:      slog.Default().With("component", "plaid-test"),
	}

	//nolint:staticcheck // nil context is the case under test
	_, err := client.GetTransactions(nil, time.Now().AddDate(0, -1, 0), time.Now())
	assert.ErrorContains(t, err, "context cannot be nil")

	_, err = client.GetTransactions(context.Background(), time.Now(), time.Now().AddDate(0, -1, 0))
	assert.ErrorContains(t, err, "start date must be before end date")
}

func TestMapTransaction(t *testing.T) {
	var pt plaid.Transaction
	pt.SetTransactionId("txn-1")
	pt.SetAccountId("acc-1")
	pt.SetDate("2024-03-05")
	pt.SetName("STARBUCKS STORE 123456789")
	pt.SetAmount(5.5)
	pt.SetPaymentChannel("in_store")
	pt.SetCategory([]string{"Food and Drink", "Coffee Shop"})

	tx, err := mapTransaction(pt)
	require.NoError(t, err)
	assert.Equal(t, "txn-1", tx.ID)
	assert.Equal(t, "acc-1", tx.AccountID)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "Starbucks Store", tx.Description)
	assert.Equal(t, 5.5, tx.AmountOut)
	assert.Zero(t, tx.AmountIn)
	assert.Equal(t, "POS", tx.Type)
	require.NotNil(t, tx.Category)
	assert.Equal(t, "Food and Drink", *tx.Category)
	assert.NotEmpty(t, tx.Hash)

	// Negative Plaid amounts are deposits
	pt.SetAmount(-1200)
	tx, err = mapTransaction(pt)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, tx.AmountIn)
	assert.Zero(t, tx.AmountOut)

	pt.SetDate("not-a-date")
	_, err = mapTransaction(pt)
	assert.Error(t, err)
}

func TestPaymentType(t *testing.T) {
	assert.Equal(t, "ONLINE", paymentType("online"))
	assert.Equal(t, "POS", paymentType("in_store"))
	assert.Equal(t, "OTHER", paymentType("other"))
	assert.Equal(t, "", paymentType(""))
}

func TestCleanMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "basic name", input: "Starbucks", expected: "Starbucks"},
		{name: "lowercase to title case", input: "starbucks coffee", expected: "Starbucks Coffee"},
		{name: "remove LLC suffix", input: "Amazon LLC", expected: "Amazon"},
		{name: "remove Inc suffix", input: "Apple Inc", expected: "Apple"},
		{name: "remove transaction ID", input: "PAYPAL 123456789", expected: "Paypal"},
		{name: "preserve short numbers", input: "7-ELEVEN 2345", expected: "7-Eleven 2345"},
		{name: "multiple cleanups", input: "amazon.com llc 987654321", expected: "Amazon.Com"},
		{name: "extra spaces", input: "  Google   Cloud   ", expected: "Google Cloud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanMerchantName(tt.input))
		})
	}
}

func TestIsAllDigits(t *testing.T) {
	assert.True(t, isAllDigits("123456"))
	assert.True(t, isAllDigits(""))
	assert.False(t, isAllDigits("12a456"))
	assert.False(t, isAllDigits("12.34"))
}

type memorySaver struct {
	accounts []model.Account
	txns     []model.Transaction
	err      error
}

func (m *memorySaver) CreateAccount(_ context.Context, a *model.Account) error {
	m.accounts = append(m.accounts, *a)
	return nil
}

func (m *memorySaver) SaveTransactions(_ context.Context, txns []model.Transaction) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.txns = append(m.txns, txns...)
	return len(txns), nil
}

func TestSync(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	mock := NewMockClient()
	mock.GetAccountsFn = func(context.Context) ([]model.Account, error) {
		return []model.Account{{ID: "acc-1", Name: "Checking"}}, nil
	}
	mock.GetTransactionsFn = func(context.Context, time.Time, time.Time) ([]model.Transaction, error) {
		return []model.Transaction{
			{ID: "t1", AccountID: "acc-1", AmountOut: 5},
			{ID: "t2", AccountID: "acc-1", AmountOut: 7},
		}, nil
	}

	saver := &memorySaver{}
	result, err := Sync(context.Background(), mock, saver, start, end)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Changed: []string{"acc-1"}, Accounts: 1, Fetched: 2, Inserted: 2}, result)
	assert.Len(t, saver.accounts, 1)
	require.Len(t, mock.GetTransactionsCalls, 1)
	assert.Equal(t, start, mock.GetTransactionsCalls[0].StartDate)
	assert.Equal(t, 1, mock.GetAccountsCalls)

	saver.err = errors.New("disk full")
	_, err = Sync(context.Background(), mock, saver, start, end)
	assert.ErrorContains(t, err, "disk full")
}

func TestSync_NoTransactions(t *testing.T) {
	saver := &memorySaver{}
	result, err := Sync(context.Background(), NewMockClient(), saver, time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.Equal(t, SyncResult{}, result)
	assert.Empty(t, saver.txns)
}
