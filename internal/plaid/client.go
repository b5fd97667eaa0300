// Package plaid syncs linked bank transactions from the Plaid API.
package plaid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

const (
	dateLayout      = "2006-01-02"
	pageSize        = int32(500) // Plaid's max page size
	institutionName = "Plaid"
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	switch {
	case c.ClientID == "":
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	case c.Secret == "":
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	case c.AccessToken == "":
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	case c.Environment == "":
		return fmt.Errorf("%w: plaid environment is required", common.ErrMissingConfig)
	case c.Environment != "sandbox" && c.Environment != "production":
		return fmt.Errorf("%w: invalid Plaid environment: must be sandbox or production", common.ErrInvalidConfig)
	}
	return nil
}

// Client implements the TransactionFetcher interface.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	accessToken string
	retryOpts   common.RetryOptions
}

var _ TransactionFetcher = (*Client)(nil)

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts:   common.DefaultRetryOptions(),
	}, nil
}

// classifyError marks rate limits as retryable and wraps the rest with the
// matching sentinel.
func (c *Client) classifyError(err error, what string) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("%w: failed to fetch %s: %w", common.ErrPlaidConnection, what, err)
	}
	if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
		c.logger.Warn("Rate limit hit, will retry", "error", plaidErr.ErrorMessage)
		return &common.RetryableError{Err: fmt.Errorf("%w: %s", common.ErrPlaidRateLimit, plaidErr.ErrorMessage), Retryable: true}
	}
	return fmt.Errorf("%w: plaid API error: %s - %s", common.ErrPlaidConnection, plaidErr.ErrorCode, plaidErr.ErrorMessage)
}

// GetTransactions fetches transactions from Plaid within the specified date range.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}
	if startDate.After(endDate) {
		return nil, errors.New("start date must be before end date")
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format(dateLayout),
		"end_date", endDate.Format(dateLayout))

	var all []plaid.Transaction
	offset := int32(0)
	for {
		var page []plaid.Transaction

		err := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(c.accessToken, startDate.Format(dateLayout), endDate.Format(dateLayout))
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			})

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				return c.classifyError(err, "transactions")
			}

			page = resp.GetTransactions()
			c.logger.Debug("Fetched transaction batch",
				"count", len(page),
				"offset", offset,
				"total", resp.GetTotalTransactions())
			return nil
		}, c.retryOpts)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < int(pageSize) {
			break
		}
		offset += pageSize
	}

	transactions := make([]model.Transaction, 0, len(all))
	for _, pt := range all {
		tx, err := mapTransaction(pt)
		if err != nil {
			c.logger.Warn("Skipping transaction", "transaction_id", pt.GetTransactionId(), "error", err)
			continue
		}
		transactions = append(transactions, tx)
	}

	c.logger.Info("Fetched all transactions", "count", len(transactions))
	return transactions, nil
}

// GetAccounts fetches the accounts linked to the access token.
func (c *Client) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}

	var accounts []plaid.AccountBase
	err := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(c.accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return c.classifyError(err, "accounts")
		}
		accounts = resp.GetAccounts()
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Fetched accounts", "count", len(accounts))

	out := make([]model.Account, 0, len(accounts))
	for _, a := range accounts {
		name := a.GetOfficialName()
		if name == "" {
			name = a.GetName()
		}
		out = append(out, model.Account{ID: a.GetAccountId(), Name: name, Institution: institutionName})
	}
	return out, nil
}

// mapTransaction converts a Plaid transaction to our model. Plaid reports
// money leaving the account as a positive amount.
func mapTransaction(pt plaid.Transaction) (model.Transaction, error) {
	date, err := time.Parse(dateLayout, pt.GetDate())
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid date %q: %w", pt.GetDate(), err)
	}

	description := pt.GetMerchantName()
	if description == "" {
		description = pt.GetName()
	}

	in, out := model.SplitAmount(-pt.GetAmount())

	tx := model.Transaction{
		Date:        date,
		ID:          pt.GetTransactionId(),
		AccountID:   pt.GetAccountId(),
		Description: cleanMerchantName(description),
		AmountIn:    in,
		AmountOut:   out,
		Type:        paymentType(pt.GetPaymentChannel()),
	}

	if cats := pt.GetCategory(); len(cats) > 0 && cats[0] != "" {
		category := cats[0]
		tx.Category = &category
	}

	tx.Hash = tx.GenerateHash()
	return tx, nil
}

func paymentType(channel string) string {
	switch channel {
	case "online":
		return "ONLINE"
	case "in_store":
		return "POS"
	case "":
		return ""
	default:
		return "OTHER"
	}
}

// Suffixes stripped from merchant names, after title casing.
var merchantSuffixes = []string{" Llc", " Inc", " Corp", " Corporation", " Company", " Co", " Ltd", " Limited"}

// cleanMerchantName title-cases a merchant name and strips trailing
// reference numbers and corporate suffixes.
func cleanMerchantName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		for j := range runes {
			if j == 0 || !isLetter(runes[j-1]) {
				runes[j] = toUpper(runes[j])
			}
		}
		words[i] = string(runes)
	}

	// A long all-digit tail is a reference number
	if n := len(words); n > 1 && len(words[n-1]) > 5 && isAllDigits(words[n-1]) {
		words = words[:n-1]
	}
	name = strings.Join(words, " ")

	for changed := true; changed; {
		changed = false
		for _, suffix := range merchantSuffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}

	return strings.TrimSpace(name)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 32
	}
	return r
}
