// Package storage provides the data persistence layer for the spice application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidBudget      = errors.New("invalid budget")
	ErrInvalidAccount     = errors.New("invalid account")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateDateRange(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.AmountIn < 0 || txn.AmountOut < 0 {
		return fmt.Errorf("%w: amounts must be non-negative", ErrInvalidTransaction)
	}
	return nil
}

func validateBudget(b *model.Budget) error {
	if b == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if strings.TrimSpace(b.AccountID) == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidBudget)
	}
	if strings.TrimSpace(b.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidBudget)
	}
	if b.MonthlyLimit < 0 {
		return fmt.Errorf("%w: limit must be non-negative", ErrInvalidBudget)
	}
	return nil
}

func validateAccount(a *model.Account) error {
	if a == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAccount)
	}
	return nil
}
