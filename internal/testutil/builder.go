package testutil

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// TransactionBuilder assembles transaction fixtures for one account.
type TransactionBuilder struct {
	start     time.Time
	accountID string
	txns      []model.Transaction
}

// NewTransactions starts a builder whose offsets are relative to start.
func NewTransactions(accountID string, start time.Time) *TransactionBuilder {
	return &TransactionBuilder{accountID: accountID, start: start}
}

func (b *TransactionBuilder) add(date time.Time, description string, in, out float64, category string) {
	txn := model.Transaction{
		ID:          fmt.Sprintf("%s-%04d", b.accountID, len(b.txns)+1),
		AccountID:   b.accountID,
		Date:        date,
		Description: description,
		AmountIn:    in,
		AmountOut:   out,
		Type:        "DEBIT",
	}
	if in > 0 {
		txn.Type = "CREDIT"
	}
	if category != "" {
		c := category
		txn.Category = &c
	}
	txn.Hash = txn.GenerateHash()
	b.txns = append(b.txns, txn)
}

// Spend adds an outflow dayOffset days after start.
func (b *TransactionBuilder) Spend(dayOffset int, description string, amount float64, category string) *TransactionBuilder {
	b.add(b.start.AddDate(0, 0, dayOffset), description, 0, amount, category)
	return b
}

// Income adds an inflow dayOffset days after start.
func (b *TransactionBuilder) Income(dayOffset int, description string, amount float64) *TransactionBuilder {
	b.add(b.start.AddDate(0, 0, dayOffset), description, amount, 0, "Income")
	return b
}

// Every adds count outflows spaced intervalDays apart from start.
func (b *TransactionBuilder) Every(intervalDays, count int, description string, amount float64, category string) *TransactionBuilder {
	for i := 0; i < count; i++ {
		b.Spend(i*intervalDays, description, amount, category)
	}
	return b
}

// Monthly adds count outflows on the same day of consecutive months.
func (b *TransactionBuilder) Monthly(description string, amount float64, count int) *TransactionBuilder {
	for i := 0; i < count; i++ {
		b.add(b.start.AddDate(0, i, 0), description, 0, amount, "Subscriptions")
	}
	return b
}

// Daily adds one outflow per day for days days.
func (b *TransactionBuilder) Daily(days int, description string, amount float64, category string) *TransactionBuilder {
	return b.Every(1, days, description, amount, category)
}

// Build returns the accumulated transactions.
func (b *TransactionBuilder) Build() []model.Transaction {
	out := make([]model.Transaction, len(b.txns))
	copy(out, b.txns)
	return out
}
