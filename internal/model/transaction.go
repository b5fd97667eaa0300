package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// UncategorizedLabel is reported for transactions that carry no category.
const UncategorizedLabel = "Uncategorized"

// Transaction represents a single financial transaction from any source.
// Amounts are non-negative magnitudes: AmountOut is money leaving the
// account, AmountIn is money arriving.
type Transaction struct {
	Date        time.Time
	Category    *string // Assigned upstream; nil when unclassified
	ID          string
	AccountID   string
	Description string // Raw transaction description
	Hash        string
	Type        string // Source transaction type (e.g., DEBIT, ATM)
	AmountIn    float64
	AmountOut   float64
	Balance     float64
}

// IsOutflow reports whether money left the account.
func (t Transaction) IsOutflow() bool {
	return t.AmountOut > 0
}

// IsInflow reports whether money arrived in the account.
func (t Transaction) IsInflow() bool {
	return t.AmountIn > 0
}

// CategoryName returns the category label or UncategorizedLabel.
func (t Transaction) CategoryName() string {
	if t.Category == nil || *t.Category == "" {
		return UncategorizedLabel
	}
	return *t.Category
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%.2f:%s:%s",
		t.Date.Format(time.RFC3339),
		t.AmountIn,
		t.AmountOut,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// SplitAmount maps a signed amount onto in/out magnitudes.
// Negative values are outflows.
func SplitAmount(signed float64) (in, out float64) {
	if signed < 0 {
		return 0, -signed
	}
	return signed, 0
}
