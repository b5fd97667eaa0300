package model

import "time"

// AlertType identifies the kind of alert.
type AlertType string

const (
	// AlertBudgetWarning fires when a category passes the warning threshold.
	AlertBudgetWarning AlertType = "budget_warning"
	// AlertBudgetExceeded fires when a category passes its limit.
	AlertBudgetExceeded AlertType = "budget_exceeded"
	// AlertAnomalyHigh fires for high-severity spending anomalies.
	AlertAnomalyHigh AlertType = "anomaly_high"
)

// Alert is alert-worthy event data handed to a notification collaborator.
type Alert struct {
	CreatedAt time.Time `json:"created_at"`
	Amount    *float64  `json:"amount,omitempty"`
	Category  *string   `json:"category,omitempty"`
	ID        string    `json:"id,omitempty"`
	AccountID string    `json:"account_id"`
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
}
