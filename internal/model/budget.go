package model

import "time"

// Budget is a monthly spending limit for one category.
type Budget struct {
	UpdatedAt    time.Time
	AccountID    string
	Category     string
	MonthlyLimit float64
}
