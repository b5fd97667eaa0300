package model

import "time"

// Account is a bank account whose transactions are analyzed.
type Account struct {
	CreatedAt   time.Time
	ID          string
	Name        string
	Institution string
}
