package sheets

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tab titles in the exported spreadsheet.
const (
	TabMonthly   = "Monthly"
	TabRecurring = "Recurring"
	TabAnomalies = "Anomalies"
	TabHealth    = "Health"
)

// Tabs lists every tab in the order it appears in the spreadsheet.
var Tabs = []string{TabMonthly, TabRecurring, TabAnomalies, TabHealth}

// MonthRow represents a single row in the Monthly tab.
type MonthRow struct {
	Month            string // e.g., "2024-03"
	TopCategory      string
	Total            decimal.Decimal
	Mean             decimal.Decimal
	Median           decimal.Decimal
	StdDev           decimal.Decimal
	TopCategoryTotal decimal.Decimal
	Transactions     int
}

// RecurringRow represents a single row in the Recurring tab.
type RecurringRow struct {
	LastSeen        time.Time
	NextExpected    *time.Time
	Merchant        string
	Category        string
	Frequency       string
	AverageAmount   decimal.Decimal
	MonthlyCost     decimal.Decimal
	IntervalDays    decimal.Decimal
	Confidence      decimal.Decimal
	OccurrenceCount int
}

// AnomalyRow represents a single row in the Anomalies tab.
type AnomalyRow struct {
	Date         time.Time
	Severity     string
	Amount       decimal.Decimal
	AboveAverage decimal.Decimal
	Transactions int
}

// HealthRow is one component line of the Health tab.
type HealthRow struct {
	Component string
	Score     decimal.Decimal
	Max       decimal.Decimal
}

// Report holds all the data for a complete spreadsheet export.
type Report struct {
	GeneratedAt     time.Time
	AccountID       string
	Grade           string
	HealthTotal     decimal.Decimal
	RecurringTotal  decimal.Decimal
	Months          []MonthRow
	Recurring       []RecurringRow
	Anomalies       []AnomalyRow
	Health          []HealthRow
	Recommendations []string
}
