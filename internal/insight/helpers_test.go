package insight

import (
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

var baseDate = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return baseDate.AddDate(0, 0, n)
}

func spend(date time.Time, amount float64, description string) model.Transaction {
	return model.Transaction{
		ID:          description + date.Format(time.RFC3339),
		AccountID:   "acc-1",
		Date:        date,
		Description: description,
		AmountOut:   amount,
	}
}

func income(date time.Time, amount float64) model.Transaction {
	return model.Transaction{
		ID:          "salary" + date.Format(time.RFC3339),
		AccountID:   "acc-1",
		Date:        date,
		Description: "SALARY",
		AmountIn:    amount,
	}
}

func withCategory(t model.Transaction, category string) model.Transaction {
	t.Category = &category
	return t
}
