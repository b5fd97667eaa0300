package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// SetBudget creates or replaces the monthly limit for a category.
func (s *SQLiteStorage) SetBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}

	exists, err := accountExists(ctx, s.db, budget.AccountID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("account %s: %w", budget.AccountID, common.ErrNotFound)
	}

	budget.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO budgets (account_id, category, monthly_limit, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id, category) DO UPDATE SET
			monthly_limit = excluded.monthly_limit,
			updated_at = excluded.updated_at
	`, budget.AccountID, budget.Category, budget.MonthlyLimit, budget.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// GetBudgets returns an account's budgets ordered by category.
func (s *SQLiteStorage) GetBudgets(ctx context.Context, accountID string) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, category, monthly_limit, updated_at
		FROM budgets WHERE account_id = ? ORDER BY category
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.AccountID, &b.Category, &b.MonthlyLimit, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// DeleteBudget removes a category budget.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, accountID, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE account_id = ? AND category = ?`, accountID, category)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("budget %s/%s: %w", accountID, category, common.ErrNotFound)
	}
	return nil
}
