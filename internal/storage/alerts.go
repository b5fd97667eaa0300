package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// alertDedupeWindow suppresses repeats of the same alert for an account.
const alertDedupeWindow = 24 * time.Hour

// RecordAlerts stores alerts, skipping any that repeat an alert of the same
// type and category recorded within the previous 24 hours.
func (s *SQLiteStorage) RecordAlerts(ctx context.Context, alerts []model.Alert) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(alerts) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, a := range alerts {
			if err := validateString(a.AccountID, "accountID"); err != nil {
				return err
			}
			if a.CreatedAt.IsZero() {
				a.CreatedAt = time.Now().UTC()
			}
			if a.ID == "" {
				a.ID = uuid.NewString()
			}

			dup, err := recentAlertExists(ctx, tx, a)
			if err != nil {
				return err
			}
			if dup {
				continue
			}

			var amount sql.NullFloat64
			if a.Amount != nil {
				amount = sql.NullFloat64{Float64: *a.Amount, Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO alerts (id, account_id, alert_type, message, amount, category, is_read, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, a.ID, a.AccountID, string(a.Type), a.Message, amount, nullString(a.Category), a.Read, a.CreatedAt.UTC()); err != nil {
				return fmt.Errorf("failed to insert alert: %w", err)
			}
		}
		return nil
	})
}

func recentAlertExists(ctx context.Context, q queryable, a model.Alert) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM alerts
		WHERE account_id = ? AND alert_type = ? AND category IS ? AND created_at >= ?
	`, a.AccountID, string(a.Type), nullString(a.Category), a.CreatedAt.Add(-alertDedupeWindow).UTC()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check recent alerts: %w", err)
	}
	return n > 0, nil
}

// ListAlerts returns an account's alerts, newest first.
func (s *SQLiteStorage) ListAlerts(ctx context.Context, accountID string, unreadOnly bool) ([]model.Alert, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	query := `SELECT id, account_id, alert_type, message, amount, category, is_read, created_at
		FROM alerts WHERE account_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var alerts []model.Alert
	for rows.Next() {
		var a model.Alert
		var alertType string
		var amount sql.NullFloat64
		var category sql.NullString
		if err := rows.Scan(&a.ID, &a.AccountID, &alertType, &a.Message, &amount, &category, &a.Read, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Type = model.AlertType(alertType)
		if amount.Valid {
			v := amount.Float64
			a.Amount = &v
		}
		if category.Valid {
			c := category.String
			a.Category = &c
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkAlertRead flags an alert as read.
func (s *SQLiteStorage) MarkAlertRead(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("alert %s: %w", id, common.ErrNotFound)
	}
	return nil
}
