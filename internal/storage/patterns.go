package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/insight"
)

// recurringMarker is the pattern_snapshots row recording that recurring
// detection has run for an account, including runs that found nothing.
const recurringMarker = "recurring"

// UpsertSnapshot replaces the stored snapshot for the account and pattern type.
func (s *SQLiteStorage) UpsertSnapshot(ctx context.Context, snapshot insight.Snapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(snapshot.AccountID, "accountID"); err != nil {
		return err
	}
	if err := validateString(snapshot.PatternType, "patternType"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM pattern_buckets WHERE account_id = ? AND pattern_type = ?`,
			snapshot.AccountID, snapshot.PatternType); err != nil {
			return fmt.Errorf("failed to clear buckets: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM pattern_snapshots WHERE account_id = ? AND pattern_type = ?`,
			snapshot.AccountID, snapshot.PatternType); err != nil {
			return fmt.Errorf("failed to clear snapshot: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pattern_snapshots (account_id, pattern_type, computed_at)
			VALUES (?, ?, ?)
		`, snapshot.AccountID, snapshot.PatternType, snapshot.ComputedAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO pattern_buckets (
				account_id, pattern_type, period_type, period_key,
				mean, median, std_dev, total, count, confidence, position
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, b := range snapshot.Buckets {
			if _, err := stmt.ExecContext(ctx,
				snapshot.AccountID, snapshot.PatternType, string(b.PeriodType), b.Key,
				b.Mean, b.Median, b.StdDev, b.Total, b.Count, b.Confidence, i,
			); err != nil {
				return fmt.Errorf("failed to insert bucket %s: %w", b.Key, err)
			}
		}
		return nil
	})
}

// GetSnapshot returns the stored snapshot for the account and pattern type.
func (s *SQLiteStorage) GetSnapshot(ctx context.Context, accountID, patternType string) (*insight.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	snap := insight.Snapshot{AccountID: accountID, PatternType: patternType}
	err := s.db.QueryRowContext(ctx, `
		SELECT computed_at FROM pattern_snapshots WHERE account_id = ? AND pattern_type = ?
	`, accountID, patternType).Scan(&snap.ComputedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s snapshot for %s: %w", patternType, accountID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT period_type, period_key, mean, median, std_dev, total, count, confidence
		FROM pattern_buckets
		WHERE account_id = ? AND pattern_type = ?
		ORDER BY position
	`, accountID, patternType)
	if err != nil {
		return nil, fmt.Errorf("failed to query buckets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var b insight.SnapshotBucket
		var periodType string
		if err := rows.Scan(&periodType, &b.Key, &b.Mean, &b.Median, &b.StdDev, &b.Total, &b.Count, &b.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		b.PeriodType = insight.PeriodType(periodType)
		snap.Buckets = append(snap.Buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating buckets: %w", err)
	}
	return &snap, nil
}

// ReplaceRecurring replaces every stored recurring series of the account.
// An empty set is stored as a completed run with no series.
func (s *SQLiteStorage) ReplaceRecurring(ctx context.Context, accountID string, series []insight.RecurringSeries) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recurring_series WHERE account_id = ?`, accountID); err != nil {
			return fmt.Errorf("failed to clear recurring series: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pattern_snapshots (account_id, pattern_type, computed_at)
			VALUES (?, ?, ?)
			ON CONFLICT (account_id, pattern_type) DO UPDATE SET computed_at = excluded.computed_at
		`, accountID, recurringMarker, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to mark recurring run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO recurring_series (
				account_id, merchant_key, category, frequency, average_amount,
				average_interval, confidence, last_seen, next_expected, occurrence_count
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, rs := range series {
			var next sql.NullTime
			if rs.NextExpected != nil {
				next = sql.NullTime{Time: rs.NextExpected.UTC(), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx,
				accountID, rs.MerchantKey, rs.Category, string(rs.Frequency), rs.AverageAmount,
				rs.AverageInterval, rs.Confidence, rs.LastSeen.UTC(), next, rs.OccurrenceCount,
			); err != nil {
				return fmt.Errorf("failed to insert recurring series %s: %w", rs.MerchantKey, err)
			}
		}
		return nil
	})
}

// GetRecurring returns the stored recurring series, highest confidence first.
// It returns ErrNotFound when detection has never been stored for the account.
func (s *SQLiteStorage) GetRecurring(ctx context.Context, accountID string) ([]insight.RecurringSeries, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	var marked int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM pattern_snapshots WHERE account_id = ? AND pattern_type = ?`,
		accountID, recurringMarker).Scan(&marked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recurring series for %s: %w", accountID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check recurring run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT merchant_key, category, frequency, average_amount, average_interval,
			confidence, last_seen, next_expected, occurrence_count
		FROM recurring_series
		WHERE account_id = ?
		ORDER BY confidence DESC, merchant_key ASC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []insight.RecurringSeries{}
	for rows.Next() {
		var rs insight.RecurringSeries
		var frequency string
		var next sql.NullTime
		if err := rows.Scan(&rs.MerchantKey, &rs.Category, &frequency, &rs.AverageAmount, &rs.AverageInterval,
			&rs.Confidence, &rs.LastSeen, &next, &rs.OccurrenceCount); err != nil {
			return nil, fmt.Errorf("failed to scan recurring series: %w", err)
		}
		rs.Frequency = insight.Frequency(frequency)
		if next.Valid {
			t := next.Time
			rs.NextExpected = &t
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// DeletePatterns removes every stored snapshot and recurring series of the
// account so the next read recomputes them.
func (s *SQLiteStorage) DeletePatterns(ctx context.Context, accountID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"pattern_buckets", "pattern_snapshots", "recurring_series"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE account_id = ?`, accountID); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}
