package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Accounts and transactions",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL DEFAULT '',
					institution TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
					date DATETIME NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					amount_in REAL NOT NULL DEFAULT 0 CHECK (amount_in >= 0),
					amount_out REAL NOT NULL DEFAULT 0 CHECK (amount_out >= 0),
					balance REAL NOT NULL DEFAULT 0,
					category TEXT,
					transaction_type TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_account_date ON transactions(account_id, date)`,
				`CREATE INDEX idx_transactions_category ON transactions(category)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Category budgets",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS budgets (
					account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
					category TEXT NOT NULL,
					monthly_limit REAL NOT NULL CHECK (monthly_limit >= 0),
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (account_id, category)
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Pattern snapshots and recurring series",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS pattern_snapshots (
					account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
					pattern_type TEXT NOT NULL,
					computed_at DATETIME NOT NULL,
					PRIMARY KEY (account_id, pattern_type)
				)`,
				`CREATE TABLE IF NOT EXISTS pattern_buckets (
					account_id TEXT NOT NULL,
					pattern_type TEXT NOT NULL,
					period_type TEXT NOT NULL,
					period_key TEXT NOT NULL,
					mean REAL NOT NULL,
					median REAL NOT NULL,
					std_dev REAL NOT NULL,
					total REAL NOT NULL,
					count INTEGER NOT NULL,
					confidence REAL NOT NULL,
					position INTEGER NOT NULL DEFAULT 0,
					PRIMARY KEY (account_id, pattern_type, period_key),
					FOREIGN KEY (account_id, pattern_type)
						REFERENCES pattern_snapshots(account_id, pattern_type) ON DELETE CASCADE
				)`,
				`CREATE TABLE IF NOT EXISTS recurring_series (
					account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
					merchant_key TEXT NOT NULL,
					category TEXT NOT NULL DEFAULT '',
					frequency TEXT NOT NULL,
					average_amount REAL NOT NULL,
					average_interval REAL NOT NULL,
					confidence REAL NOT NULL,
					last_seen DATETIME NOT NULL,
					next_expected DATETIME,
					occurrence_count INTEGER NOT NULL,
					PRIMARY KEY (account_id, merchant_key)
				)`,
			})
		},
	},
	{
		Version:     4,
		Description: "Spending alerts",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS alerts (
					id TEXT PRIMARY KEY,
					account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
					alert_type TEXT NOT NULL,
					message TEXT NOT NULL,
					amount REAL,
					category TEXT,
					is_read BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_alerts_account_created ON alerts(account_id, created_at)`,
			})
		},
	},
}

// Migrate applies any pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the current schema version of the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
