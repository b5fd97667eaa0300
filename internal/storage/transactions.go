package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
)

const transactionColumns = `id, hash, account_id, date, description, amount_in, amount_out, balance, category, transaction_type`

// SaveTransactions stores transactions, skipping any whose hash is already
// present, and returns the number inserted. Unknown accounts are created.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if transactions == nil {
		return 0, fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return 0, fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		n, err := s.saveTransactionsTx(ctx, tx, transactions)
		inserted = n
		return err
	})
	return inserted, err
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) (int, error) {
	accountStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO accounts (id, created_at) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = accountStmt.Close() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	seen := make(map[string]bool)
	inserted := 0
	for _, txn := range transactions {
		if !seen[txn.AccountID] {
			if _, err := accountStmt.ExecContext(ctx, txn.AccountID, time.Now().UTC()); err != nil {
				return 0, fmt.Errorf("failed to ensure account %s: %w", txn.AccountID, err)
			}
			seen[txn.AccountID] = true
		}

		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		res, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.Hash,
			txn.AccountID,
			txn.Date,
			txn.Description,
			txn.AmountIn,
			txn.AmountOut,
			txn.Balance,
			nullString(txn.Category),
			txn.Type,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// GetAccountTransactions returns an account's transactions between start and
// end inclusive, oldest first. Zero bounds are open. Dates keep the offset
// they were saved with, so bounds compare against local wall-clock time.
func (s *SQLiteStorage) GetAccountTransactions(ctx context.Context, accountID string, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	exists, err := accountExists(ctx, s.db, accountID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("account %s: %w", accountID, common.ErrNotFound)
	}

	filter := service.TransactionFilter{AccountID: accountID}
	if !start.IsZero() {
		filter.StartDate = &start
	}
	if !end.IsZero() {
		filter.EndDate = &end
	}
	return s.GetTransactions(ctx, filter)
}

// GetTransactions retrieves transactions matching the filter, oldest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []any

	if filter.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, filter.AccountID)
	}
	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY date ASC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// GetTransactionByID retrieves a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return txn, err
}

// UpdateTransactionCategory sets or clears the category of a transaction.
func (s *SQLiteStorage) UpdateTransactionCategory(ctx context.Context, id string, category *string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE transactions SET category = ? WHERE id = ?`, nullString(category), id)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var category sql.NullString
	err := row.Scan(
		&txn.ID,
		&txn.Hash,
		&txn.AccountID,
		&txn.Date,
		&txn.Description,
		&txn.AmountIn,
		&txn.AmountOut,
		&txn.Balance,
		&category,
		&txn.Type,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	if category.Valid {
		c := category.String
		txn.Category = &c
	}
	return &txn, nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
