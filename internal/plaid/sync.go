package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// Saver is the part of storage a sync writes to.
type Saver interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	// Changed lists the accounts that received new transactions.
	Changed  []string
	Accounts int
	Fetched  int
	Inserted int
}

// Sync copies linked accounts and their transactions between start and end
// into storage. Transactions already stored are skipped by hash.
func Sync(ctx context.Context, fetcher TransactionFetcher, saver Saver, start, end time.Time) (SyncResult, error) {
	var result SyncResult

	accounts, err := fetcher.GetAccounts(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for i := range accounts {
		if err := saver.CreateAccount(ctx, &accounts[i]); err != nil {
			return result, fmt.Errorf("failed to save account %s: %w", accounts[i].ID, err)
		}
	}
	result.Accounts = len(accounts)

	txns, err := fetcher.GetTransactions(ctx, start, end)
	if err != nil {
		return result, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	result.Fetched = len(txns)
	if len(txns) == 0 {
		return result, nil
	}

	inserted, err := saver.SaveTransactions(ctx, txns)
	if err != nil {
		return result, fmt.Errorf("failed to save transactions: %w", err)
	}
	result.Inserted = inserted
	if inserted > 0 {
		result.Changed = accountIDs(txns)
	}

	slog.Info("Plaid sync completed",
		"accounts", result.Accounts,
		"fetched", result.Fetched,
		"inserted", result.Inserted)
	return result, nil
}

func accountIDs(txns []model.Transaction) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, t := range txns {
		if !seen[t.AccountID] {
			seen[t.AccountID] = true
			ids = append(ids, t.AccountID)
		}
	}
	sort.Strings(ids)
	return ids
}
