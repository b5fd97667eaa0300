// Package testutil provides fixtures for tests that need a real database.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/storage"
)

// TestDB is a migrated in-memory database.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup  func(context.Context, service.Storage) error
	Accounts     []model.Account
	Transactions []model.Transaction
	Budgets      []model.Budget
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database and seeds it.
//
// Example:
//
//	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
//		Transactions: testutil.NewTransactions("acc1", start).
//			Monthly("NETFLIX.COM", 15.99, 6).
//			Build(),
//	})
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for i := range opts.Accounts {
		if err := store.CreateAccount(ctx, &opts.Accounts[i]); err != nil {
			t.Fatalf("failed to seed account %q: %v", opts.Accounts[i].ID, err)
		}
	}
	if len(opts.Transactions) > 0 {
		if _, err := store.SaveTransactions(ctx, opts.Transactions); err != nil {
			t.Fatalf("failed to seed transactions: %v", err)
		}
	}
	for i := range opts.Budgets {
		if err := store.SetBudget(ctx, &opts.Budgets[i]); err != nil {
			t.Fatalf("failed to seed budget %q: %v", opts.Budgets[i].Category, err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// MustTransactions returns every stored transaction of an account.
func (db *TestDB) MustTransactions(accountID string) []model.Transaction {
	db.t.Helper()
	txns, err := db.Storage.GetTransactions(context.Background(), service.TransactionFilter{AccountID: accountID})
	if err != nil {
		db.t.Fatalf("failed to load transactions: %v", err)
	}
	return txns
}
