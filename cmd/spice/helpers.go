package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/snapshot"
	"github.com/Veraticus/spice-insights/internal/storage"
)

// initStorage opens and migrates the configured database.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.DatabasePath(viper.GetViper())

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// patternStore picks where the engine persists computed results. A nil
// cache means results are not kept.
func patternStore(store snapshot.Store, cfg config.PatternStoreConfig) *snapshot.Cache {
	switch cfg.Backend {
	case config.PatternStoreNone:
		return nil
	case config.PatternStoreMemory:
		return snapshot.New(nil, cfg.CacheTTL)
	default:
		return snapshot.New(store, cfg.CacheTTL)
	}
}

// newEngine builds an engine over store using the analysis settings in viper.
// The returned cache holds the engine's stored results and is nil when the
// pattern store is disabled.
func newEngine(store service.Storage) (*insight.Engine, *snapshot.Cache, error) {
	v := viper.GetViper()

	cfg, err := config.LoadAnalysisConfig(v)
	if err != nil {
		return nil, nil, err
	}
	psCfg, err := config.LoadPatternStoreConfig(v)
	if err != nil {
		return nil, nil, err
	}

	deps := insight.Deps{
		Transactions: store,
		Budgets:      store,
		Alerts:       store,
	}
	cache := patternStore(store, psCfg)
	if cache != nil {
		deps.Patterns = cache
	}

	engine, err := insight.NewEngine(deps, cfg)
	if err != nil {
		return nil, nil, err
	}
	return engine, cache, nil
}

// patternDeleter is the part of storage invalidation needs.
type patternDeleter interface {
	DeletePatterns(ctx context.Context, accountID string) error
}

// invalidatePatterns drops stored results of accounts whose transactions
// changed, so later cached reads do not show stale analyses.
func invalidatePatterns(ctx context.Context, store patternDeleter, accountIDs []string) {
	for _, id := range accountIDs {
		if err := store.DeletePatterns(ctx, id); err != nil {
			common.LogError(err, "Failed to clear stored patterns", common.Fields{"account_id": id})
			continue
		}
		slog.Debug("Cleared stored patterns", "account_id", id)
	}
}

// withStore opens storage for the duration of fn.
func withStore(ctx context.Context, fn func(store *storage.SQLiteStorage) error) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			slog.Warn("Failed to close database", "error", cerr)
		}
	}()
	return fn(store)
}

// accountLister is the part of storage account resolution needs.
type accountLister interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
}

// resolveAccount returns the requested account ID, or the only account when
// none was requested.
func resolveAccount(ctx context.Context, store accountLister, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list accounts: %w", err)
	}
	switch len(accounts) {
	case 0:
		return "", common.NewUserError("No accounts yet. Import an OFX file or run 'spice sync-plaid' first.", nil)
	case 1:
		return accounts[0].ID, nil
	default:
		return "", common.NewUserError(fmt.Sprintf("%d accounts found; choose one with --account (see 'spice accounts')", len(accounts)), nil)
	}
}

func accountFlag(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("account")
	return id
}

// explain turns engine errors into messages for the terminal.
func explain(err error) error {
	switch insight.ReasonCode(err) {
	case insight.CodeNotFound:
		return common.NewUserError("Account not found. Run 'spice accounts' to list known accounts.", err)
	case insight.CodeInsufficientData:
		return common.NewUserError("Not enough transaction history for this analysis yet.", err)
	default:
		return err
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
