package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/snapshot"
	"github.com/Veraticus/spice-insights/internal/testutil"
)

func TestResolveAccount(t *testing.T) {
	ctx := context.Background()

	empty := testutil.SetupTestDB(t)
	_, err := resolveAccount(ctx, empty.Storage, "")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "No accounts yet")

	one := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Accounts: []model.Account{{ID: "checking", Name: "Checking"}},
	})
	id, err := resolveAccount(ctx, one.Storage, "")
	require.NoError(t, err)
	assert.Equal(t, "checking", id)

	two := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Accounts: []model.Account{{ID: "checking"}, {ID: "savings"}},
	})
	_, err = resolveAccount(ctx, two.Storage, "")
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "--account")

	id, err = resolveAccount(ctx, two.Storage, "savings")
	require.NoError(t, err)
	assert.Equal(t, "savings", id)
}

func TestExplain(t *testing.T) {
	var userErr *common.UserError

	err := explain(insight.ErrAccountNotFound)
	require.ErrorAs(t, err, &userErr)
	assert.ErrorIs(t, err, insight.ErrAccountNotFound)

	err = explain(&insight.InsufficientDataError{Analysis: "anomalies", Reason: "too few days"})
	require.ErrorAs(t, err, &userErr)

	plain := errors.New("disk full")
	assert.Equal(t, plain, explain(plain))
}

func TestPatternStoreSelection(t *testing.T) {
	db := testutil.SetupTestDB(t)

	assert.Nil(t, patternStore(db.Storage, config.PatternStoreConfig{Backend: config.PatternStoreNone}))

	mem := patternStore(db.Storage, config.PatternStoreConfig{Backend: config.PatternStoreMemory, CacheTTL: time.Minute})
	assert.IsType(t, &snapshot.Cache{}, mem)

	durable := patternStore(db.Storage, config.PatternStoreConfig{Backend: config.PatternStoreSQLite, CacheTTL: time.Minute})
	require.IsType(t, &snapshot.Cache{}, durable)

	// Writes through to SQLite.
	require.NoError(t, db.Storage.CreateAccount(context.Background(), &model.Account{ID: "acct"}))
	snap := insight.NewSnapshot("acct", insight.SnapshotWeekly, time.Now(), []insight.PeriodBucket{{Key: "2024-W10", Count: 4, Total: 100}})
	require.NoError(t, durable.UpsertSnapshot(context.Background(), snap))
	stored, err := db.Storage.GetSnapshot(context.Background(), "acct", insight.SnapshotWeekly)
	require.NoError(t, err)
	assert.Len(t, stored.Buckets, 1)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "600", want: 600},
		{in: "600.50", want: 600.5},
		{in: "$1,200", want: 1200},
		{in: " 75 ", want: 75},
		{in: "0", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "lots", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLimit(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	require.NoError(t, loadDotenv(""))
	require.NoError(t, loadDotenv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SPICE_DOTENV_TEST=from-file\n"), 0o600))
	t.Setenv("SPICE_DOTENV_TEST", "")
	require.NoError(t, os.Unsetenv("SPICE_DOTENV_TEST"))

	require.NoError(t, loadDotenv(path))
	assert.Equal(t, "from-file", os.Getenv("SPICE_DOTENV_TEST"))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Empty(t, firstNonEmpty("", ""))
}
