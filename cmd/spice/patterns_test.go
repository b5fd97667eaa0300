package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/snapshot"
	"github.com/Veraticus/spice-insights/internal/testutil"
)

func findPatternCommand(t *testing.T, use string) analysisCommand {
	t.Helper()
	for _, a := range patternCommands {
		if a.use == use {
			return a
		}
	}
	t.Fatalf("no patterns subcommand %q", use)
	return analysisCommand{}
}

func TestPatternCommandsWithStoredResults(t *testing.T) {
	for _, use := range []string{"daily", "weekly", "monthly", "recurring"} {
		assert.NotNil(t, findPatternCommand(t, use).stored, use)
	}
	for _, use := range []string{"anomalies", "categories", "insights", "recommendations", "projection", "savings"} {
		assert.Nil(t, findPatternCommand(t, use).stored, use)
	}
}

func TestReadStored(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Accounts: []model.Account{{ID: "chk"}},
	})
	cache := snapshot.New(db.Storage, time.Minute)
	weekly := findPatternCommand(t, "weekly")

	var userErr *common.UserError
	_, _, err := weekly.readStored(ctx, cache, "chk")
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "spice patterns weekly")

	computed := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	snap := insight.NewSnapshot("chk", insight.SnapshotWeekly, computed, []insight.PeriodBucket{
		{PeriodType: insight.PeriodISOWeek, Key: "2024-W10", Count: 4, Total: 100},
	})
	require.NoError(t, db.Storage.UpsertSnapshot(ctx, snap))

	raw, rendered, err := weekly.readStored(ctx, cache, "chk")
	require.NoError(t, err)
	assert.Contains(t, rendered, "2024-W10")
	stored, ok := raw.(insight.Snapshot)
	require.True(t, ok)
	assert.Equal(t, insight.SnapshotWeekly, stored.PatternType)

	_, _, err = weekly.readStored(ctx, nil, "chk")
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "disabled")
}

func TestReadStoredDaily(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Accounts: []model.Account{{ID: "chk"}},
	})
	cache := snapshot.New(db.Storage, time.Minute)
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

	require.NoError(t, cache.UpsertSnapshot(ctx, insight.NewSnapshot("chk", insight.SnapshotDaily, now,
		[]insight.PeriodBucket{{PeriodType: insight.PeriodWeekday, Key: "Monday", Count: 3, Total: 30}})))

	// The hourly half is missing, so nothing is shown.
	_, _, err := findPatternCommand(t, "daily").readStored(ctx, cache, "chk")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)

	require.NoError(t, cache.UpsertSnapshot(ctx, insight.NewSnapshot("chk", insight.SnapshotHourly, now,
		[]insight.PeriodBucket{{PeriodType: insight.PeriodHour, Key: "21", Count: 3, Total: 30}})))

	raw, rendered, err := findPatternCommand(t, "daily").readStored(ctx, cache, "chk")
	require.NoError(t, err)
	assert.Len(t, raw, 2)
	assert.Contains(t, rendered, "Monday")
	assert.Contains(t, rendered, "Stored Hourly Patterns")
}

func TestReadStoredRecurring(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Accounts: []model.Account{{ID: "chk"}},
	})
	cache := snapshot.New(db.Storage, time.Minute)
	recurring := findPatternCommand(t, "recurring")

	_, _, err := recurring.readStored(ctx, cache, "chk")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)

	// A run that found nothing is still a stored result.
	require.NoError(t, db.Storage.ReplaceRecurring(ctx, "chk", nil))
	_, rendered, err := recurring.readStored(ctx, cache, "chk")
	require.NoError(t, err)
	assert.Contains(t, rendered, "No recurring payments detected")
}
