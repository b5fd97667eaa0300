package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/model"
)

func TestSQLiteStorage_Snapshots(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.CreateAccount(ctx, &model.Account{ID: "acc1"}); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	buckets := []insight.PeriodBucket{
		{PeriodType: insight.PeriodWeekday, Key: "Monday", Mean: 20, Median: 20, Total: 100, Count: 5},
		{PeriodType: insight.PeriodWeekday, Key: "Friday", Mean: 50, Median: 40, StdDev: 12.5, Total: 600, Count: 12},
	}
	snap := insight.NewSnapshot("acc1", insight.SnapshotDaily, testBase, buckets)
	if err := store.UpsertSnapshot(ctx, snap); err != nil {
		t.Fatalf("UpsertSnapshot() error = %v", err)
	}

	got, err := store.GetSnapshot(ctx, "acc1", insight.SnapshotDaily)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if !got.ComputedAt.Equal(testBase) {
		t.Errorf("expected computed_at %v, got %v", testBase, got.ComputedAt)
	}
	if len(got.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(got.Buckets))
	}
	if got.Buckets[0].Key != "Monday" || got.Buckets[1].Key != "Friday" {
		t.Errorf("bucket order not preserved: %+v", got.Buckets)
	}
	if got.Buckets[0].Confidence != 0.5 || got.Buckets[1].Confidence != 1 {
		t.Errorf("unexpected confidences %v, %v", got.Buckets[0].Confidence, got.Buckets[1].Confidence)
	}
	if got.Buckets[1].PeriodType != insight.PeriodWeekday {
		t.Errorf("expected weekday period type, got %s", got.Buckets[1].PeriodType)
	}

	// A second write fully replaces the first
	replacement := insight.NewSnapshot("acc1", insight.SnapshotDaily, testBase.AddDate(0, 0, 1), buckets[:1])
	if err := store.UpsertSnapshot(ctx, replacement); err != nil {
		t.Fatalf("UpsertSnapshot() replace error = %v", err)
	}
	got, err = store.GetSnapshot(ctx, "acc1", insight.SnapshotDaily)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if len(got.Buckets) != 1 {
		t.Errorf("expected 1 bucket after replace, got %d", len(got.Buckets))
	}

	if _, err := store.GetSnapshot(ctx, "acc1", insight.SnapshotMonthly); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_RecurringSeries(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.CreateAccount(ctx, &model.Account{ID: "acc1"}); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	if _, err := store.GetRecurring(ctx, "acc1"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound before any run, got %v", err)
	}

	next := testBase.AddDate(0, 1, 0)
	series := []insight.RecurringSeries{
		{
			MerchantKey:     "gym membership",
			Category:        "Fitness",
			Frequency:       insight.FrequencyMonthly,
			AverageAmount:   40,
			AverageInterval: 30,
			Confidence:      0.8,
			LastSeen:        testBase,
			OccurrenceCount: 4,
		},
		{
			MerchantKey:     "netflix",
			Category:        "Entertainment",
			Frequency:       insight.FrequencyMonthly,
			AverageAmount:   15.99,
			AverageInterval: 30.5,
			Confidence:      0.95,
			LastSeen:        testBase,
			NextExpected:    &next,
			OccurrenceCount: 6,
		},
	}
	if err := store.ReplaceRecurring(ctx, "acc1", series); err != nil {
		t.Fatalf("ReplaceRecurring() error = %v", err)
	}

	got, err := store.GetRecurring(ctx, "acc1")
	if err != nil {
		t.Fatalf("GetRecurring() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 series, got %d", len(got))
	}
	if got[0].MerchantKey != "netflix" {
		t.Errorf("expected highest confidence first, got %s", got[0].MerchantKey)
	}
	if got[0].NextExpected == nil || !got[0].NextExpected.Equal(next) {
		t.Errorf("expected next expected %v, got %v", next, got[0].NextExpected)
	}
	if got[1].NextExpected != nil {
		t.Errorf("expected nil next expected, got %v", got[1].NextExpected)
	}

	// Replacing with an empty set clears the account
	if err := store.ReplaceRecurring(ctx, "acc1", nil); err != nil {
		t.Fatalf("ReplaceRecurring() clear error = %v", err)
	}
	got, err = store.GetRecurring(ctx, "acc1")
	if err != nil {
		t.Fatalf("GetRecurring() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no series, got %d", len(got))
	}
}

func TestSQLiteStorage_DeletePatterns(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, id := range []string{"acc1", "acc2"} {
		if err := store.CreateAccount(ctx, &model.Account{ID: id}); err != nil {
			t.Fatalf("CreateAccount() error = %v", err)
		}
		buckets := []insight.PeriodBucket{{PeriodType: insight.PeriodISOWeek, Key: "2024-W01", Total: 10, Count: 1}}
		if err := store.UpsertSnapshot(ctx, insight.NewSnapshot(id, insight.SnapshotWeekly, testBase, buckets)); err != nil {
			t.Fatalf("UpsertSnapshot() error = %v", err)
		}
		series := []insight.RecurringSeries{{MerchantKey: "gym", Frequency: insight.FrequencyMonthly, LastSeen: testBase, OccurrenceCount: 3}}
		if err := store.ReplaceRecurring(ctx, id, series); err != nil {
			t.Fatalf("ReplaceRecurring() error = %v", err)
		}
	}

	if err := store.DeletePatterns(ctx, "acc1"); err != nil {
		t.Fatalf("DeletePatterns() error = %v", err)
	}

	if _, err := store.GetSnapshot(ctx, "acc1", insight.SnapshotWeekly); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected deleted snapshot, got %v", err)
	}
	if _, err := store.GetRecurring(ctx, "acc1"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected deleted recurring series, got %v", err)
	}

	if _, err := store.GetSnapshot(ctx, "acc2", insight.SnapshotWeekly); err != nil {
		t.Errorf("other account snapshot should survive, got %v", err)
	}
	got, err := store.GetRecurring(ctx, "acc2")
	if err != nil || len(got) != 1 {
		t.Errorf("other account recurring should survive, got %v, %v", got, err)
	}
}
