// Package snapshot keeps recently computed pattern results in memory in
// front of an optional durable pattern store.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/insight"
)

// Default cache timings.
const (
	DefaultExpiration = 30 * time.Minute
	CleanupInterval   = 10 * time.Minute
)

var (
	_ insight.PatternStore  = (*Cache)(nil)
	_ insight.PatternReader = (*Cache)(nil)
)

// Store is the durable side of the cache.
type Store interface {
	insight.PatternStore
	insight.PatternReader
	DeletePatterns(ctx context.Context, accountID string) error
}

// Cache is a write-through, read-through pattern store. Writes land in the
// backing store when one is configured and then in memory. Reads are served
// from memory and fall back to the backing store on a miss.
type Cache struct {
	backing Store
	items   *cache.Cache
}

// New creates a cache in front of backing, which may be nil.
func New(backing Store, expiration time.Duration) *Cache {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &Cache{
		backing: backing,
		items:   cache.New(expiration, CleanupInterval),
	}
}

var snapshotTypes = []string{insight.SnapshotDaily, insight.SnapshotHourly, insight.SnapshotWeekly, insight.SnapshotMonthly}

func snapshotKey(accountID, patternType string) string {
	return fmt.Sprintf("snapshot:%s:%s", accountID, patternType)
}

func recurringKey(accountID string) string {
	return "recurring:" + accountID
}

// UpsertSnapshot stores the snapshot in the backing store, then in memory.
func (c *Cache) UpsertSnapshot(ctx context.Context, snapshot insight.Snapshot) error {
	if c.backing != nil {
		if err := c.backing.UpsertSnapshot(ctx, snapshot); err != nil {
			return err
		}
	}
	c.items.SetDefault(snapshotKey(snapshot.AccountID, snapshot.PatternType), cloneSnapshot(snapshot))
	return nil
}

// ReplaceRecurring stores the series in the backing store, then in memory.
func (c *Cache) ReplaceRecurring(ctx context.Context, accountID string, series []insight.RecurringSeries) error {
	if c.backing != nil {
		if err := c.backing.ReplaceRecurring(ctx, accountID, series); err != nil {
			return err
		}
	}
	c.items.SetDefault(recurringKey(accountID), cloneSeries(series))
	return nil
}

// GetSnapshot returns the snapshot from memory or, on a miss, from the
// backing store, remembering what it found.
func (c *Cache) GetSnapshot(ctx context.Context, accountID, patternType string) (*insight.Snapshot, error) {
	key := snapshotKey(accountID, patternType)
	if v, ok := c.items.Get(key); ok {
		if snap, ok := v.(insight.Snapshot); ok {
			out := cloneSnapshot(snap)
			return &out, nil
		}
	}
	if c.backing == nil {
		return nil, fmt.Errorf("%s snapshot for %s: %w", patternType, accountID, common.ErrNotFound)
	}

	snap, err := c.backing.GetSnapshot(ctx, accountID, patternType)
	if err != nil {
		return nil, err
	}
	c.items.SetDefault(key, cloneSnapshot(*snap))
	return snap, nil
}

// GetRecurring returns the recurring series from memory or, on a miss, from
// the backing store.
func (c *Cache) GetRecurring(ctx context.Context, accountID string) ([]insight.RecurringSeries, error) {
	key := recurringKey(accountID)
	if v, ok := c.items.Get(key); ok {
		if series, ok := v.([]insight.RecurringSeries); ok {
			return cloneSeries(series), nil
		}
	}
	if c.backing == nil {
		return nil, fmt.Errorf("recurring series for %s: %w", accountID, common.ErrNotFound)
	}

	series, err := c.backing.GetRecurring(ctx, accountID)
	if err != nil {
		return nil, err
	}
	c.items.SetDefault(key, cloneSeries(series))
	return series, nil
}

// Invalidate drops every stored result for an account, in memory and in the
// backing store, so the next analysis recomputes from transactions.
func (c *Cache) Invalidate(ctx context.Context, accountID string) error {
	c.items.Delete(recurringKey(accountID))
	for _, pt := range snapshotTypes {
		c.items.Delete(snapshotKey(accountID, pt))
	}
	if c.backing == nil {
		return nil
	}
	if err := c.backing.DeletePatterns(ctx, accountID); err != nil {
		return fmt.Errorf("failed to clear stored patterns for %s: %w", accountID, err)
	}
	return nil
}

// Len reports the number of cached entries, including expired ones not yet
// cleaned up.
func (c *Cache) Len() int {
	return c.items.ItemCount()
}

func cloneSnapshot(s insight.Snapshot) insight.Snapshot {
	s.Buckets = append([]insight.SnapshotBucket(nil), s.Buckets...)
	return s
}

func cloneSeries(series []insight.RecurringSeries) []insight.RecurringSeries {
	out := make([]insight.RecurringSeries, len(series))
	copy(out, series)
	return out
}
