package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/sanad-aid/sanadbot/core/logger"
	"log/slog"
)

// CacheInfo describes the cached snapshot state for diagnostics.
type CacheInfo struct {
	Rows   int
	Age    time.Duration
	Cached bool
}

// InfoProvider is implemented by sources that can report cache state.
type InfoProvider interface {
	Info() CacheInfo
}

// WithCache wraps src with a TTL snapshot cache. A non-positive ttl
// returns src unchanged, keeping the default fetch-per-query behaviour.
func WithCache(src Source, ttl time.Duration) Source {
	if ttl <= 0 {
		return src
	}
	return &cachedSource{src: src, ttl: ttl}
}

type cachedSource struct {
	src Source
	ttl time.Duration

	mu       sync.Mutex
	snapshot []Record
	fetched  time.Time
}

// Fetch serves the cached snapshot while fresh, otherwise refreshes it.
// Snapshots are treated as immutable by callers, so the cached slice is
// returned directly.
func (c *cachedSource) Fetch(ctx context.Context) ([]Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && time.Since(c.fetched) < c.ttl {
		logger.SVCDataset.LogAttrs(ctx, slog.LevelDebug, "snapshot.cache",
			slog.String("cache", "hit"),
			slog.Int("rows", len(c.snapshot)),
		)
		return c.snapshot, nil
	}

	kind := "miss"
	if c.snapshot != nil {
		kind = "refresh"
	}

	records, err := c.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.snapshot = records
	c.fetched = time.Now()
	logger.SVCDataset.LogAttrs(ctx, slog.LevelDebug, "snapshot.cache",
		slog.String("cache", kind),
		slog.Int("rows", len(records)),
	)
	return records, nil
}

func (c *cachedSource) Info() CacheInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return CacheInfo{}
	}
	return CacheInfo{
		Rows:   len(c.snapshot),
		Age:    time.Since(c.fetched),
		Cached: true,
	}
}
