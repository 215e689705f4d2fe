package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "shopdesk:catalog:products"

// Loader fetches the product catalog, preferring a Redis-cached copy so that
// restarts and sibling processes do not hammer the remote catalog service.
// The background refresh job re-warms the same key.
type Loader struct {
	source Source
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewLoader constructs a Loader. cache may be nil, in which case every load
// goes to the source.
func NewLoader(source Source, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Loader {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Loader{source: source, cache: cache, ttl: ttl, logger: logger}
}

// Load returns a catalog snapshot, from cache when fresh.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	if l.cache != nil {
		raw, err := l.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var products []Product
			jsonErr := json.Unmarshal(raw, &products)
			if jsonErr == nil {
				return NewSnapshot(products, time.Now()), nil
			}
			l.logger.Warn("catalog cache payload corrupt, refetching", slog.Any("error", jsonErr))
		} else if !errors.Is(err, redis.Nil) {
			l.logger.Warn("catalog cache read failed", slog.Any("error", err))
		}
	}
	return l.Refresh(ctx)
}

// Refresh fetches the catalog from the source and re-warms the cache.
func (l *Loader) Refresh(ctx context.Context) (*Snapshot, error) {
	products, err := l.source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if l.cache != nil {
		raw, err := json.Marshal(products)
		if err == nil {
			if err := l.cache.Set(ctx, cacheKey, raw, l.ttl).Err(); err != nil {
				l.logger.Warn("catalog cache write failed", slog.Any("error", err))
			}
		}
	}
	return NewSnapshot(products, time.Now()), nil
}

// Holder hands out the current snapshot, reloading through the Loader once
// the held copy is older than the TTL. Snapshots themselves stay immutable;
// only the pointer swaps.
type Holder struct {
	loader *Loader
	ttl    time.Duration

	mu   sync.Mutex
	snap *Snapshot
}

// NewHolder constructs a Holder around a loader.
func NewHolder(loader *Loader, ttl time.Duration) *Holder {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Holder{loader: loader, ttl: ttl}
}

// Get returns the current snapshot, loading or reloading as needed.
func (h *Holder) Get(ctx context.Context) (*Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.snap != nil && time.Since(h.snap.LoadedAt()) < h.ttl {
		return h.snap, nil
	}
	snap, err := h.loader.Load(ctx)
	if err != nil {
		if h.snap != nil {
			// Stale catalog beats no catalog while the remote is down.
			return h.snap, nil
		}
		return nil, err
	}
	h.snap = snap
	return snap, nil
}
