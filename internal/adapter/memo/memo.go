// Package memo memoizes the health and geo loaders for the lifetime of the
// process. Only successful loads are stored, so a missing file or failed
// fetch is retried on the next run.
//
// Keys are the configured file path and region code, so a handful of entries
// covers every input the service ever sees. The LRU bound only guards against
// callers that vary the key; with the default MEMO_CACHE_SIZE nothing is evicted.
package memo

import (
	"context"
	"slices"
	"strconv"

	"github.com/couchcryptid/sp-health-heatmap/internal/domain"
	"github.com/couchcryptid/sp-health-heatmap/internal/observability"
	"golang.org/x/sync/singleflight"
)

// CachedHealthSource wraps a HealthSource with a per-path cache.
type CachedHealthSource struct {
	inner   domain.HealthSource
	cache   *lruCache[string, []domain.HealthRecord]
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedHealthSource creates a cache decorator around a health loader.
func NewCachedHealthSource(inner domain.HealthSource, maxEntries int, metrics *observability.Metrics) *CachedHealthSource {
	return &CachedHealthSource{
		inner:   inner,
		cache:   newLRUCache[string, []domain.HealthRecord](maxEntries),
		metrics: metrics,
	}
}

// Load returns the cached records for path, loading them on first use.
// Concurrent first calls for the same path share one load.
func (c *CachedHealthSource) Load(ctx context.Context, path string) ([]domain.HealthRecord, error) {
	if rows, ok := c.cache.get(path); ok {
		c.metrics.MemoLookups.WithLabelValues("health", "hit").Inc()
		return slices.Clone(rows), nil
	}
	c.metrics.MemoLookups.WithLabelValues("health", "miss").Inc()

	rows, err := shared(ctx, &c.group, path, func(ctx context.Context) ([]domain.HealthRecord, error) {
		rows, err := c.inner.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		c.cache.put(path, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(rows), nil
}

// CachedGeoSource wraps a GeoSource with a per-region-code cache.
type CachedGeoSource struct {
	inner   domain.GeoSource
	cache   *lruCache[int, []domain.GeoRecord]
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedGeoSource creates a cache decorator around a geo loader.
func NewCachedGeoSource(inner domain.GeoSource, maxEntries int, metrics *observability.Metrics) *CachedGeoSource {
	return &CachedGeoSource{
		inner:   inner,
		cache:   newLRUCache[int, []domain.GeoRecord](maxEntries),
		metrics: metrics,
	}
}

// Fetch returns the cached records for regionCode, fetching them on first use.
func (c *CachedGeoSource) Fetch(ctx context.Context, regionCode int) ([]domain.GeoRecord, error) {
	if rows, ok := c.cache.get(regionCode); ok {
		c.metrics.MemoLookups.WithLabelValues("geo", "hit").Inc()
		return slices.Clone(rows), nil
	}
	c.metrics.MemoLookups.WithLabelValues("geo", "miss").Inc()

	rows, err := shared(ctx, &c.group, strconv.Itoa(regionCode), func(ctx context.Context) ([]domain.GeoRecord, error) {
		rows, err := c.inner.Fetch(ctx, regionCode)
		if err != nil {
			return nil, err
		}
		c.cache.put(regionCode, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(rows), nil
}

// shared runs load once per key across concurrent callers. The load is
// detached from the caller's cancellation so one caller giving up does not
// fail the others waiting on the same key; each caller stops waiting when its
// own ctx is done.
func shared[V any](ctx context.Context, group *singleflight.Group, key string, load func(context.Context) (V, error)) (V, error) {
	detached := context.WithoutCancel(ctx)
	ch := group.DoChan(key, func() (any, error) {
		return load(detached)
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}
