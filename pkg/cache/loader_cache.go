// Package cache provides a generic TTL loader cache combining an expiring LRU with
// singleflight to coalesce concurrent loads for the same key.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// TTLLoaderCache caches loaded values for a bounded time. On a miss it runs the
// load callback; concurrent misses for the same key share one load via singleflight,
// so a burst of identical fallback searches triggers a single upstream request.
// Entries expire after the configured TTL and the LRU bounds total memory.
type TTLLoaderCache[V any] struct {
	lru   *expirable.LRU[string, V]
	group singleflight.Group
}

// NewTTLLoaderCache creates a loader cache holding at most maxEntries values,
// each valid for ttl.
func NewTTLLoaderCache[V any](maxEntries int, ttl time.Duration) *TTLLoaderCache[V] {
	return &TTLLoaderCache[V]{
		lru: expirable.NewLRU[string, V](maxEntries, nil, ttl),
	}
}

// Get returns the cached value for key, loading it via load on miss or expiry.
// Load errors are not cached; the next Get retries.
func (c *TTLLoaderCache[V]) Get(ctx context.Context, key string, load func(context.Context, string) (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}

	val, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}

		loaded, loadErr := load(ctx, key)
		if loadErr != nil {
			return zero[V](), loadErr
		}

		c.lru.Add(key, loaded)

		return loaded, nil
	})
	if err != nil {
		return zero[V](), err
	}

	return val.(V), nil
}

// Invalidate removes the entry for key.
func (c *TTLLoaderCache[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

// Len returns the number of live entries.
func (c *TTLLoaderCache[V]) Len() int {
	return c.lru.Len()
}

func zero[V any]() (z V) { return z }
