package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shelfwise/shelfwise/pkg/cache"
	"github.com/shelfwise/shelfwise/pkg/googlebooks"
)

// catalogCacheTTL bounds how long fallback search results are reused. The
// curated queries are static, so an hour of staleness is invisible to users and
// keeps the service inside the catalog API's free quota.
const catalogCacheTTL = time.Hour

const catalogCacheEntries = 64

// CachingCatalogSearcher decorates a CatalogSearcher with a TTL cache.
// Concurrent misses for the same query coalesce into one upstream call.
type CachingCatalogSearcher struct {
	inner CatalogSearcher
	cache *cache.TTLLoaderCache[[]googlebooks.Book]
}

var _ CatalogSearcher = (*CachingCatalogSearcher)(nil)

// NewCachingCatalogSearcher wraps inner with result caching.
func NewCachingCatalogSearcher(inner CatalogSearcher) *CachingCatalogSearcher {
	return &CachingCatalogSearcher{
		inner: inner,
		cache: cache.NewTTLLoaderCache[[]googlebooks.Book](catalogCacheEntries, catalogCacheTTL),
	}
}

// Search returns cached results for (query, maxResults) or loads them from the
// wrapped searcher. Errors are not cached; the next call retries upstream.
func (s *CachingCatalogSearcher) Search(ctx context.Context, query string, maxResults int) ([]googlebooks.Book, error) {
	key := fmt.Sprintf("%d|%s", maxResults, query)

	return s.cache.Get(ctx, key, func(ctx context.Context, _ string) ([]googlebooks.Book, error) {
		return s.inner.Search(ctx, query, maxResults)
	})
}
