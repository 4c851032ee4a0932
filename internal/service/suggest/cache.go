package suggest

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/makersrow/suggest/internal/domain"
)

// resultCache stores aggregated suggestion pages keyed by normalized
// prefix. Entries expire after a fixed TTL (lazy expiry inside the LRU)
// and the cache is capacity-bounded with least-recently-used eviction so
// a long-running process cannot grow it without bound.
type resultCache struct {
	lru *expirable.LRU[string, []domain.Suggestion]
}

func newResultCache(size int, ttl time.Duration) *resultCache {
	return &resultCache{
		lru: expirable.NewLRU[string, []domain.Suggestion](size, nil, ttl),
	}
}

// Get returns the cached page for key, or false when absent or expired.
// The returned slice is a copy: callers may not mutate cached state.
func (c *resultCache) Get(key string) ([]domain.Suggestion, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	out := make([]domain.Suggestion, len(v))
	copy(out, v)
	return out, true
}

// Put stores the page for key, resetting its TTL.
func (c *resultCache) Put(key string, value []domain.Suggestion) {
	c.lru.Add(key, value)
}
