package repo

import (
	"context"
	"sync/atomic"

	"github.com/miradorstack/mirador-fmeda/internal/cache"
)

// countingCache records how many lookups the repository served from the cache.
type countingCache struct {
	*cache.MemoryProvider
	hits atomic.Int64
}

func newCountingCache() *countingCache {
	return &countingCache{MemoryProvider: cache.NewMemoryProvider()}
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.MemoryProvider.Get(ctx, key)
	if err == nil {
		c.hits.Add(1)
	}
	return value, err
}
