package memory

import (
	"context"
	"sync"
	"time"

	"github.com/stockpeek/edge-gateway/internal/models"
)

// InMemoryCache is the zero-dependency edge cache used when no redis
// address is configured. Expired entries are dropped lazily on read.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
	now     func() time.Time
}

func NewCacheRepository() *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]models.CacheEntry),
		now:     time.Now,
	}
}

func (c *InMemoryCache) Get(_ context.Context, key string) (*models.CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if entry.Age(c.now()) > entry.Lifetime() {
		c.mu.Lock()
		// Recheck under the write lock, a concurrent Set may have replaced it.
		if cur, still := c.entries[key]; still && cur.StoredAt.Equal(entry.StoredAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, nil
	}
	return &entry, nil
}

func (c *InMemoryCache) Set(_ context.Context, key string, entry models.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry

	return nil
}
