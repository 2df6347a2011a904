package export

import (
	"sync"
	"time"
)

type batchCacheEntry struct {
	model     string
	engine    string
	fetchedAt time.Time
}

type batchCache struct {
	mu      sync.RWMutex
	entries map[string]batchCacheEntry
	ttl     time.Duration
}

func newBatchCache(ttl time.Duration) *batchCache {
	return &batchCache{
		entries: make(map[string]batchCacheEntry),
		ttl:     ttl,
	}
}

func (c *batchCache) Get(id string) (batchCacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	if !ok || time.Since(entry.fetchedAt) > c.ttl {
		return batchCacheEntry{}, false
	}
	return entry, true
}

func (c *batchCache) Set(id string, entry batchCacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry.fetchedAt = time.Now()
	c.entries[id] = entry
}
