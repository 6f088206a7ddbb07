package signal

import (
	"sync"
	"time"
)

type cacheEntry struct {
	result  Result
	expires time.Time
}

// Cache is an in-process TTL cache for analysis results. Entries expire
// lazily on read and eagerly via Sweep.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the given entry lifetime
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached result for key if it has not expired
func (c *Cache) Get(key string) (Result, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expires) {
		return Result{}, false
	}
	return entry.result, true
}

// Set stores a result under key for the cache TTL
func (c *Cache) Set(key string, result Result) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{result: result, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Sweep removes expired entries and reports how many were dropped
func (c *Cache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
