package services

import (
	"sync"
	"time"
)

// Cached view names. Writes that change what a view shows invalidate it.
const (
	ViewPublicProjects = "public-projects"
	ViewAdminDashboard = "admin-dashboard"
)

// maxViewEntries bounds the cache. Keys derived from request input, such as
// GitHub usernames, must not grow it without limit.
const maxViewEntries = 256

type cacheEntry struct {
	value   any
	expires time.Time
}

// ViewCache holds rendered read models in process memory with a TTL.
type ViewCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	max     int
	now     func() time.Time
}

func NewViewCache() *ViewCache {
	return &ViewCache{
		entries: make(map[string]cacheEntry),
		max:     maxViewEntries,
		now:     time.Now,
	}
}

// Get returns a live entry. An expired entry is removed.
func (c *ViewCache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().Before(entry.expires) {
		return entry.value, true
	}

	c.mu.Lock()
	if current, ok := c.entries[key]; ok && !c.now().Before(current.expires) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil, false
}

// Set stores value for ttl. Expired entries are swept on every insert. When
// the cache is still full, the entry closest to expiry is evicted.
func (c *ViewCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepLocked(now)
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evictSoonestLocked()
	}
	c.entries[key] = cacheEntry{value: value, expires: now.Add(ttl)}
}

// Len reports the number of stored entries, live or not yet swept.
func (c *ViewCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ViewCache) sweepLocked(now time.Time) {
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
		}
	}
}

func (c *ViewCache) evictSoonestLocked() {
	var (
		victim  string
		soonest time.Time
		found   bool
	)
	for key, entry := range c.entries {
		if !found || entry.expires.Before(soonest) {
			victim, soonest, found = key, entry.expires, true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}

// Invalidate drops the named views. Safe on a nil cache.
func (c *ViewCache) Invalidate(keys ...string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// cachedView returns the cached value for key or loads and stores it.
// Load errors are not cached. A nil cache always loads.
func cachedView[T any](c *ViewCache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if c != nil {
		if v, ok := c.Get(key); ok {
			if typed, ok := v.(T); ok {
				return typed, nil
			}
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if c != nil {
		c.Set(key, value, ttl)
	}
	return value, nil
}
