package rickmorty

import (
	"sync"
	"time"
)

type cacheEntry struct {
	body         []byte
	expiresAt    time.Time
	lastAccessed time.Time
}

// Cache is a thread-safe response cache with TTL expiry and LRU eviction.
// A nil *Cache is valid and caches nothing.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	ttl        time.Duration
	maxEntries int
	metrics    *Metrics
	now        func() time.Time
}

// NewCache returns a cache, or nil when ttl is not positive.
// maxEntries <= 0 means unbounded.
func NewCache(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		return nil
	}
	return &Cache{
		entries:    make(map[string]*cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// SetMetrics attaches hit/miss/size tracking.
func (c *Cache) SetMetrics(m *Metrics) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

// Get returns the cached body for key. Expired entries are dropped.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, ok := c.entries[key]
	if ok && now.After(entry.expiresAt) {
		delete(c.entries, key)
		c.setSize()
		ok = false
	}
	if !ok {
		if c.metrics != nil {
			c.metrics.RecordCacheMiss()
		}
		return nil, false
	}

	entry.lastAccessed = now
	if c.metrics != nil {
		c.metrics.RecordCacheHit()
	}
	return entry.body, true
}

// Set stores body under key, evicting the least recently used entry when full.
func (c *Cache) Set(key string, body []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictLRU()
	}

	now := c.now()
	c.entries[key] = &cacheEntry{
		body:         body,
		expiresAt:    now.Add(c.ttl),
		lastAccessed: now,
	}
	c.setSize()
}

// Delete removes key. It is a no-op for missing keys.
func (c *Cache) Delete(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.setSize()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.setSize()
}

// Len returns the number of entries, including expired ones not yet dropped.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLRU removes the least recently used entry. Caller holds the lock.
func (c *Cache) evictLRU() {
	var oldestKey string
	var oldest time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.lastAccessed.Before(oldest) {
			oldestKey = key
			oldest = entry.lastAccessed
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) setSize() {
	if c.metrics != nil {
		c.metrics.SetCacheSize(len(c.entries))
	}
}
