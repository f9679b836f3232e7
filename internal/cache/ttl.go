package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/mkarlsen/pulse/internal/core"
)

// TTLCache caches derived per-day records (latest-report lookups and
// similar) keyed by (symbol, day). Expiry is a logical check at read
// time; there is no background sweep.
type TTLCache struct {
	ttl time.Duration
	m   map[string]ttlEntry
	mu  sync.RWMutex

	// now is swapped in tests to control the clock.
	now func() time.Time
}

type ttlEntry struct {
	v  any
	ts time.Time
}

// NewTTLCache creates a read-time-expiring cache with the given TTL.
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		ttl: ttl,
		m:   make(map[string]ttlEntry),
		now: time.Now,
	}
}

// DayKey builds the (symbol, day) key for derived records.
func DayKey(symbol string, day time.Time) string {
	return strings.ToUpper(strings.TrimSpace(symbol)) + "_" + core.DateKey(day)
}

// Get returns the cached value for key, reporting "not found" when the
// entry is absent or its age exceeds the TTL.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.ts) > c.ttl {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

// Put stores a value under key with the current timestamp.
func (c *TTLCache) Put(key string, v any) {
	c.mu.Lock()
	c.m[key] = ttlEntry{v: v, ts: c.now()}
	c.mu.Unlock()
}
