// internal/cache/memory.go
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mkarlsen/pulse/internal/core"
)

// RangeCache is an in-memory cache of fully materialized price windows
// keyed by (symbol, start, end). Entries never expire; the cache lives
// for the process lifetime and is bounded by entry count, evicting the
// oldest insertion when full.
type RangeCache struct {
	entries map[string]rangeEntry
	order   []string
	maxSize int
	mu      sync.RWMutex
}

type rangeEntry struct {
	series     core.Series
	insertedAt time.Time
}

// NewRangeCache creates a range cache holding at most maxSize windows.
func NewRangeCache(maxSize int) *RangeCache {
	return &RangeCache{
		entries: make(map[string]rangeEntry, maxSize),
		maxSize: maxSize,
	}
}

// RangeKey builds the canonical cache key for a symbol and window.
func RangeKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s",
		strings.ToUpper(strings.TrimSpace(symbol)),
		core.DateKey(start), core.DateKey(end))
}

// Get returns the cached series for the key, if present.
func (c *RangeCache) Get(key string) (core.Series, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.series, true
}

// Put stores a materialized window, evicting the oldest entry when the
// cache is full.
func (c *RangeCache) Put(key string, s core.Series) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = rangeEntry{series: s, insertedAt: time.Now()}
}

// Len returns the number of cached windows.
func (c *RangeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops all cached windows.
func (c *RangeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]rangeEntry, c.maxSize)
	c.order = nil
}
