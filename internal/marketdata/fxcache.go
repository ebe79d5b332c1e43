package marketdata

import (
	"sync"
	"time"
)

// RateCache is a TTL-bounded cache of exchange rates keyed by currency
// pair ("USDEUR"). Rates go stale after the TTL and the cache holds at
// most maxEntries pairs, evicting the oldest entry when full. The clock is
// injectable so expiry is testable without sleeping.
//
// The cache is process-wide and read-mostly; a race between two requests
// at worst causes one redundant upstream fetch.
type RateCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	entries    map[string]rateEntry
}

type rateEntry struct {
	rate      float64
	fetchedAt time.Time
}

// NewRateCache creates a cache with the given TTL and size bound.
// maxEntries below 1 is treated as 1.
func NewRateCache(ttl time.Duration, maxEntries int) *RateCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &RateCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[string]rateEntry),
	}
}

// SetClock replaces the cache's time source. Tests use this to advance
// time past the TTL deterministically.
func (c *RateCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns the cached rate for a pair, or false when the pair is
// absent or its entry has outlived the TTL.
func (c *RateCache) Get(pair string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[pair]
	if !ok {
		return 0, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		delete(c.entries, pair)
		return 0, false
	}
	return entry.rate, true
}

// Put stores a freshly fetched rate, evicting the oldest entry when the
// cache is at capacity.
func (c *RateCache) Put(pair string, rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[pair]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[pair] = rateEntry{rate: rate, fetchedAt: c.now()}
}

// Len reports the number of cached pairs, expired or not.
func (c *RateCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *RateCache) evictOldestLocked() {
	var oldestPair string
	var oldestAt time.Time
	first := true
	for pair, entry := range c.entries {
		if first || entry.fetchedAt.Before(oldestAt) {
			oldestPair = pair
			oldestAt = entry.fetchedAt
			first = false
		}
	}
	if oldestPair != "" {
		delete(c.entries, oldestPair)
	}
}
