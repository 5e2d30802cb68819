package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i474232898/weather-trading-insights/internal/weather"
)

type entry struct {
	bundle    weather.RawWeatherBundle
	expiresAt time.Time
}

// MemoryBundleCache is a process-local TTL cache.
type MemoryBundleCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryBundleCache creates a cache whose entries live for ttl. A
// non-positive ttl keeps entries forever.
func NewMemoryBundleCache(ttl time.Duration) *MemoryBundleCache {
	return &MemoryBundleCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryBundleCache) Get(_ context.Context, lat, lon float64) (weather.RawWeatherBundle, bool) {
	key := weather.CoordinateKey(lat, lon)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.expired(e) {
		if ok {
			c.mu.Lock()
			if cur, still := c.entries[key]; still && c.expired(cur) {
				delete(c.entries, key)
			}
			c.mu.Unlock()
		}
		c.misses.Add(1)
		return weather.RawWeatherBundle{}, false
	}

	c.hits.Add(1)
	return e.bundle, true
}

func (c *MemoryBundleCache) Set(_ context.Context, lat, lon float64, bundle weather.RawWeatherBundle) {
	e := entry{bundle: bundle}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[weather.CoordinateKey(lat, lon)] = e
	c.mu.Unlock()
}

// Stats reports hit and miss counts since creation.
func (c *MemoryBundleCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryBundleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryBundleCache) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}
