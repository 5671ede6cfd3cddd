package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultMaxEntries bounds the cache when no explicit limit is configured.
const DefaultMaxEntries = 10000

// Key builds a deterministic cache key by hashing its parts. Parts are
// joined with a separator so adjacent parts cannot collide.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// TTLCache is a bounded in-process cache with per-entry TTLs. Expired
// entries are reclaimed by Sweep, either called explicitly or from the
// background janitor; on overflow the entry closest to expiry is evicted.
type TTLCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time

	janitorStop chan struct{}
	stopOnce    sync.Once
}

// NewTTLCache creates a cache bounded to maxEntries. A non-positive bound
// falls back to DefaultMaxEntries.
func NewTTLCache(maxEntries int) *TTLCache {
	return newTTLCache(maxEntries, time.Now)
}

func newTTLCache(maxEntries int, now func() time.Time) *TTLCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &TTLCache{
		entries:     make(map[string]entry),
		maxEntries:  maxEntries,
		now:         now,
		janitorStop: make(chan struct{}),
	}
}

// Get retrieves a cached value, erroring on miss or expiry
func (c *TTLCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	return e.value, nil
}

// Set stores a value until its TTL elapses. Values with non-positive TTLs
// are not stored.
func (c *TTLCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	return nil
}

// Delete removes a value
func (c *TTLCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Exists checks whether a live entry is present
func (c *TTLCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return ok && !c.now().After(e.expiresAt), nil
}

// Len returns the number of stored entries, expired ones included
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Sweep removes all expired entries and reports how many were removed.
func (c *TTLCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps expired entries in the background until Stop is
// called.
func (c *TTLCache) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-c.janitorStop:
				return
			}
		}
	}()
}

// Stop terminates the background janitor. Safe to call more than once.
func (c *TTLCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.janitorStop)
	})
}

// evictLocked drops the entry closest to expiry. Callers hold the write
// lock.
func (c *TTLCache) evictLocked() {
	var oldestKey string
	var oldestExpiry time.Time
	first := true
	for key, e := range c.entries {
		if first || e.expiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = e.expiresAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
