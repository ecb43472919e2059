// Package cache deduplicates and memoizes pricing calculations. Results
// are keyed by a deterministic fingerprint of the request plus the
// configuration version; a version bump invalidates everything, since a
// stale price is a correctness bug, not a performance one.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Fingerprint derives the cache key from a calculation request and the
// configuration version it runs against. encoding/json sorts map keys, so
// identical inputs always produce identical fingerprints.
func Fingerprint(request any, version int64) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("fingerprint request: %w", err)
	}
	sum := sha256.Sum256(fmt.Appendf(payload, "|v%d", version))
	return hex.EncodeToString(sum[:]), nil
}

// Cache memoizes calculation results. At most one computation per
// fingerprint is in flight at a time; concurrent identical requests await
// and share the first result instead of recomputing.
type Cache struct {
	mu      sync.Mutex
	version int64
	entries map[string]any
	group   singleflight.Group
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]any)}
}

// Do returns the cached result for the fingerprint, or runs compute once
// and caches it. A version different from the cache's current one drops all
// entries first.
func (c *Cache) Do(fingerprint string, version int64, compute func() (any, error)) (any, error) {
	c.mu.Lock()
	if version != c.version {
		c.version = version
		c.entries = make(map[string]any)
	}
	if cached, ok := c.entries[fingerprint]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	result, err, _ := c.group.Do(fingerprint, func() (any, error) {
		value, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if version == c.version {
			c.entries[fingerprint] = value
		}
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Invalidate drops every entry and records the new configuration version.
func (c *Cache) Invalidate(version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = version
	c.entries = make(map[string]any)
}

// Len reports the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
