package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from its parts
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "driftscan:v1:" + hex.EncodeToString(hash[:])
}

// GetJSON decodes a cached JSON value into v
func GetJSON(c Cache, key string, v any) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON stores v as JSON
func SetJSON(c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, data, ttl)
}

// CountingCache wraps a cache and counts hits and misses
type CountingCache struct {
	Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// WithStats wraps c with hit/miss counters
func WithStats(c Cache) *CountingCache {
	return &CountingCache{Cache: c}
}

// Get retrieves a value and records the outcome
func (c *CountingCache) Get(key string) ([]byte, bool) {
	v, ok := c.Cache.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Hits returns the number of successful lookups
func (c *CountingCache) Hits() int64 { return c.hits.Load() }

// Misses returns the number of failed lookups
func (c *CountingCache) Misses() int64 { return c.misses.Load() }
