package cache

import (
	"time"

	"github.com/ppiankov/driftscan/internal/model"
)

// LayeredCache checks a fast layer before a slow one
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a new layered cache
func NewLayeredCache(memory, disk Cache) *LayeredCache {
	return &LayeredCache{memory: memory, disk: disk}
}

// New builds the cache described by cfg: memory only, or memory over disk when enabled
func New(cfg model.CacheConfig) Cache {
	memory := NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	if !cfg.Enabled || cfg.Dir == "" {
		return memory
	}
	return NewLayeredCache(memory, NewDiskCache(cfg.Dir, cfg.DiskTTL))
}

// Get checks memory first, then disk, promoting disk hits
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
