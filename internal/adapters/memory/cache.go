// Package memory holds in-process adapters used when no Valkey is configured
// and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/crimereport/internal/core/ports"
)

type entry struct {
	value   []byte
	expires time.Time
}

// Cache implements ports.CacheService in memory. Expired keys are dropped
// lazily on read.
type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

func NewCache() *Cache {
	return &Cache{items: make(map[string]entry), now: time.Now}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	if c.expired(e) {
		c.mu.Lock()
		// A Set may have replaced the entry since the read lock was released.
		if cur, ok := c.items[key]; ok && c.expired(cur) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, ports.ErrCacheMiss
	}
	return append([]byte(nil), e.value...), nil
}

func (c *Cache) expired(e entry) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

// Set stores value. A non-positive ttl never expires.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttlSeconds > 0 {
		e.expires = c.now().Add(time.Duration(ttlSeconds) * time.Second)
	}
	c.mu.Lock()
	c.items[key] = e
	c.mu.Unlock()
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}
