package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/davicafu/comanda/internal/ordering/domain"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryCache es el fallback cuando Redis no está disponible. Guarda los
// valores serializados para imitar la semántica de RedisCache.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewInMemoryCache(cleanupEvery time.Duration) *InMemoryCache {
	c := &InMemoryCache{entries: make(map[string]entry)}
	if cleanupEvery > 0 {
		go c.janitor(cleanupEvery)
	}
	return c
}

func (c *InMemoryCache) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.mu.Unlock()
	}
}

func (c *InMemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *InMemoryCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = entry{data: data, expiresAt: time.Now().Add(time.Duration(ttlSecs) * time.Second)}
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

var _ domain.CatalogCache = (*InMemoryCache)(nil)
