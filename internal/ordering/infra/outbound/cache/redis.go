// Package cache implementa la cache de catálogo (Redis o memoria).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"github.com/go-redis/redis/v8"
)

// RedisCache serializa valores a JSON con TTL en Redis.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, time.Duration(ttlSecs)*time.Second).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

var _ domain.CatalogCache = (*RedisCache)(nil)
