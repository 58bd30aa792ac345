package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"blogread/config"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache miss")

// Cache is the opaque key→value store the entity repositories keep their
// denormalized views in. Values are JSON-encoded; Set overwrites
// unconditionally, which is what makes cascade refreshes idempotent.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects a cache to Redis using the application config.
func New(cfg config.AppConfig) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return &Cache{rdb: rdb, ttl: cfg.Cache.TTL()}
}

// Ping verifies the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get decodes the cached value for key into v.
func (c *Cache) Get(ctx context.Context, key string, v any) error {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Set overwrites the cached value for key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// Delete drops the key. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
