package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore/vecmath"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
)

var _ driven.EmbeddingCache = (*RedisCache)(nil)

// RedisCache stores vectors as little-endian float32 blobs in Redis.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisCache{rdb: rdb, ttl: cfg.TTL}, nil
}

// Get returns the cached vector, ok=false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	vec, err := vecmath.Decode(b)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Set stores vec with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, vec []float32) error {
	return c.rdb.Set(ctx, key, vecmath.Encode(vec), c.ttl).Err()
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
