package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"research-assistant/internal/extract"
)

// Key prefix for cached extraction results
const docKeyPrefix = "extract:"

// RedisCache stores extraction results in Redis as JSON.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client and verifies connectivity.
func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// GetDocument retrieves a cached extraction result by key.
func (c *RedisCache) GetDocument(ctx context.Context, key string) (*extract.Document, error) {
	data, err := c.client.Get(ctx, docKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var doc extract.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SetDocument stores an extraction result with TTL.
func (c *RedisCache) SetDocument(ctx context.Context, key string, doc *extract.Document, ttl time.Duration) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, docKeyPrefix+key, data, ttl).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
