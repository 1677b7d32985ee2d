package cache

import (
	"context"
	"time"

	"research-assistant/internal/extract"
)

// NoOpCache is a cache implementation that does nothing. It is the default
// when no Redis is configured: all operations succeed but every read is a
// cache miss, so extraction simply reruns.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// GetDocument always returns nil (cache miss).
func (c *NoOpCache) GetDocument(ctx context.Context, key string) (*extract.Document, error) {
	return nil, nil
}

// SetDocument does nothing and always succeeds.
func (c *NoOpCache) SetDocument(ctx context.Context, key string, doc *extract.Document, ttl time.Duration) error {
	return nil
}

// Close does nothing and always succeeds.
func (c *NoOpCache) Close() error {
	return nil
}
