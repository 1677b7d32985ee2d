package cache

import (
	"context"
	"time"

	"research-assistant/internal/extract"
)

// Cache stores extraction results keyed by upload-set digest. Extraction is
// deterministic, so a hit is interchangeable with a recompute.
type Cache interface {
	// GetDocument retrieves a cached extraction result by key.
	// Returns nil if not found.
	GetDocument(ctx context.Context, key string) (*extract.Document, error)

	// SetDocument stores an extraction result with TTL.
	SetDocument(ctx context.Context, key string, doc *extract.Document, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}
