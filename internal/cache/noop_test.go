package cache

import (
	"context"
	"testing"
	"time"

	"research-assistant/internal/extract"
)

// TestNoOpCache verifies that NoOpCache implements the Cache interface
// correctly: every read is a miss and every write succeeds silently.
func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()

	doc, err := c.GetDocument(ctx, "test-key")
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil document (cache miss), got %v", doc)
	}

	stored := extract.NewDocument("Hello World.")
	if err := c.SetDocument(ctx, "test-key", &stored, time.Hour); err != nil {
		t.Errorf("expected no error on SetDocument, got %v", err)
	}

	// Still a miss: nothing was actually cached
	doc, err = c.GetDocument(ctx, "test-key")
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil document (no-op cache doesn't store), got %v", doc)
	}

	if err := c.Close(); err != nil {
		t.Errorf("expected no error on Close, got %v", err)
	}
}
