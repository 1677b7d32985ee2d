package cache

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"research-assistant/internal/extract"
)

// MockCache is a mock implementation of Cache using testify/mock.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetDocument(ctx context.Context, key string) (*extract.Document, error) {
	args := m.Called(ctx, key)
	doc, _ := args.Get(0).(*extract.Document)
	return doc, args.Error(1)
}

func (m *MockCache) SetDocument(ctx context.Context, key string, doc *extract.Document, ttl time.Duration) error {
	args := m.Called(ctx, key, doc, ttl)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
