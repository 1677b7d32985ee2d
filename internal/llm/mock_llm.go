package llm

import (
	"context"

	"github.com/stretchr/testify/mock"

	"research-assistant/internal/session"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Complete(ctx context.Context, model string, history []session.Message, prompt string) (string, error) {
	args := m.Called(ctx, model, history, prompt)
	return args.String(0), args.Error(1)
}
