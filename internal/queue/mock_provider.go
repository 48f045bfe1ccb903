package queue

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of the Provider interface for testing.
type MockProvider struct {
	mock.Mock
}

// Enqueue is the mock implementation of the Enqueue method.
func (m *MockProvider) Enqueue(ctx context.Context, channel, recipient, message string) (Record, error) {
	args := m.Called(ctx, channel, recipient, message)
	rec, _ := args.Get(0).(Record)
	return rec, args.Error(1)
}

// Close is the mock implementation of the Close method.
func (m *MockProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}
