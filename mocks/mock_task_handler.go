package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvision/internal/domain"
	"docvision/internal/port"
)

// MockTaskHandler is a mock implementation of task.Handler.
type MockTaskHandler struct {
	mock.Mock
}

func (m *MockTaskHandler) Kind() domain.TaskKind {
	args := m.Called()
	return args.Get(0).(domain.TaskKind)
}

func (m *MockTaskHandler) SystemPrompt() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTaskHandler) UserPrompt(opts domain.TaskOptions) string {
	args := m.Called(opts)
	return args.String(0)
}

func (m *MockTaskHandler) Process(ctx context.Context, image port.ImageRef, opts domain.TaskOptions) (*domain.Record, error) {
	args := m.Called(ctx, image, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}
