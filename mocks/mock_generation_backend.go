package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvision/internal/port"
)

// MockGenerationBackend is a mock implementation of port.GenerationBackend.
type MockGenerationBackend struct {
	mock.Mock
}

func (m *MockGenerationBackend) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}
