package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvision/internal/port"
)

// MockImageLoader is a mock implementation of port.ImageLoader.
type MockImageLoader struct {
	mock.Mock
}

func (m *MockImageLoader) Load(ctx context.Context, sourceRef string) (port.ImageRef, error) {
	args := m.Called(ctx, sourceRef)
	return args.Get(0).(port.ImageRef), args.Error(1)
}
