package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvision/internal/domain"
	"docvision/internal/port"
	"docvision/internal/service"
	"docvision/internal/task"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Extract(ctx context.Context, kind domain.TaskKind, image port.ImageRef, opts domain.TaskOptions) (*service.ExtractionResult, error) {
	args := m.Called(ctx, kind, image, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExtractionResult), args.Error(1)
}

func (m *MockExtractionService) ExtractPages(ctx context.Context, kind domain.TaskKind, pages []port.ImageRef, strategy domain.MergeStrategy, opts domain.TaskOptions) (*service.PagesResult, error) {
	args := m.Called(ctx, kind, pages, strategy, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PagesResult), args.Error(1)
}

func (m *MockExtractionService) Factory(kind domain.TaskKind) (task.Factory, error) {
	args := m.Called(kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(task.Factory), args.Error(1)
}
