package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docvision/internal/domain"
	"docvision/internal/service"
	"docvision/internal/task"
)

// MockExportService is a mock implementation of service.ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportJob(ctx context.Context, jobID uuid.UUID, format string) (*service.ExportedFile, error) {
	args := m.Called(ctx, jobID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportedFile), args.Error(1)
}

func (m *MockExportService) PublishJob(ctx context.Context, jobID uuid.UUID, format string) (*service.PublishedExport, error) {
	args := m.Called(ctx, jobID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublishedExport), args.Error(1)
}

// MockResultService is a mock implementation of service.ResultService.
type MockResultService struct {
	mock.Mock
}

func (m *MockResultService) GetResult(ctx context.Context, id uuid.UUID) (*domain.StoredResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredResult), args.Error(1)
}

func (m *MockResultService) QueryResults(ctx context.Context, q domain.ResultQuery) ([]domain.StoredResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StoredResult), args.Error(1)
}

// MockJobQueue is a mock implementation of handler.JobQueue.
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Enqueue(jobID uuid.UUID, factory task.Factory) error {
	args := m.Called(jobID, factory)
	return args.Error(0)
}
