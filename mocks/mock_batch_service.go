package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docvision/internal/domain"
	"docvision/internal/service"
	"docvision/internal/task"
)

// MockBatchService is a mock implementation of service.BatchService.
type MockBatchService struct {
	mock.Mock
}

func (m *MockBatchService) CreateJob(ctx context.Context, kind domain.TaskKind, refs []string, opts domain.TaskOptions) (*domain.BatchJob, error) {
	args := m.Called(ctx, kind, refs, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchJob), args.Error(1)
}

func (m *MockBatchService) CreateJobFromDir(ctx context.Context, kind domain.TaskKind, dir string, patterns []string, opts domain.TaskOptions) (*domain.BatchJob, error) {
	args := m.Called(ctx, kind, dir, patterns, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchJob), args.Error(1)
}

func (m *MockBatchService) ProcessJob(ctx context.Context, jobID uuid.UUID, factory task.Factory) (*domain.BatchJob, error) {
	args := m.Called(ctx, jobID, factory)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchJob), args.Error(1)
}

func (m *MockBatchService) CancelJob(ctx context.Context, jobID uuid.UUID) (bool, error) {
	args := m.Called(ctx, jobID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchService) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.BatchJob, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchJob), args.Error(1)
}

func (m *MockBatchService) GetJobResults(ctx context.Context, jobID uuid.UUID) ([]domain.ItemResult, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ItemResult), args.Error(1)
}

func (m *MockBatchService) ListJobs(ctx context.Context, status *domain.JobStatus) []*domain.BatchJob {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.BatchJob)
}

func (m *MockBatchService) AddCompletionCallback(cb service.CompletionCallback) {
	m.Called(cb)
}
