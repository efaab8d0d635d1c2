package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docvision/internal/domain"
	"docvision/internal/service"
	"docvision/mocks"
)

func TestResultService_Disabled(t *testing.T) {
	svc := service.NewResultService(nil)

	_, err := svc.GetResult(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, domain.ErrArchiveDisabled))

	_, err = svc.QueryResults(context.Background(), domain.ResultQuery{})
	assert.True(t, errors.Is(err, domain.ErrArchiveDisabled))
}

func TestResultService_QueryResults_ClampsLimit(t *testing.T) {
	repo := new(mocks.MockResultRepo)
	repo.On("Query", mock.Anything, domain.ResultQuery{TaskType: domain.TaskOCR, Limit: 50}).
		Return([]domain.StoredResult{{ID: uuid.New()}}, nil)
	repo.On("Query", mock.Anything, domain.ResultQuery{Limit: 500}).
		Return([]domain.StoredResult{}, nil)

	svc := service.NewResultService(repo)

	got, err := svc.QueryResults(context.Background(), domain.ResultQuery{TaskType: domain.TaskOCR})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.QueryResults(context.Background(), domain.ResultQuery{Limit: 10000})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
