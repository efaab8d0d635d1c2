package service

import (
	"context"

	"github.com/google/uuid"

	"docvision/internal/domain"
	"docvision/internal/port"
)

const (
	defaultResultLimit = 50
	maxResultLimit     = 500
)

// ResultService reads the extraction result archive.
type ResultService interface {
	GetResult(ctx context.Context, id uuid.UUID) (*domain.StoredResult, error)
	QueryResults(ctx context.Context, q domain.ResultQuery) ([]domain.StoredResult, error)
}

type resultService struct {
	repo port.ResultRepository
}

// NewResultService creates a new ResultService. A nil repo means the archive
// is disabled and every call returns domain.ErrArchiveDisabled.
func NewResultService(repo port.ResultRepository) ResultService {
	return &resultService{repo: repo}
}

func (s *resultService) GetResult(ctx context.Context, id uuid.UUID) (*domain.StoredResult, error) {
	if s.repo == nil {
		return nil, domain.ErrArchiveDisabled
	}
	return s.repo.GetByID(ctx, id)
}

func (s *resultService) QueryResults(ctx context.Context, q domain.ResultQuery) ([]domain.StoredResult, error) {
	if s.repo == nil {
		return nil, domain.ErrArchiveDisabled
	}
	if q.Limit <= 0 {
		q.Limit = defaultResultLimit
	}
	if q.Limit > maxResultLimit {
		q.Limit = maxResultLimit
	}
	return s.repo.Query(ctx, q)
}
