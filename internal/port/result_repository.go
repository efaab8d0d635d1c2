package port

import (
	"context"

	"github.com/google/uuid"

	"docvision/internal/domain"
)

// ResultRepository archives extraction results.
type ResultRepository interface {
	Save(ctx context.Context, result *domain.StoredResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredResult, error)
	Query(ctx context.Context, q domain.ResultQuery) ([]domain.StoredResult, error)
}
