package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docvision/internal/domain"
	"docvision/internal/port"
)

type resultRepo struct {
	db *sqlx.DB
}

// NewResultRepo creates a new PostgreSQL-backed ResultRepository.
func NewResultRepo(db *sqlx.DB) port.ResultRepository {
	return &resultRepo{db: db}
}

func (r *resultRepo) Save(ctx context.Context, result *domain.StoredResult) error {
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	if len(result.Metadata) == 0 {
		result.Metadata = []byte("{}")
	}

	query := `INSERT INTO extraction_results
		(id, document_id, job_id, task_type, result, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		result.ID, result.DocumentID, result.JobID, result.TaskType,
		result.Result, result.Metadata, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("resultRepo.Save: %w", err)
	}
	return nil
}

func (r *resultRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredResult, error) {
	var result domain.StoredResult
	err := r.db.GetContext(ctx, &result,
		"SELECT id, document_id, job_id, task_type, result, metadata, created_at FROM extraction_results WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("resultRepo.GetByID: %w", err)
	}
	return &result, nil
}

func (r *resultRepo) Query(ctx context.Context, q domain.ResultQuery) ([]domain.StoredResult, error) {
	query, args := buildResultQuery(q)

	results := []domain.StoredResult{}
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("resultRepo.Query: %w", err)
	}
	return results, nil
}

// buildResultQuery renders q as a parameterized SELECT, newest first.
func buildResultQuery(q domain.ResultQuery) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if q.TaskType != "" {
		add("task_type = $%d", string(q.TaskType))
	}
	if q.From != nil {
		add("created_at >= $%d", *q.From)
	}
	if q.To != nil {
		add("created_at <= $%d", *q.To)
	}

	var b strings.Builder
	b.WriteString("SELECT id, document_id, job_id, task_type, result, metadata, created_at FROM extraction_results")
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}
