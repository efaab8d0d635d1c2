package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"docvision/internal/domain"
)

func TestBuildResultQuery_NoFilters(t *testing.T) {
	query, args := buildResultQuery(domain.ResultQuery{})

	assert.Equal(t, "SELECT id, document_id, job_id, task_type, result, metadata, created_at FROM extraction_results ORDER BY created_at DESC", query)
	assert.Empty(t, args)
}

func TestBuildResultQuery_AllFilters(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	query, args := buildResultQuery(domain.ResultQuery{
		TaskType: domain.TaskInvoice,
		From:     &from,
		To:       &to,
		Limit:    25,
	})

	assert.Contains(t, query, "WHERE task_type = $1 AND created_at >= $2 AND created_at <= $3")
	assert.Contains(t, query, "ORDER BY created_at DESC LIMIT $4")
	assert.Equal(t, []any{"invoice", from, to, 25}, args)
}

func TestBuildResultQuery_DateOnly(t *testing.T) {
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	query, args := buildResultQuery(domain.ResultQuery{To: &to})

	assert.Contains(t, query, "WHERE created_at <= $1")
	assert.Equal(t, []any{to}, args)
}
