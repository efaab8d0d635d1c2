package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docvision/internal/domain"
	"docvision/internal/handler"
	"docvision/internal/service"
	"docvision/internal/task"
	"docvision/mocks"
)

type jobFixture struct {
	batch   *mocks.MockBatchService
	ext     *mocks.MockExtractionService
	exports *mocks.MockExportService
	queue   *mocks.MockJobQueue
	h       *handler.JobHandler
}

func newJobFixture() *jobFixture {
	f := &jobFixture{
		batch:   new(mocks.MockBatchService),
		ext:     new(mocks.MockExtractionService),
		exports: new(mocks.MockExportService),
		queue:   new(mocks.MockJobQueue),
	}
	f.h = handler.NewJobHandler(f.batch, f.ext, f.exports, f.queue)
	return f
}

func pendingJob(kind domain.TaskKind) *domain.BatchJob {
	return &domain.BatchJob{
		ID:        uuid.New(),
		TaskKind:  kind,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
		Items:     []*domain.BatchItem{{ID: uuid.New(), SourceRef: "a.png", Status: domain.StatusPending}},
	}
}

func noopFactory() task.Factory {
	return func() (task.Handler, error) { return nil, errors.New("unused") }
}

func TestJobHandler_Create_FromSourcesAndProcess(t *testing.T) {
	f := newJobFixture()
	job := pendingJob(domain.TaskOCR)

	f.batch.On("CreateJob", mock.Anything, domain.TaskOCR, []string{"a.png", "b.png"}, domain.TaskOptions{WithBoxes: true}).
		Return(job, nil)
	f.ext.On("Factory", domain.TaskOCR).Return(noopFactory(), nil)
	f.queue.On("Enqueue", job.ID, mock.Anything).Return(nil)

	req := jsonRequest(t, http.MethodPost, "/jobs", map[string]any{
		"task":    "ocr",
		"sources": []string{"a.png", "b.png"},
		"options": map[string]any{"with_boxes": true},
		"process": true,
	})
	w := serve(http.MethodPost, "/jobs", f.h.Create, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
	f.batch.AssertExpectations(t)
	f.queue.AssertExpectations(t)
}

func TestJobHandler_Create_FromDir(t *testing.T) {
	f := newJobFixture()
	job := pendingJob(domain.TaskTable)

	f.batch.On("CreateJobFromDir", mock.Anything, domain.TaskTable, "/data/inbox", []string{"*.png"}, domain.TaskOptions{}).
		Return(job, nil)

	req := jsonRequest(t, http.MethodPost, "/jobs", map[string]any{
		"task":     "table",
		"dir":      "/data/inbox",
		"patterns": []string{"*.png"},
	})
	w := serve(http.MethodPost, "/jobs", f.h.Create, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestJobHandler_Create_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		setup   func(f *jobFixture)
		status  int
		code    string
	}{
		{
			name:    "missing task",
			payload: map[string]any{"sources": []string{"a.png"}},
			status:  http.StatusBadRequest,
			code:    "INVALID_REQUEST",
		},
		{
			name:    "unknown task",
			payload: map[string]any{"task": "translate", "sources": []string{"a.png"}},
			status:  http.StatusBadRequest,
			code:    "UNKNOWN_TASK",
		},
		{
			name:    "sources and dir",
			payload: map[string]any{"task": "ocr", "sources": []string{"a.png"}, "dir": "/tmp"},
			status:  http.StatusBadRequest,
			code:    "INVALID_REQUEST",
		},
		{
			name:    "unknown preset",
			payload: map[string]any{"task": "field_extraction", "sources": []string{"a.png"}, "options": map[string]any{"preset": "nope"}},
			status:  http.StatusBadRequest,
			code:    "UNKNOWN_PRESET",
		},
		{
			name:    "no inputs",
			payload: map[string]any{"task": "ocr"},
			setup: func(f *jobFixture) {
				f.batch.On("CreateJob", mock.Anything, domain.TaskOCR, []string(nil), domain.TaskOptions{}).
					Return(nil, domain.ErrNoInputs)
			},
			status: http.StatusBadRequest,
			code:   "NO_INPUTS",
		},
		{
			name:    "no matching files",
			payload: map[string]any{"task": "ocr", "dir": "/empty"},
			setup: func(f *jobFixture) {
				f.batch.On("CreateJobFromDir", mock.Anything, domain.TaskOCR, "/empty", []string(nil), domain.TaskOptions{}).
					Return(nil, domain.ErrNoMatchingFiles)
			},
			status: http.StatusBadRequest,
			code:   "NO_MATCHING_FILES",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newJobFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			w := serve(http.MethodPost, "/jobs", f.h.Create, jsonRequest(t, http.MethodPost, "/jobs", tt.payload))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeResponse(t, w).Error.Code)
		})
	}
}

func TestJobHandler_List_StatusFilter(t *testing.T) {
	f := newJobFixture()
	job := pendingJob(domain.TaskOCR)

	f.batch.On("ListJobs", mock.Anything, mock.MatchedBy(func(s *domain.JobStatus) bool {
		return s != nil && *s == domain.StatusPending
	})).Return([]*domain.BatchJob{job})

	req := httptest.NewRequest(http.MethodGet, "/jobs?status=PENDING", nil)
	w := serve(http.MethodGet, "/jobs", f.h.List, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)
}

func TestJobHandler_List_InvalidStatus(t *testing.T) {
	f := newJobFixture()

	req := httptest.NewRequest(http.MethodGet, "/jobs?status=DONE", nil)
	w := serve(http.MethodGet, "/jobs", f.h.List, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATUS", decodeResponse(t, w).Error.Code)
	f.batch.AssertNotCalled(t, "ListJobs", mock.Anything, mock.Anything)
}

func TestJobHandler_Get(t *testing.T) {
	f := newJobFixture()
	job := pendingJob(domain.TaskOCR)
	missing := uuid.New()

	f.batch.On("GetJob", mock.Anything, job.ID).Return(job, nil)
	f.batch.On("GetJob", mock.Anything, missing).Return(nil, domain.ErrJobNotFound)

	w := serve(http.MethodGet, "/jobs/:id", f.h.Get, httptest.NewRequest(http.MethodGet, "/jobs/"+job.ID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodGet, "/jobs/:id", f.h.Get, httptest.NewRequest(http.MethodGet, "/jobs/"+missing.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "JOB_NOT_FOUND", decodeResponse(t, w).Error.Code)

	w = serve(http.MethodGet, "/jobs/:id", f.h.Get, httptest.NewRequest(http.MethodGet, "/jobs/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decodeResponse(t, w).Error.Code)
}

func TestJobHandler_Process(t *testing.T) {
	t.Run("queued", func(t *testing.T) {
		f := newJobFixture()
		job := pendingJob(domain.TaskNER)
		f.batch.On("GetJob", mock.Anything, job.ID).Return(job, nil)
		f.ext.On("Factory", domain.TaskNER).Return(noopFactory(), nil)
		f.queue.On("Enqueue", job.ID, mock.Anything).Return(nil)

		w := serve(http.MethodPost, "/jobs/:id/process", f.h.Process,
			httptest.NewRequest(http.MethodPost, "/jobs/"+job.ID.String()+"/process", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		f.queue.AssertExpectations(t)
	})

	t.Run("not pending", func(t *testing.T) {
		f := newJobFixture()
		job := pendingJob(domain.TaskNER)
		job.Status = domain.StatusCompleted
		f.batch.On("GetJob", mock.Anything, job.ID).Return(job, nil)

		w := serve(http.MethodPost, "/jobs/:id/process", f.h.Process,
			httptest.NewRequest(http.MethodPost, "/jobs/"+job.ID.String()+"/process", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "JOB_NOT_PENDING", decodeResponse(t, w).Error.Code)
		f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})

	t.Run("queue full", func(t *testing.T) {
		f := newJobFixture()
		job := pendingJob(domain.TaskNER)
		f.batch.On("GetJob", mock.Anything, job.ID).Return(job, nil)
		f.ext.On("Factory", domain.TaskNER).Return(noopFactory(), nil)
		f.queue.On("Enqueue", job.ID, mock.Anything).Return(domain.ErrQueueFull)

		w := serve(http.MethodPost, "/jobs/:id/process", f.h.Process,
			httptest.NewRequest(http.MethodPost, "/jobs/"+job.ID.String()+"/process", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "QUEUE_FULL", decodeResponse(t, w).Error.Code)
	})
}

func TestJobHandler_Cancel(t *testing.T) {
	f := newJobFixture()
	id := uuid.New()
	f.batch.On("CancelJob", mock.Anything, id).Return(false, nil)

	w := serve(http.MethodPost, "/jobs/:id/cancel", f.h.Cancel,
		httptest.NewRequest(http.MethodPost, "/jobs/"+id.String()+"/cancel", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data, ok := decodeResponse(t, w).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["cancelled"])
	assert.Equal(t, id.String(), data["job_id"])
}

func TestJobHandler_Results(t *testing.T) {
	f := newJobFixture()
	id := uuid.New()
	msg := "boom"
	f.batch.On("GetJobResults", mock.Anything, id).Return([]domain.ItemResult{
		{ItemID: uuid.New(), SourceRef: "a.png", Status: domain.StatusCompleted, Result: &domain.Record{Kind: domain.TaskOCR, Text: "hi"}},
		{ItemID: uuid.New(), SourceRef: "b.png", Status: domain.StatusFailed, Error: &msg},
	}, nil)

	w := serve(http.MethodGet, "/jobs/:id/results", f.h.Results,
		httptest.NewRequest(http.MethodGet, "/jobs/"+id.String()+"/results", nil))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, 2, resp.Meta.Total)
}

func TestJobHandler_Export(t *testing.T) {
	f := newJobFixture()
	id := uuid.New()
	f.exports.On("ExportJob", mock.Anything, id, "csv").Return(&service.ExportedFile{
		Filename:    "job_ocr_x_2026-10-19.csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        []byte("Item ID\n"),
	}, nil)

	w := serve(http.MethodGet, "/jobs/:id/export", f.h.Export,
		httptest.NewRequest(http.MethodGet, "/jobs/"+id.String()+"/export?format=csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="job_ocr_x_2026-10-19.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "Item ID\n", w.Body.String())
}

func TestJobHandler_Export_UnknownFormat(t *testing.T) {
	f := newJobFixture()
	id := uuid.New()
	f.exports.On("ExportJob", mock.Anything, id, "pdf").Return(nil, domain.ErrUnknownExportFormat)

	w := serve(http.MethodGet, "/jobs/:id/export", f.h.Export,
		httptest.NewRequest(http.MethodGet, "/jobs/"+id.String()+"/export?format=pdf", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_EXPORT_FORMAT", decodeResponse(t, w).Error.Code)
}

func TestJobHandler_Publish_StorageNotConfigured(t *testing.T) {
	f := newJobFixture()
	id := uuid.New()
	f.exports.On("PublishJob", mock.Anything, id, "").Return(nil, domain.ErrStorageNotConfigured)

	w := serve(http.MethodPost, "/jobs/:id/publish", f.h.Publish,
		httptest.NewRequest(http.MethodPost, "/jobs/"+id.String()+"/publish", nil))

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "STORAGE_NOT_CONFIGURED", decodeResponse(t, w).Error.Code)
}
