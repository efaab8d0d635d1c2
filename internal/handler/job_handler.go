package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docvision/internal/domain"
	"docvision/internal/service"
	"docvision/internal/task"
)

// JobQueue schedules jobs for background processing.
type JobQueue interface {
	Enqueue(jobID uuid.UUID, factory task.Factory) error
}

// JobHandler handles batch job endpoints.
type JobHandler struct {
	batch      service.BatchService
	extraction service.ExtractionService
	exports    service.ExportService
	queue      JobQueue
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(batch service.BatchService, extraction service.ExtractionService, exports service.ExportService, queue JobQueue) *JobHandler {
	return &JobHandler{batch: batch, extraction: extraction, exports: exports, queue: queue}
}

// Create handles POST /api/v1/jobs
// @Summary Create a batch job
// @Description Create a job from explicit sources or from the files of a directory
// @Tags jobs
// @Accept json
// @Produce json
// @Param body body CreateJobRequest true "Job definition"
// @Success 201 {object} Response{data=domain.BatchJob} "Job created"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Router /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	kind, err := task.ParseKind(req.Task)
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := checkOptions(req.Options); err != nil {
		respondBadOptions(c, err)
		return
	}

	ctx := c.Request.Context()
	var job *domain.BatchJob
	switch {
	case req.Dir != "" && len(req.Sources) > 0:
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "set either sources or dir, not both")
		return
	case req.Dir != "":
		job, err = h.batch.CreateJobFromDir(ctx, kind, req.Dir, req.Patterns, req.Options)
	default:
		job, err = h.batch.CreateJob(ctx, kind, req.Sources, req.Options)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	if req.Process {
		if err := h.enqueue(job); err != nil {
			HandleError(c, err)
			return
		}
	}
	RespondCreated(c, job)
}

// List handles GET /api/v1/jobs
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Param status query string false "Filter by status" Enums(PENDING, PROCESSING, COMPLETED, FAILED, CANCELLED, PARTIAL)
// @Success 200 {object} Response{data=[]domain.BatchJob,meta=PagMeta} "Jobs"
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	var filter *domain.JobStatus
	if raw := c.Query("status"); raw != "" {
		status := domain.JobStatus(raw)
		if !domain.ValidJobStatuses[status] {
			RespondError(c, http.StatusBadRequest, "INVALID_STATUS", fmt.Sprintf("unknown job status %q", raw))
			return
		}
		filter = &status
	}
	jobs := h.batch.ListJobs(c.Request.Context(), filter)
	RespondList(c, jobs, PagMeta{Total: len(jobs)})
}

// Get handles GET /api/v1/jobs/:id
// @Summary Get a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} Response{data=domain.BatchJob} "Job"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	job, err := h.batch.GetJob(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, job)
}

// Process handles POST /api/v1/jobs/:id/process
// @Summary Process a job
// @Description Queue a PENDING job for background processing
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 202 {object} Response{data=domain.BatchJob} "Job queued"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Failure 409 {object} ErrorResponseBody "Job is not pending"
// @Failure 503 {object} ErrorResponseBody "Queue full"
// @Router /jobs/{id}/process [post]
func (h *JobHandler) Process(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	job, err := h.batch.GetJob(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	if job.Status != domain.StatusPending {
		HandleError(c, fmt.Errorf("%w: job %s is %s", domain.ErrJobNotPending, id, job.Status))
		return
	}
	if err := h.enqueue(job); err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, job)
}

func (h *JobHandler) enqueue(job *domain.BatchJob) error {
	factory, err := h.extraction.Factory(job.TaskKind)
	if err != nil {
		return err
	}
	return h.queue.Enqueue(job.ID, factory)
}

// Cancel handles POST /api/v1/jobs/:id/cancel
// @Summary Cancel a job
// @Description Cancel a PENDING job. cancelled is false for any other state.
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} Response{data=CancelJobResponse} "Cancel outcome"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Router /jobs/{id}/cancel [post]
func (h *JobHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cancelled, err := h.batch.CancelJob(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, CancelJobResponse{JobID: id, Cancelled: cancelled})
}

// Results handles GET /api/v1/jobs/:id/results
// @Summary Get job results
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} Response{data=[]domain.ItemResult} "Per-item results"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Router /jobs/{id}/results [get]
func (h *JobHandler) Results(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	results, err := h.batch.GetJobResults(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondList(c, results, PagMeta{Total: len(results)})
}

// Export handles GET /api/v1/jobs/:id/export
// @Summary Export job results
// @Tags jobs
// @Produce octet-stream
// @Param id path string true "Job ID"
// @Param format query string false "Export format" Enums(json, csv, xlsx) default(json)
// @Success 200 {file} file "Export file"
// @Failure 400 {object} ErrorResponseBody "Unknown format"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Router /jobs/{id}/export [get]
func (h *JobHandler) Export(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	file, err := h.exports.ExportJob(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Publish handles POST /api/v1/jobs/:id/publish
// @Summary Publish job results
// @Description Upload an export to object storage and return a presigned link
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Param format query string false "Export format" Enums(json, csv, xlsx) default(json)
// @Success 200 {object} Response{data=service.PublishedExport} "Published export"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Failure 501 {object} ErrorResponseBody "Storage not configured"
// @Router /jobs/{id}/publish [post]
func (h *JobHandler) Publish(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	out, err := h.exports.PublishJob(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, out)
}

// parseID reads the :id path parameter. It writes a 400 and returns false on failure.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
