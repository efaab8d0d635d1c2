package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"docvision/internal/domain"
	"docvision/internal/service"
	"docvision/internal/task"
	"docvision/internal/validator"
)

// ResultHandler serves the extraction result archive.
type ResultHandler struct {
	results service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(results service.ResultService) *ResultHandler {
	return &ResultHandler{results: results}
}

// List handles GET /api/v1/results
// @Summary Query archived results
// @Tags results
// @Produce json
// @Param task query string false "Task kind"
// @Param from query string false "Earliest creation date (YYYY-MM-DD or RFC3339)"
// @Param to query string false "Latest creation date (YYYY-MM-DD or RFC3339)"
// @Param limit query int false "Maximum results (max 500)" default(50)
// @Success 200 {object} Response{data=[]domain.StoredResult,meta=PagMeta} "Results"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Failure 501 {object} ErrorResponseBody "Archive disabled"
// @Router /results [get]
func (h *ResultHandler) List(c *gin.Context) {
	var q domain.ResultQuery
	if raw := c.Query("task"); raw != "" {
		kind, err := task.ParseKind(raw)
		if err != nil {
			HandleError(c, err)
			return
		}
		q.TaskType = kind
	}
	for name, dst := range map[string]**time.Time{"from": &q.From, "to": &q.To} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, ok := parseTime(raw)
		if !ok {
			RespondError(c, http.StatusBadRequest, "INVALID_DATE", name+" must be YYYY-MM-DD or RFC3339")
			return
		}
		*dst = &t
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			RespondError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		q.Limit = limit
	}

	results, err := h.results.QueryResults(c.Request.Context(), q)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondList(c, results, PagMeta{Total: len(results), Limit: q.Limit})
}

// Get handles GET /api/v1/results/:id
// @Summary Get an archived result
// @Tags results
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} Response{data=domain.StoredResult} "Result"
// @Failure 404 {object} ErrorResponseBody "Result not found"
// @Failure 501 {object} ErrorResponseBody "Archive disabled"
// @Router /results/{id} [get]
func (h *ResultHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.results.GetResult(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

func parseTime(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return validator.ParseDate(raw)
}
