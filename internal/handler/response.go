package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"docvision/internal/backend"
	"docvision/internal/domain"
	"docvision/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds list metadata.
type PagMeta struct {
	Total int `json:"total"`
	Limit int `json:"limit,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 success response.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondList sends a 200 success response with list metadata.
func RespondList(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Caller mistakes keep the underlying message so clients can see what was wrong.
func MapDomainError(err error) (status int, code, msg string) {
	var rateErr *backend.RateLimitError
	switch {
	case errors.Is(err, domain.ErrUnknownTaskKind):
		return http.StatusBadRequest, "UNKNOWN_TASK", err.Error()
	case errors.Is(err, domain.ErrUnknownExportFormat):
		return http.StatusBadRequest, "UNKNOWN_EXPORT_FORMAT", err.Error()
	case errors.Is(err, domain.ErrUnknownPreset):
		return http.StatusBadRequest, "UNKNOWN_PRESET", err.Error()
	case errors.Is(err, domain.ErrUnknownMergeStrategy):
		return http.StatusBadRequest, "UNKNOWN_MERGE_STRATEGY", err.Error()
	case errors.Is(err, domain.ErrInvalidSchema):
		return http.StatusBadRequest, "INVALID_SCHEMA", err.Error()
	case errors.Is(err, domain.ErrNoInputs):
		return http.StatusBadRequest, "NO_INPUTS", "no input references supplied"
	case errors.Is(err, domain.ErrNoMatchingFiles):
		return http.StatusBadRequest, "NO_MATCHING_FILES", err.Error()
	case errors.Is(err, domain.ErrNotADirectory):
		return http.StatusBadRequest, "NOT_A_DIRECTORY", err.Error()
	case errors.Is(err, domain.ErrUnsupportedContentType):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_CONTENT_TYPE", err.Error()
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrJobNotFound):
		return http.StatusNotFound, "JOB_NOT_FOUND", "job not found"
	case errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound, "RESULT_NOT_FOUND", "result not found"
	case errors.Is(err, domain.ErrJobNotPending):
		return http.StatusConflict, "JOB_NOT_PENDING", err.Error()
	case errors.Is(err, domain.ErrQueueFull):
		return http.StatusServiceUnavailable, "QUEUE_FULL", "job queue is full; retry later"
	case errors.Is(err, domain.ErrStorageNotConfigured):
		return http.StatusNotImplemented, "STORAGE_NOT_CONFIGURED", "object storage is not configured"
	case errors.Is(err, domain.ErrArchiveDisabled):
		return http.StatusNotImplemented, "ARCHIVE_DISABLED", "result archive is disabled"
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests, "RATE_LIMITED", "generation backend is rate limited; retry later"
	case errors.Is(err, domain.ErrBackendTimeout):
		return http.StatusGatewayTimeout, "BACKEND_TIMEOUT", "generation backend timed out"
	case errors.Is(err, domain.ErrEmptyResponse):
		return http.StatusBadGateway, "EMPTY_RESPONSE", "generation backend returned an empty response"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Error().Str("request_id", c.GetString(middleware.RequestIDKey)).Err(err).
			Int("status", status).Msg("handler: request failed")
	}
	RespondError(c, status, code, msg)
}
