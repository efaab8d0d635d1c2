package handler

import (
	"github.com/google/uuid"

	"docvision/internal/domain"
	"docvision/internal/validator/crossfield"
)

// Request and response bodies referenced by the swag annotations.

// --- Request Types ---

// CreateJobRequest represents the create job request body. Exactly one of
// Sources or Dir must be set.
type CreateJobRequest struct {
	Task     string             `json:"task" binding:"required" example:"invoice"`
	Sources  []string           `json:"sources,omitempty" example:"s3://docs/inv-001.pdf"`
	Dir      string             `json:"dir,omitempty" example:"/data/inbox"`
	Patterns []string           `json:"patterns,omitempty" example:"*.pdf"`
	Options  domain.TaskOptions `json:"options"`
	Process  bool               `json:"process" example:"true"`
}

// ValidateFieldsRequest represents the field validation request body.
type ValidateFieldsRequest struct {
	Values map[string]any `json:"values" binding:"required"`
	Preset string         `json:"preset,omitempty" example:"invoice"`
	Schema *domain.Schema `json:"schema,omitempty"`
}

// ValidateTotalsRequest represents the totals reconciliation request body.
type ValidateTotalsRequest struct {
	LineItems []map[string]any `json:"line_items"`
	Summary   map[string]any   `json:"summary" binding:"required"`
	Tolerance *float64         `json:"tolerance,omitempty" example:"0.01"`
}

// ValidateDatesRequest represents the date ordering request body. Omitting
// rules applies the default start/end pairs.
type ValidateDatesRequest struct {
	Dates map[string]any        `json:"dates" binding:"required"`
	Rules []crossfield.DateRule `json:"rules,omitempty"`
}

// ValidateConsistencyRequest represents the required field and dependency request body.
type ValidateConsistencyRequest struct {
	Record       map[string]any          `json:"record" binding:"required"`
	Required     []string                `json:"required,omitempty" example:"vendor.name"`
	Dependencies []crossfield.Dependency `json:"dependencies,omitempty"`
}

// ValidateReferencesRequest represents the cross-record comparison request body.
type ValidateReferencesRequest struct {
	Primary   map[string]any         `json:"primary" binding:"required"`
	Secondary map[string]any         `json:"secondary" binding:"required"`
	Pairs     []crossfield.FieldPair `json:"pairs" binding:"required"`
}

// --- Response Types ---

// CancelJobResponse reports whether a cancel request changed the job.
type CancelJobResponse struct {
	JobID     uuid.UUID `json:"job_id"`
	Cancelled bool      `json:"cancelled" example:"true"`
}

// ValidateFieldsResponse lists type errors keyed by field name.
type ValidateFieldsResponse struct {
	Valid  bool                `json:"valid" example:"false"`
	Errors map[string][]string `json:"errors"`
}

// RuleErrorsResponse carries the outcome of a rule-based check.
type RuleErrorsResponse struct {
	Valid  bool     `json:"valid" example:"true"`
	Errors []string `json:"errors"`
}

// ConsistencyResponse carries missing fields and dependency errors.
type ConsistencyResponse struct {
	Valid   bool     `json:"valid" example:"false"`
	Missing []string `json:"missing"`
	Errors  []string `json:"errors"`
}

// Response wraps a successful response.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// RegisterWebhookRequest subscribes a URL to events. Empty events selects all.
type RegisterWebhookRequest struct {
	URL     string            `json:"url" binding:"required" example:"https://hooks.example.com/docvision"`
	Events  []string          `json:"events" example:"batch.completed"`
	Secret  string            `json:"secret,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// TestWebhookRequest names the event type to send.
type TestWebhookRequest struct {
	EventType string         `json:"event_type" binding:"required" example:"batch.completed"`
	Data      map[string]any `json:"data,omitempty"`
}
