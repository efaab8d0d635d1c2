package domain

import "errors"

// Configuration errors are caller mistakes and are rejected before any work is dispatched.
var (
	ErrUnknownTaskKind      = errors.New("unknown task kind")
	ErrUnknownExportFormat  = errors.New("unknown export format")
	ErrUnknownProvider      = errors.New("unknown generation provider")
	ErrUnknownPreset        = errors.New("unknown schema preset")
	ErrUnknownMergeStrategy = errors.New("unknown merge strategy")
	ErrInvalidSchema        = errors.New("invalid extraction schema")
	ErrNoInputs             = errors.New("no input references supplied")
	ErrNoMatchingFiles      = errors.New("no files matched the given patterns")
	ErrNotADirectory        = errors.New("input path is not a directory")
	ErrStorageNotConfigured = errors.New("object storage is not configured")
	ErrArchiveDisabled      = errors.New("result archive is disabled")
)

// State errors.
var (
	ErrJobNotFound    = errors.New("job not found")
	ErrJobNotPending  = errors.New("job is not pending")
	ErrQueueFull      = errors.New("job queue is full")
	ErrResultNotFound = errors.New("result not found")
)

// Item errors are recorded on the failing item and never abort a job.
var (
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrFileTooLarge           = errors.New("file exceeds maximum allowed size")
	ErrBackendTimeout         = errors.New("generation backend timed out")
	ErrEmptyResponse          = errors.New("generation backend returned an empty response")
)
