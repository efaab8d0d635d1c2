package domain

// TaskKind identifies a document-understanding operation.
type TaskKind string

const (
	TaskOCR             TaskKind = "ocr"
	TaskLayout          TaskKind = "layout"
	TaskTable           TaskKind = "table"
	TaskFieldExtraction TaskKind = "field_extraction"
	TaskNER             TaskKind = "ner"
	TaskForm            TaskKind = "form"
	TaskInvoice         TaskKind = "invoice"
	TaskContract        TaskKind = "contract"
)

// JobStatus represents the lifecycle of a batch job or one of its items.
type JobStatus string

const (
	StatusPending    JobStatus = "PENDING"
	StatusProcessing JobStatus = "PROCESSING"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
	StatusCancelled  JobStatus = "CANCELLED"
	// StatusPartial marks a finished job where some items completed and some failed.
	StatusPartial JobStatus = "PARTIAL"
)

// IsTerminal reports whether no further transitions are possible.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusPartial:
		return true
	}
	return false
}

// ValidJobStatuses is used to validate status filters.
var ValidJobStatuses = map[JobStatus]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusCompleted:  true,
	StatusFailed:     true,
	StatusCancelled:  true,
	StatusPartial:    true,
}

// FieldType is the closed set of value validators.
type FieldType string

const (
	FieldString     FieldType = "string"
	FieldArray      FieldType = "array"
	FieldEmail      FieldType = "email"
	FieldPhone      FieldType = "phone"
	FieldDate       FieldType = "date"
	FieldCurrency   FieldType = "currency"
	FieldURL        FieldType = "url"
	FieldPercentage FieldType = "percentage"
	FieldInteger    FieldType = "integer"
)

// KnownFieldTypes lists the types accepted in custom schemas.
var KnownFieldTypes = map[FieldType]bool{
	FieldString:     true,
	FieldArray:      true,
	FieldEmail:      true,
	FieldPhone:      true,
	FieldDate:       true,
	FieldCurrency:   true,
	FieldURL:        true,
	FieldPercentage: true,
	FieldInteger:    true,
}

// LayoutMode selects what the layout task reports.
type LayoutMode string

const (
	LayoutElements     LayoutMode = "elements"
	LayoutSections     LayoutMode = "sections"
	LayoutReadingOrder LayoutMode = "reading_order"
)

// MergeStrategy controls how multi-page results are combined.
type MergeStrategy string

const (
	MergeConcatenate MergeStrategy = "concatenate"
	MergeStructured  MergeStrategy = "structured"
)

// EventType names an outbound notification.
type EventType string

const (
	EventExtractionStarted   EventType = "extraction.started"
	EventExtractionCompleted EventType = "extraction.completed"
	EventExtractionFailed    EventType = "extraction.failed"
	EventBatchStarted        EventType = "batch.started"
	EventBatchProgress       EventType = "batch.progress"
	EventBatchCompleted      EventType = "batch.completed"
	EventBatchFailed         EventType = "batch.failed"
)

// AllEventTypes lists every event a subscriber may select.
var AllEventTypes = []EventType{
	EventExtractionStarted,
	EventExtractionCompleted,
	EventExtractionFailed,
	EventBatchStarted,
	EventBatchProgress,
	EventBatchCompleted,
	EventBatchFailed,
}
