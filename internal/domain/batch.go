package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BatchItem is a single input within a job. Only the worker processing the
// item writes to it once the job is running.
type BatchItem struct {
	ID               uuid.UUID `json:"item_id"`
	SourceRef        string    `json:"source_ref"`
	Status           JobStatus `json:"status"`
	Result           *Record   `json:"result"`
	Error            *string   `json:"error"`
	ProcessingTimeMs *int64    `json:"processing_time_ms"`
}

// BatchJob is a fixed set of items processed together under one task kind.
type BatchJob struct {
	ID          uuid.UUID    `json:"job_id"`
	TaskKind    TaskKind     `json:"task_kind"`
	Items       []*BatchItem `json:"items"`
	Status      JobStatus    `json:"status"`
	Options     TaskOptions  `json:"options"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// TotalItems returns the number of items in the job.
func (j *BatchJob) TotalItems() int {
	return len(j.Items)
}

// ProcessedItems counts items that reached COMPLETED or FAILED.
func (j *BatchJob) ProcessedItems() int {
	n := 0
	for _, it := range j.Items {
		if it.Status == StatusCompleted || it.Status == StatusFailed {
			n++
		}
	}
	return n
}

// FailedItems counts items in FAILED.
func (j *BatchJob) FailedItems() int {
	return j.countStatus(StatusFailed)
}

// CompletedItems counts items in COMPLETED.
func (j *BatchJob) CompletedItems() int {
	return j.countStatus(StatusCompleted)
}

// Progress returns processed items as a percentage.
func (j *BatchJob) Progress() float64 {
	if len(j.Items) == 0 {
		return 0
	}
	return float64(j.ProcessedItems()) / float64(len(j.Items)) * 100
}

func (j *BatchJob) countStatus(s JobStatus) int {
	n := 0
	for _, it := range j.Items {
		if it.Status == s {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the job's mutable bookkeeping. Records are shared
// since they are immutable once stored.
func (j *BatchJob) Clone() *BatchJob {
	cp := *j
	cp.Items = make([]*BatchItem, len(j.Items))
	for i, it := range j.Items {
		itemCopy := *it
		cp.Items[i] = &itemCopy
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// MarshalJSON adds the derived counters to the serialized job.
func (j *BatchJob) MarshalJSON() ([]byte, error) {
	type alias BatchJob
	return json.Marshal(struct {
		*alias
		TotalItems     int     `json:"total_items"`
		ProcessedItems int     `json:"processed_items"`
		FailedItems    int     `json:"failed_items"`
		Progress       float64 `json:"progress"`
	}{
		alias:          (*alias)(j),
		TotalItems:     j.TotalItems(),
		ProcessedItems: j.ProcessedItems(),
		FailedItems:    j.FailedItems(),
		Progress:       j.Progress(),
	})
}

// ItemResult is the flat per-item view used for reporting.
type ItemResult struct {
	ItemID           uuid.UUID `json:"item_id"`
	SourceRef        string    `json:"source_ref"`
	Status           JobStatus `json:"status"`
	Result           *Record   `json:"result"`
	Error            *string   `json:"error"`
	ProcessingTimeMs *int64    `json:"processing_time_ms"`
}

// Results flattens the job items for reporting.
func (j *BatchJob) Results() []ItemResult {
	out := make([]ItemResult, 0, len(j.Items))
	for _, it := range j.Items {
		out = append(out, ItemResult{
			ItemID:           it.ID,
			SourceRef:        it.SourceRef,
			Status:           it.Status,
			Result:           it.Result,
			Error:            it.Error,
			ProcessingTimeMs: it.ProcessingTimeMs,
		})
	}
	return out
}
