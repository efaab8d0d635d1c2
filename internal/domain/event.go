package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is an outbound notification about an extraction or a batch job.
type Event struct {
	Type       EventType      `json:"event_type"`
	Timestamp  time.Time      `json:"timestamp"`
	JobID      string         `json:"job_id,omitempty"`
	DocumentID string         `json:"document_id,omitempty"`
	Data       map[string]any `json:"data"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(t EventType, jobID, documentID string, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{
		Type:       t,
		Timestamp:  time.Now().UTC(),
		JobID:      jobID,
		DocumentID: documentID,
		Data:       data,
	}
}

// StoredResult is an archived extraction result.
type StoredResult struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	DocumentID string          `db:"document_id" json:"document_id"`
	JobID      *uuid.UUID      `db:"job_id" json:"job_id,omitempty"`
	TaskType   TaskKind        `db:"task_type" json:"task_type"`
	Result     json.RawMessage `db:"result" json:"result"`
	Metadata   json.RawMessage `db:"metadata" json:"metadata"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// ResultQuery filters archived results. Zero values mean "no filter".
type ResultQuery struct {
	TaskType TaskKind
	From     *time.Time
	To       *time.Time
	Limit    int
}
