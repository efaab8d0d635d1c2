package port

import "context"

// JobSummary is the digest mailed when a batch job finishes.
type JobSummary struct {
	JobID      string
	TaskKind   string
	Status     string
	Total      int
	Completed  int
	Failed     int
	DurationMs int64
	Failures   map[string]string // source ref -> error
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendJobSummary(ctx context.Context, to []string, summary JobSummary) error
}
