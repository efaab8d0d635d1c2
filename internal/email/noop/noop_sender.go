package noop

import (
	"context"

	"github.com/rs/zerolog/log"

	"docvision/internal/email"
	"docvision/internal/port"
)

type noopSender struct{}

// NewNoopSender creates an EmailSender that only logs the summary.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendJobSummary(_ context.Context, to []string, summary port.JobSummary) error {
	log.Info().Strs("to", to).Str("job_id", summary.JobID).
		Msgf("[NOOP EMAIL] %s", email.Subject(summary))
	return nil
}
