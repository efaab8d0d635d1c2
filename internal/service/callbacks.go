package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"docvision/internal/domain"
	"docvision/internal/port"
)

// ArchiveCallback stores every completed item of a finished job.
func ArchiveCallback(repo port.ResultRepository) CompletionCallback {
	return func(ctx context.Context, job *domain.BatchJob) error {
		var errs []error
		stored := 0
		for _, it := range job.Items {
			if it.Status != domain.StatusCompleted || it.Result == nil {
				continue
			}
			meta := map[string]any{"source": it.SourceRef}
			if it.ProcessingTimeMs != nil {
				meta["processing_time_ms"] = *it.ProcessingTimeMs
			}
			jobID := job.ID
			result, err := NewStoredResult(it.ID.String(), &jobID, job.TaskKind, it.Result, meta)
			if err == nil {
				err = repo.Save(ctx, result)
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("item %s: %w", it.ID, err))
				continue
			}
			stored++
		}
		log.Info().Str("job_id", job.ID.String()).Int("stored", stored).Msg("archive: job results stored")
		return errors.Join(errs...)
	}
}

// EmailCallback mails a job summary to recipients. A nil sender or an empty
// recipient list makes it a no-op.
func EmailCallback(sender port.EmailSender, recipients []string) CompletionCallback {
	return func(ctx context.Context, job *domain.BatchJob) error {
		if sender == nil || len(recipients) == 0 {
			return nil
		}
		return sender.SendJobSummary(ctx, recipients, SummarizeJob(job))
	}
}

// SummarizeJob builds the digest of a finished job.
func SummarizeJob(job *domain.BatchJob) port.JobSummary {
	summary := port.JobSummary{
		JobID:     job.ID.String(),
		TaskKind:  string(job.TaskKind),
		Status:    string(job.Status),
		Total:     job.TotalItems(),
		Completed: job.CompletedItems(),
		Failed:    job.FailedItems(),
		Failures:  make(map[string]string),
	}
	if job.StartedAt != nil && job.CompletedAt != nil {
		summary.DurationMs = job.CompletedAt.Sub(*job.StartedAt).Milliseconds()
	}
	for _, it := range job.Items {
		if it.Status == domain.StatusFailed && it.Error != nil {
			summary.Failures[it.SourceRef] = *it.Error
		}
	}
	return summary
}
