package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docvision/internal/domain"
	"docvision/internal/task"
)

// JobQueueConfig holds settings for the job queue worker.
type JobQueueConfig struct {
	Capacity    int
	Concurrency int
	JobTimeout  time.Duration
}

type queuedJob struct {
	id      uuid.UUID
	factory task.Factory
}

// JobQueueWorker runs queued batch jobs in the background so HTTP callers
// can return as soon as a job is accepted.
type JobQueueWorker struct {
	batch BatchService
	cfg   JobQueueConfig
	queue chan queuedJob
	wg    sync.WaitGroup
}

// NewJobQueueWorker creates a new JobQueueWorker.
func NewJobQueueWorker(batch BatchService, cfg JobQueueConfig) *JobQueueWorker {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 64
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = time.Hour
	}
	return &JobQueueWorker{
		batch: batch,
		cfg:   cfg,
		queue: make(chan queuedJob, cfg.Capacity),
	}
}

// Enqueue schedules a job for processing. It never blocks.
func (w *JobQueueWorker) Enqueue(jobID uuid.UUID, factory task.Factory) error {
	select {
	case w.queue <- queuedJob{id: jobID, factory: factory}:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Start runs the dispatch loop until ctx is canceled. It blocks until all
// in-flight jobs have finished.
func (w *JobQueueWorker) Start(ctx context.Context) {
	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Info().Int("concurrency", w.cfg.Concurrency).Int("capacity", w.cfg.Capacity).
		Msg("jobQueueWorker: started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("jobQueueWorker: shutting down, waiting for in-flight jobs...")
			w.wg.Wait()
			log.Info().Msg("jobQueueWorker: shutdown complete")
			return
		case job := <-w.queue:
			select {
			case sem <- struct{}{}: // acquire
			case <-ctx.Done():
				continue
			}
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				defer func() { <-sem }() // release

				// Detached from ctx so a running job finishes during shutdown.
				jobCtx, cancel := context.WithTimeout(context.Background(), w.cfg.JobTimeout)
				defer cancel()

				log.Info().Str("job_id", job.id.String()).Msg("jobQueueWorker: dispatching job")
				if _, err := w.batch.ProcessJob(jobCtx, job.id, job.factory); err != nil {
					log.Error().Str("job_id", job.id.String()).Err(err).Msg("jobQueueWorker: ProcessJob failed")
				}
			}()
		}
	}
}
