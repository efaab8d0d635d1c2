package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docvision/internal/domain"
	"docvision/internal/port"
	"docvision/internal/task"
)

const defaultBatchConcurrency = 4

// CompletionCallback is invoked with a snapshot of every finished job.
type CompletionCallback func(ctx context.Context, job *domain.BatchJob) error

// BatchConfig holds settings for the batch orchestrator.
type BatchConfig struct {
	Concurrency     int
	DefaultPatterns []string
	Defaults        OptionDefaults
}

// BatchService owns the job table and runs jobs over a bounded worker pool.
type BatchService interface {
	CreateJob(ctx context.Context, kind domain.TaskKind, refs []string, opts domain.TaskOptions) (*domain.BatchJob, error)
	CreateJobFromDir(ctx context.Context, kind domain.TaskKind, dir string, patterns []string, opts domain.TaskOptions) (*domain.BatchJob, error)
	// ProcessJob runs every item of a PENDING job and blocks until all have finished.
	ProcessJob(ctx context.Context, jobID uuid.UUID, factory task.Factory) (*domain.BatchJob, error)
	// CancelJob cancels a PENDING job. It reports false for any other state.
	CancelJob(ctx context.Context, jobID uuid.UUID) (bool, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*domain.BatchJob, error)
	GetJobResults(ctx context.Context, jobID uuid.UUID) ([]domain.ItemResult, error)
	ListJobs(ctx context.Context, status *domain.JobStatus) []*domain.BatchJob
	AddCompletionCallback(cb CompletionCallback)
}

type batchService struct {
	loader    port.ImageLoader
	publisher port.EventPublisher
	cfg       BatchConfig

	// mu guards jobs and every item field of every job.
	mu   sync.RWMutex
	jobs map[uuid.UUID]*domain.BatchJob

	cbMu      sync.RWMutex
	callbacks []CompletionCallback
}

// NewBatchService creates a new BatchService. publisher may be nil.
func NewBatchService(loader port.ImageLoader, publisher port.EventPublisher, cfg BatchConfig) BatchService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultBatchConcurrency
	}
	return &batchService{
		loader:    loader,
		publisher: publisher,
		cfg:       cfg,
		jobs:      make(map[uuid.UUID]*domain.BatchJob),
	}
}

func (s *batchService) CreateJob(ctx context.Context, kind domain.TaskKind, refs []string, opts domain.TaskOptions) (*domain.BatchJob, error) {
	if _, err := task.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, domain.ErrNoInputs
	}

	job := &domain.BatchJob{
		ID:        uuid.New(),
		TaskKind:  kind,
		Items:     make([]*domain.BatchItem, 0, len(refs)),
		Status:    domain.StatusPending,
		Options:   s.cfg.Defaults.Apply(opts),
		CreatedAt: time.Now().UTC(),
	}
	for _, ref := range refs {
		job.Items = append(job.Items, &domain.BatchItem{
			ID:        uuid.New(),
			SourceRef: ref,
			Status:    domain.StatusPending,
		})
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	snapshot := job.Clone()
	s.mu.Unlock()

	log.Info().Str("job_id", job.ID.String()).Str("task", string(kind)).Int("items", len(refs)).
		Msg("batchService.CreateJob: job created")
	return snapshot, nil
}

func (s *batchService) CreateJobFromDir(ctx context.Context, kind domain.TaskKind, dir string, patterns []string, opts domain.TaskOptions) (*domain.BatchJob, error) {
	if _, err := task.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		patterns = s.cfg.DefaultPatterns
	}
	refs, err := MatchFiles(dir, patterns)
	if err != nil {
		return nil, err
	}
	return s.CreateJob(ctx, kind, refs, opts)
}

// MatchFiles lists the regular files directly inside dir whose names match
// any of the glob patterns, sorted and de-duplicated. Zero matches is an error.
func MatchFiles(dir string, patterns []string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrNotADirectory, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotADirectory, dir)
	}

	seen := make(map[string]bool)
	var refs []string
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, p))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			if fi, err := os.Stat(m); err != nil || fi.IsDir() {
				continue
			}
			seen[m] = true
			refs = append(refs, m)
		}
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w in %s: %v", domain.ErrNoMatchingFiles, dir, patterns)
	}
	sort.Strings(refs)
	return refs, nil
}

func (s *batchService) ProcessJob(ctx context.Context, jobID uuid.UUID, factory task.Factory) (*domain.BatchJob, error) {
	if factory == nil {
		return nil, fmt.Errorf("batchService.ProcessJob: nil handler factory")
	}

	s.mu.Lock()
	job, ok := s.jobs[jobID]
	if !ok {
		s.mu.Unlock()
		return nil, domain.ErrJobNotFound
	}
	if job.Status != domain.StatusPending {
		status := job.Status
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: job %s is %s", domain.ErrJobNotPending, jobID, status)
	}
	started := time.Now().UTC()
	job.Status = domain.StatusProcessing
	job.StartedAt = &started
	items := job.Items
	opts := job.Options
	total := len(items)
	s.mu.Unlock()

	log.Info().Str("job_id", jobID.String()).Int("items", total).Int("concurrency", s.cfg.Concurrency).
		Msg("batchService.ProcessJob: started")
	s.publish(ctx, domain.NewEvent(domain.EventBatchStarted, jobID.String(), "", map[string]any{
		"task_type": string(job.TaskKind), "total_items": total,
	}))

	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup
	var processed int
	var progressMu sync.Mutex

	for _, item := range items {
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(item *domain.BatchItem) {
			defer wg.Done()
			defer func() { <-sem }() // release

			s.runItem(ctx, jobID, item, factory, opts)

			progressMu.Lock()
			processed++
			done := processed
			progressMu.Unlock()
			s.publish(ctx, domain.NewEvent(domain.EventBatchProgress, jobID.String(), item.ID.String(), map[string]any{
				"processed_items": done,
				"total_items":     total,
				"progress":        float64(done) / float64(total) * 100,
			}))
		}(item)
	}
	wg.Wait()

	s.mu.Lock()
	completed := time.Now().UTC()
	job.CompletedAt = &completed
	job.Status = finalStatus(job)
	snapshot := job.Clone()
	s.mu.Unlock()

	log.Info().Str("job_id", jobID.String()).Str("status", string(snapshot.Status)).
		Int("failed", snapshot.FailedItems()).Dur("elapsed", completed.Sub(started)).
		Msg("batchService.ProcessJob: finished")

	eventType := domain.EventBatchCompleted
	if snapshot.Status == domain.StatusFailed {
		eventType = domain.EventBatchFailed
	}
	s.publish(ctx, domain.NewEvent(eventType, jobID.String(), "", map[string]any{
		"status":          string(snapshot.Status),
		"total_items":     snapshot.TotalItems(),
		"completed_items": snapshot.CompletedItems(),
		"failed_items":    snapshot.FailedItems(),
	}))

	s.runCallbacks(ctx, snapshot)
	return snapshot, nil
}

// finalStatus: all completed -> COMPLETED, all failed -> FAILED, otherwise PARTIAL.
func finalStatus(job *domain.BatchJob) domain.JobStatus {
	switch failed := job.FailedItems(); {
	case failed == 0:
		return domain.StatusCompleted
	case failed == job.TotalItems():
		return domain.StatusFailed
	default:
		return domain.StatusPartial
	}
}

// runItem processes one item and records its outcome. A panic inside the
// handler fails the item, not the job.
func (s *batchService) runItem(ctx context.Context, jobID uuid.UUID, item *domain.BatchItem, factory task.Factory, opts domain.TaskOptions) {
	s.mu.Lock()
	item.Status = domain.StatusProcessing
	ref := item.SourceRef
	s.mu.Unlock()

	start := time.Now()
	rec, err := s.processItem(ctx, ref, factory, opts)
	elapsed := time.Since(start).Milliseconds()

	s.mu.Lock()
	item.ProcessingTimeMs = &elapsed
	if err != nil {
		msg := err.Error()
		item.Error = &msg
		item.Status = domain.StatusFailed
	} else {
		item.Result = rec
		item.Status = domain.StatusCompleted
	}
	s.mu.Unlock()

	if err != nil {
		log.Warn().Str("job_id", jobID.String()).Str("item_id", item.ID.String()).Str("source", ref).Err(err).
			Msg("batchService.ProcessJob: item failed")
	}
}

func (s *batchService) processItem(ctx context.Context, ref string, factory task.Factory, opts domain.TaskOptions) (rec *domain.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("panic while processing %s: %v", ref, r)
		}
	}()

	handler, err := factory()
	if err != nil {
		return nil, fmt.Errorf("creating handler: %w", err)
	}
	image, err := s.loader.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	return handler.Process(ctx, image, opts)
}

func (s *batchService) runCallbacks(ctx context.Context, job *domain.BatchJob) {
	s.cbMu.RLock()
	callbacks := append([]CompletionCallback(nil), s.callbacks...)
	s.cbMu.RUnlock()

	for i, cb := range callbacks {
		if err := safeCallback(ctx, cb, job.Clone()); err != nil {
			log.Error().Str("job_id", job.ID.String()).Int("callback", i).Err(err).
				Msg("batchService: completion callback failed")
		}
	}
}

func safeCallback(ctx context.Context, cb CompletionCallback, job *domain.BatchJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panicked: %v", r)
		}
	}()
	return cb(ctx, job)
}

func (s *batchService) publish(ctx context.Context, event domain.Event) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, event)
	}
}

func (s *batchService) CancelJob(ctx context.Context, jobID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return false, domain.ErrJobNotFound
	}
	if job.Status != domain.StatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	job.Status = domain.StatusCancelled
	job.CompletedAt = &now
	for _, it := range job.Items {
		it.Status = domain.StatusCancelled
	}
	log.Info().Str("job_id", jobID.String()).Msg("batchService.CancelJob: job cancelled")
	return true, nil
}

func (s *batchService) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.BatchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job.Clone(), nil
}

func (s *batchService) GetJobResults(ctx context.Context, jobID uuid.UUID) ([]domain.ItemResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job.Results(), nil
}

func (s *batchService) ListJobs(ctx context.Context, status *domain.JobStatus) []*domain.BatchJob {
	s.mu.RLock()
	out := make([]*domain.BatchJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if status != nil && job.Status != *status {
			continue
		}
		out = append(out, job.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *batchService) AddCompletionCallback(cb CompletionCallback) {
	if cb == nil {
		return
	}
	s.cbMu.Lock()
	s.callbacks = append(s.callbacks, cb)
	s.cbMu.Unlock()
}
