package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docvision/internal/domain"
	"docvision/internal/port"
	"docvision/internal/task"
	"docvision/internal/validator"
)

// ExtractionResult is the outcome of a single synchronous extraction.
type ExtractionResult struct {
	DocumentID string         `json:"document_id"`
	Record     *domain.Record `json:"result"`
	DurationMs int64          `json:"processing_time_ms"`
}

// PagesResult is the outcome of a multi-page extraction.
type PagesResult struct {
	DocumentID string               `json:"document_id"`
	Document   *task.DocumentResult `json:"document"`
	DurationMs int64                `json:"processing_time_ms"`
}

// ExtractionService runs task handlers outside of batch jobs.
type ExtractionService interface {
	Extract(ctx context.Context, kind domain.TaskKind, image port.ImageRef, opts domain.TaskOptions) (*ExtractionResult, error)
	ExtractPages(ctx context.Context, kind domain.TaskKind, pages []port.ImageRef, strategy domain.MergeStrategy, opts domain.TaskOptions) (*PagesResult, error)
	// Factory returns a per-item handler factory for batch processing.
	Factory(kind domain.TaskKind) (task.Factory, error)
}

type extractionService struct {
	backend   port.GenerationBackend
	fields    *validator.FieldValidator
	publisher port.EventPublisher
	archive   port.ResultRepository
	defaults  OptionDefaults
}

// NewExtractionService creates a new ExtractionService. publisher and archive may be nil.
func NewExtractionService(
	backend port.GenerationBackend,
	fields *validator.FieldValidator,
	publisher port.EventPublisher,
	archive port.ResultRepository,
	defaults OptionDefaults,
) ExtractionService {
	return &extractionService{
		backend:   backend,
		fields:    fields,
		publisher: publisher,
		archive:   archive,
		defaults:  defaults,
	}
}

func (s *extractionService) newHandler(kind domain.TaskKind) (task.Handler, error) {
	if kind == domain.TaskFieldExtraction && s.fields != nil {
		return task.NewFieldHandler(s.backend, s.fields), nil
	}
	return task.New(kind, s.backend)
}

func (s *extractionService) Factory(kind domain.TaskKind) (task.Factory, error) {
	if _, err := task.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	return func() (task.Handler, error) { return s.newHandler(kind) }, nil
}

func (s *extractionService) Extract(ctx context.Context, kind domain.TaskKind, image port.ImageRef, opts domain.TaskOptions) (*ExtractionResult, error) {
	handler, err := s.newHandler(kind)
	if err != nil {
		return nil, err
	}
	opts = s.defaults.Apply(opts)
	docID := uuid.New().String()

	s.publish(ctx, domain.NewEvent(domain.EventExtractionStarted, "", docID, map[string]any{
		"task_type": string(kind), "source": image.Source,
	}))

	start := time.Now()
	rec, err := handler.Process(ctx, image, opts)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Warn().Str("task", string(kind)).Str("document_id", docID).Err(err).
			Msg("extractionService.Extract: failed")
		s.publish(ctx, domain.NewEvent(domain.EventExtractionFailed, "", docID, map[string]any{
			"task_type": string(kind), "error": err.Error(),
		}))
		return nil, err
	}

	log.Info().Str("task", string(kind)).Str("document_id", docID).Int64("elapsed_ms", elapsed).
		Msg("extractionService.Extract: completed")
	s.publish(ctx, domain.NewEvent(domain.EventExtractionCompleted, "", docID, map[string]any{
		"task_type": string(kind), "processing_time_ms": elapsed,
	}))
	s.store(ctx, docID, nil, kind, rec, map[string]any{"source": image.Source, "processing_time_ms": elapsed})

	return &ExtractionResult{DocumentID: docID, Record: rec, DurationMs: elapsed}, nil
}

func (s *extractionService) ExtractPages(ctx context.Context, kind domain.TaskKind, pages []port.ImageRef, strategy domain.MergeStrategy, opts domain.TaskOptions) (*PagesResult, error) {
	handler, err := s.newHandler(kind)
	if err != nil {
		return nil, err
	}
	if _, err := task.ParseMergeStrategy(string(strategy)); err != nil {
		return nil, err
	}
	opts = s.defaults.Apply(opts)
	docID := uuid.New().String()

	s.publish(ctx, domain.NewEvent(domain.EventExtractionStarted, "", docID, map[string]any{
		"task_type": string(kind), "pages": len(pages),
	}))

	start := time.Now()
	doc, err := task.NewMultiPageProcessor(handler).ProcessPages(ctx, pages, strategy, opts)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		s.publish(ctx, domain.NewEvent(domain.EventExtractionFailed, "", docID, map[string]any{
			"task_type": string(kind), "error": err.Error(),
		}))
		return nil, err
	}

	s.publish(ctx, domain.NewEvent(domain.EventExtractionCompleted, "", docID, map[string]any{
		"task_type": string(kind), "pages": doc.TotalPages(), "processing_time_ms": elapsed,
	}))
	log.Info().Str("task", string(kind)).Str("document_id", docID).Int("pages", doc.TotalPages()).
		Msg("extractionService.ExtractPages: completed")

	return &PagesResult{DocumentID: docID, Document: doc, DurationMs: elapsed}, nil
}

// store archives a record when the archive is enabled. Failures are logged only.
func (s *extractionService) store(ctx context.Context, docID string, jobID *uuid.UUID, kind domain.TaskKind, rec *domain.Record, meta map[string]any) {
	if s.archive == nil {
		return
	}
	result, err := NewStoredResult(docID, jobID, kind, rec, meta)
	if err == nil {
		err = s.archive.Save(ctx, result)
	}
	if err != nil {
		log.Error().Str("document_id", docID).Err(err).Msg("extractionService: archiving result failed")
	}
}

func (s *extractionService) publish(ctx context.Context, event domain.Event) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, event)
	}
}

// NewStoredResult encodes a record for the archive.
func NewStoredResult(docID string, jobID *uuid.UUID, kind domain.TaskKind, rec *domain.Record, meta map[string]any) (*domain.StoredResult, error) {
	resultJSON, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	return &domain.StoredResult{
		ID:         uuid.New(),
		DocumentID: docID,
		JobID:      jobID,
		TaskType:   kind,
		Result:     resultJSON,
		Metadata:   metaJSON,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
