package service

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docvision/internal/domain"
	"docvision/internal/export"
	"docvision/internal/port"
)

// ExportedFile is a rendered job export.
type ExportedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PublishedExport describes an export uploaded to object storage.
type PublishedExport struct {
	Filename string `json:"filename"`
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	URL      string `json:"url"`
}

// ExportStorageConfig names where published exports go.
type ExportStorageConfig struct {
	Bucket        string
	Prefix        string
	PresignExpiry int64
}

// ExportService renders job results and optionally publishes them.
type ExportService interface {
	ExportJob(ctx context.Context, jobID uuid.UUID, format string) (*ExportedFile, error)
	PublishJob(ctx context.Context, jobID uuid.UUID, format string) (*PublishedExport, error)
}

type exportService struct {
	batch   BatchService
	storage port.ObjectStorage
	cfg     ExportStorageConfig
}

// NewExportService creates a new ExportService. storage may be nil, in which
// case PublishJob returns domain.ErrStorageNotConfigured.
func NewExportService(batch BatchService, storage port.ObjectStorage, cfg ExportStorageConfig) ExportService {
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = 3600
	}
	return &exportService{batch: batch, storage: storage, cfg: cfg}
}

func (s *exportService) ExportJob(ctx context.Context, jobID uuid.UUID, format string) (*ExportedFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	job, err := s.batch.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	data, err := export.Render(f, job)
	if err != nil {
		return nil, fmt.Errorf("exportService.ExportJob: rendering %s: %w", f, err)
	}
	return &ExportedFile{
		Filename:    export.BuildFilename(fmt.Sprintf("job_%s_%s", job.TaskKind, job.ID), f),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

func (s *exportService) PublishJob(ctx context.Context, jobID uuid.UUID, format string) (*PublishedExport, error) {
	if s.storage == nil || s.cfg.Bucket == "" {
		return nil, domain.ErrStorageNotConfigured
	}
	file, err := s.ExportJob(ctx, jobID, format)
	if err != nil {
		return nil, err
	}

	key := path.Join(s.cfg.Prefix, jobID.String(), file.Filename)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(file.Data),
		ContentType: file.ContentType,
		Size:        int64(len(file.Data)),
	}); err != nil {
		return nil, fmt.Errorf("exportService.PublishJob: uploading: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("exportService.PublishJob: presigning: %w", err)
	}

	log.Info().Str("job_id", jobID.String()).Str("key", key).Msg("exportService.PublishJob: export uploaded")
	return &PublishedExport{Filename: file.Filename, Bucket: s.cfg.Bucket, Key: key, URL: url}, nil
}
