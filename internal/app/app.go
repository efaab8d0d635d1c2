// Package app assembles the services shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"docvision/internal/backend/providers"
	"docvision/internal/config"
	"docvision/internal/email/noop"
	"docvision/internal/email/ses"
	"docvision/internal/loader"
	"docvision/internal/notify"
	"docvision/internal/port"
	"docvision/internal/repository/postgres"
	"docvision/internal/service"
	s3storage "docvision/internal/storage/s3"
	"docvision/internal/validator"
)

// App holds the wired services.
type App struct {
	Config *config.Config

	DB       *sqlx.DB
	Storage  port.ObjectStorage
	Archive  port.ResultRepository
	Loader   *loader.Loader
	Fields   *validator.FieldValidator
	Notifier *notify.Notifier

	Batch      service.BatchService
	Extraction service.ExtractionService
	Exports    service.ExportService
	Results    service.ResultService
}

// MaxUploadBytes is the configured upload and download cap.
func (a *App) MaxUploadBytes() int64 {
	return a.Config.Server.MaxUploadMB << 20
}

// New connects optional infrastructure and wires every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	maxBytes := a.MaxUploadBytes()

	if cfg.Archive.Enabled {
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.DB = db
		a.Archive = postgres.NewResultRepo(db)
		log.Info().Str("db", cfg.DB.Name).Msg("result archive enabled")
	}

	if cfg.S3.Enabled() {
		store, err := s3storage.New(ctx, &cfg.S3, maxBytes)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		a.Storage = store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("object storage enabled")
	}

	backend, err := providers.NewChain(&cfg.Backend)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize generation backend: %w", err)
	}

	notifier, err := notify.NewFromConfig(cfg.Webhook)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to configure webhooks: %w", err)
	}
	a.Notifier = notifier

	sender, err := newEmailSender(ctx, &cfg.Email)
	if err != nil {
		a.Close()
		return nil, err
	}

	defaults := service.OptionDefaults{MaxTokens: cfg.Backend.MaxTokens, Temperature: cfg.Backend.Temperature}
	a.Loader = loader.New(a.Storage, maxBytes)
	a.Fields = validator.NewFieldValidator(validator.DefaultRegistry())

	a.Batch = service.NewBatchService(a.Loader, notifier, service.BatchConfig{
		Concurrency:     cfg.Batch.Concurrency,
		DefaultPatterns: cfg.Batch.DefaultPatterns,
		Defaults:        defaults,
	})
	if a.Archive != nil {
		a.Batch.AddCompletionCallback(service.ArchiveCallback(a.Archive))
	}
	a.Batch.AddCompletionCallback(service.EmailCallback(sender, cfg.Email.Recipients))

	a.Extraction = service.NewExtractionService(backend, a.Fields, notifier, a.Archive, defaults)
	a.Exports = service.NewExportService(a.Batch, a.Storage, service.ExportStorageConfig{
		Bucket:        cfg.S3.Bucket,
		Prefix:        cfg.S3.ExportPrefix,
		PresignExpiry: cfg.S3.PresignExpiry,
	})
	a.Results = service.NewResultService(a.Archive)
	return a, nil
}

func newEmailSender(ctx context.Context, cfg *config.EmailConfig) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		sender, err := ses.NewSESSender(ctx, cfg.Region, cfg.FromAddress, cfg.FromName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES sender: %w", err)
		}
		return sender, nil
	case "", "noop":
		return noop.NewNoopSender(), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// Close waits for in-flight webhook deliveries and releases the database.
func (a *App) Close() {
	if a.Notifier != nil {
		done := make(chan struct{})
		go func() {
			a.Notifier.Close()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			log.Warn().Msg("app.Close: webhook deliveries still running")
		}
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
