package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	_ "docvision/docs"
	"docvision/internal/app"
	"docvision/internal/config"
	"docvision/internal/handler"
	"docvision/internal/logger"
	"docvision/internal/router"
	"docvision/internal/service"
)

// @title DocVision API
// @version 1.0
// @description Vision-model document extraction: OCR, layout, tables, fields, entities, forms, invoices and contracts, single or in batch.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Background job processing
	queue := service.NewJobQueueWorker(a.Batch, service.JobQueueConfig{Concurrency: 1})
	queueDone := make(chan struct{})
	go func() {
		queue.Start(ctx)
		close(queueDone)
	}()

	// Initialize handlers
	var db handler.Pinger
	if a.DB != nil {
		db = a.DB
	}
	r := router.Setup(router.Handlers{
		Health:   handler.NewHealthHandler(db),
		Tasks:    handler.NewTaskHandler(a.Fields),
		Extract:  handler.NewExtractHandler(a.Extraction, a.Loader, a.MaxUploadBytes()),
		Jobs:     handler.NewJobHandler(a.Batch, a.Extraction, a.Exports, queue),
		Validate: handler.NewValidateHandler(a.Fields),
		Results:  handler.NewResultHandler(a.Results),
		Webhooks: handler.NewWebhookHandler(a.Notifier),
	}, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Port).Strs("providers", providerNames(cfg)).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	stop()
	<-queueDone
	log.Info().Msg("server stopped")
	return nil
}

func providerNames(cfg *config.Config) []string {
	var names []string
	for _, p := range cfg.Backend.Providers() {
		names = append(names, p.Provider)
	}
	return names
}
