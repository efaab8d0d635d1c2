package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"docvision/internal/app"
	"docvision/internal/cli"
	"docvision/internal/config"
	"docvision/internal/domain"
	"docvision/internal/logger"
	"docvision/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Log)

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize")
	}

	patterns := cfg.Watch.Patterns
	if len(patterns) == 0 {
		patterns = cfg.Batch.DefaultPatterns
	}
	cli.SetServices(a.Extraction, a.Batch, a.Loader, service.WatchConfig{
		Dirs:     cfg.Watch.Dirs,
		Patterns: patterns,
		Kind:     domain.TaskKind(cfg.Watch.TaskKind),
		Debounce: time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond,
	})

	err = cli.Execute()
	a.Close()
	if err != nil {
		os.Exit(1)
	}
}
