package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"docvision/internal/domain"
	"docvision/internal/task"
)

const defaultWatchDebounce = 1500 * time.Millisecond

// WatchConfig holds hot-folder settings.
type WatchConfig struct {
	Dirs     []string
	Patterns []string
	Kind     domain.TaskKind
	Options  domain.TaskOptions
	Debounce time.Duration
}

// WatchService turns files dropped into watched directories into batch jobs.
// Files arriving within one debounce window become one job.
type WatchService struct {
	batch   BatchService
	factory task.Factory
	cfg     WatchConfig

	// OnJob, when set, receives every job the watcher finished.
	OnJob func(job *domain.BatchJob)

	wg sync.WaitGroup
}

// NewWatchService creates a new WatchService.
func NewWatchService(batch BatchService, factory task.Factory, cfg WatchConfig) *WatchService {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultWatchDebounce
	}
	return &WatchService{batch: batch, factory: factory, cfg: cfg}
}

// Run watches until ctx is canceled and then waits for running jobs.
func (w *WatchService) Run(ctx context.Context) error {
	if len(w.cfg.Dirs) == 0 {
		return fmt.Errorf("watchService: %w", domain.ErrNoInputs)
	}
	if len(w.cfg.Patterns) == 0 {
		return fmt.Errorf("watchService: no file patterns configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watchService: creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range w.cfg.Dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watchService: watching %s: %w", dir, err)
		}
	}
	log.Info().Strs("dirs", w.cfg.Dirs).Str("task", string(w.cfg.Kind)).Dur("debounce", w.cfg.Debounce).
		Msg("watchService: started")

	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("watchService: shutting down, waiting for running jobs...")
			w.wg.Wait()
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				w.wg.Wait()
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 || !w.matches(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.cfg.Debounce)

		case <-timer.C:
			refs := make([]string, 0, len(pending))
			for p := range pending {
				refs = append(refs, p)
			}
			pending = make(map[string]struct{})
			if len(refs) == 0 {
				continue
			}
			sort.Strings(refs)
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				w.runJob(context.WithoutCancel(ctx), refs)
			}()

		case err, ok := <-watcher.Errors:
			if !ok {
				w.wg.Wait()
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				log.Warn().Msg("watchService: event queue overflowed, some files may be missed")
				continue
			}
			log.Error().Err(err).Msg("watchService: watcher error")
		}
	}
}

func (w *WatchService) matches(path string) bool {
	name := filepath.Base(path)
	for _, p := range w.cfg.Patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func (w *WatchService) runJob(ctx context.Context, refs []string) {
	job, err := w.batch.CreateJob(ctx, w.cfg.Kind, refs, w.cfg.Options)
	if err != nil {
		log.Error().Err(err).Int("files", len(refs)).Msg("watchService: creating job failed")
		return
	}
	done, err := w.batch.ProcessJob(ctx, job.ID, w.factory)
	if err != nil {
		log.Error().Str("job_id", job.ID.String()).Err(err).Msg("watchService: processing job failed")
		return
	}
	if w.OnJob != nil {
		w.OnJob(done)
	}
}
