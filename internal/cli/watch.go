package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"docvision/internal/domain"
	"docvision/internal/service"
	"docvision/internal/task"
)

var (
	watchDirs     []string
	watchPatterns []string
	watchTask     string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process documents dropped into hot folders",
	Long: `Watches directories and turns each burst of new matching files into a
batch job. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVarP(&watchDirs, "dir", "d", nil, "directories to watch (defaults to DOCVISION_WATCH_DIRS)")
	watchCmd.Flags().StringSliceVarP(&watchPatterns, "pattern", "p", nil, "glob patterns to match (defaults to DOCVISION_WATCH_PATTERNS)")
	watchCmd.Flags().StringVarP(&watchTask, "task", "t", "", "task kind (defaults to DOCVISION_WATCH_TASK_KIND)")
	rootCmd.AddCommand(watchCmd)
}

// watchConfig merges flags over the configured defaults.
func watchConfig() (service.WatchConfig, error) {
	cfg := watchDefaults
	if len(watchDirs) > 0 {
		cfg.Dirs = watchDirs
	}
	if len(watchPatterns) > 0 {
		cfg.Patterns = watchPatterns
	}
	if watchTask != "" {
		cfg.Kind = domain.TaskKind(watchTask)
	}
	kind, err := task.ParseKind(string(cfg.Kind))
	if err != nil {
		return cfg, err
	}
	cfg.Kind = kind
	if len(cfg.Dirs) == 0 {
		return cfg, errors.New("no directories to watch: pass --dir or set DOCVISION_WATCH_DIRS")
	}
	return cfg, nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if batchService == nil || extractionService == nil {
		return errors.New("batch service not configured")
	}
	cfg, err := watchConfig()
	if err != nil {
		return err
	}
	opts, err := extractOptions()
	if err != nil {
		return err
	}
	cfg.Options = opts

	factory, err := extractionService.Factory(cfg.Kind)
	if err != nil {
		return err
	}
	w := service.NewWatchService(batchService, factory, cfg)
	w.OnJob = func(job *domain.BatchJob) { printJobSummary(cmd, job) }

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.Printf("Watching %v for %v (%s)\n", cfg.Dirs, cfg.Patterns, cfg.Kind)
	return w.Run(ctx)
}
