package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docvision/internal/domain"
	"docvision/internal/export"
	"docvision/internal/task"
)

var (
	batchPatterns []string
	batchFormat   string
	batchOutDir   string
)

var batchCmd = &cobra.Command{
	Use:   "batch <task> <dir | file...>",
	Short: "Run one task over many documents",
	Long: `Creates a batch job from a directory (filtered by --pattern) or from an
explicit file list, processes it and exports the per-item results.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringSliceVarP(&batchPatterns, "pattern", "p", nil, "glob patterns for directory input")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "json", "export format: json, csv or xlsx")
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "", "directory for the export file (stdout summary only when empty)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchService == nil || extractionService == nil {
		return errors.New("batch service not configured")
	}
	kind, err := task.ParseKind(args[0])
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(batchFormat)
	if err != nil {
		return err
	}
	opts, err := extractOptions()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	var job *domain.BatchJob
	if info, statErr := os.Stat(args[1]); statErr == nil && info.IsDir() && len(args) == 2 {
		job, err = batchService.CreateJobFromDir(ctx, kind, args[1], batchPatterns, opts)
	} else {
		job, err = batchService.CreateJob(ctx, kind, args[1:], opts)
	}
	if err != nil {
		return err
	}

	factory, err := extractionService.Factory(kind)
	if err != nil {
		return err
	}
	cmd.Printf("Processing %d item(s) as job %s\n", job.TotalItems(), job.ID)
	if job, err = batchService.ProcessJob(ctx, job.ID, factory); err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}
	printJobSummary(cmd, job)

	if batchOutDir == "" {
		return nil
	}
	data, err := export.Render(format, job)
	if err != nil {
		return err
	}
	name := export.BuildFilename(fmt.Sprintf("job_%s_%s", job.TaskKind, job.ID), format)
	path := filepath.Join(batchOutDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	cmd.Printf("Exported results to %s\n", path)
	return nil
}

func printJobSummary(cmd *cobra.Command, job *domain.BatchJob) {
	completed, failed := 0, 0
	for _, it := range job.Items {
		switch it.Status {
		case domain.StatusCompleted:
			completed++
		case domain.StatusFailed:
			failed++
			if it.Error != nil {
				cmd.Printf("  FAILED %s: %s\n", it.SourceRef, *it.Error)
			}
		}
	}
	cmd.Printf("Job %s: %s (%d completed, %d failed, %d total)\n",
		job.ID, job.Status, completed, failed, job.TotalItems())
}
