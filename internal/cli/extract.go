package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docvision/internal/domain"
	"docvision/internal/port"
	"docvision/internal/task"
	"docvision/internal/validator"
)

var (
	extractPrompt      string
	extractPreset      string
	extractSchemaFile  string
	extractWithBoxes   bool
	extractLayoutMode  string
	extractEntityTypes []string
	extractMerge       string
	extractOutput      string
)

var extractCmd = &cobra.Command{
	Use:   "extract <task> <file> [file...]",
	Short: "Run one task over a document",
	Long: `Runs a task over one document. Passing several files treats them as the
ordered pages of a single document and merges the page results.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runExtract,
}

func init() {
	// Task options apply to extract, batch and watch.
	opts := rootCmd.PersistentFlags()
	opts.StringVar(&extractPrompt, "prompt", "", "prompt override")
	opts.StringVar(&extractPreset, "preset", "", "schema preset for field_extraction")
	opts.StringVar(&extractSchemaFile, "schema", "", "path to a custom schema JSON file")
	opts.BoolVar(&extractWithBoxes, "with-boxes", false, "request bounding boxes (ocr)")
	opts.StringVar(&extractLayoutMode, "layout-mode", "", "layout mode: elements, sections or reading_order")
	opts.StringSliceVar(&extractEntityTypes, "entity-types", nil, "entity types for ner")

	extractCmd.Flags().StringVar(&extractMerge, "merge", "concatenate", "page merge strategy: concatenate or structured")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "write the JSON result to a file instead of stdout")
	rootCmd.AddCommand(extractCmd)
}

func extractOptions() (domain.TaskOptions, error) {
	opts := domain.TaskOptions{
		Prompt:      extractPrompt,
		Preset:      extractPreset,
		WithBoxes:   extractWithBoxes,
		LayoutMode:  domain.LayoutMode(extractLayoutMode),
		EntityTypes: extractEntityTypes,
	}
	if extractPreset != "" {
		if _, err := validator.Preset(extractPreset); err != nil {
			return opts, err
		}
	}
	if extractSchemaFile != "" {
		raw, err := os.ReadFile(extractSchemaFile)
		if err != nil {
			return opts, fmt.Errorf("reading schema: %w", err)
		}
		if opts.Schema, err = validator.LoadSchema(raw); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractionService == nil || imageLoader == nil {
		return errors.New("extraction service not configured")
	}
	kind, err := task.ParseKind(args[0])
	if err != nil {
		return err
	}
	opts, err := extractOptions()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	files := args[1:]
	images := make([]port.ImageRef, 0, len(files))
	for _, f := range files {
		img, err := imageLoader.Load(ctx, f)
		if err != nil {
			return err
		}
		images = append(images, img)
	}

	var out any
	if len(images) == 1 {
		out, err = extractionService.Extract(ctx, kind, images[0], opts)
	} else {
		var strategy domain.MergeStrategy
		if strategy, err = task.ParseMergeStrategy(extractMerge); err != nil {
			return err
		}
		out, err = extractionService.ExtractPages(ctx, kind, images, strategy, opts)
	}
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	return writeJSON(cmd, out, extractOutput)
}

func writeJSON(cmd *cobra.Command, v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if path == "" {
		cmd.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	cmd.Printf("Wrote %s\n", path)
	return nil
}
