// Package cli implements the docvision command line.
package cli

import (
	"github.com/spf13/cobra"

	"docvision/internal/port"
	"docvision/internal/service"
)

var (
	extractionService service.ExtractionService
	batchService      service.BatchService
	imageLoader       port.ImageLoader
	watchDefaults     service.WatchConfig
)

var rootCmd = &cobra.Command{
	Use:   "docvision",
	Short: "Extract structured data from document images",
	Long: `docvision runs vision-model extraction tasks over document images and PDFs:
OCR, layout, tables, fields, entities, forms, invoices and contracts.`,
	SilenceUsage: true,
}

// SetServices injects the services the commands run against.
func SetServices(extraction service.ExtractionService, batch service.BatchService, loader port.ImageLoader, watch service.WatchConfig) {
	extractionService = extraction
	batchService = batch
	imageLoader = loader
	watchDefaults = watch
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
