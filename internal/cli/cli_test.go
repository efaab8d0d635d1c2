package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docvision/internal/domain"
	"docvision/internal/port"
	"docvision/internal/service"
	"docvision/internal/task"
	"docvision/mocks"
)

type testServices struct {
	ext    *mocks.MockExtractionService
	batch  *mocks.MockBatchService
	loader *mocks.MockImageLoader
}

func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	s := &testServices{
		ext:    new(mocks.MockExtractionService),
		batch:  new(mocks.MockBatchService),
		loader: new(mocks.MockImageLoader),
	}
	SetServices(s.ext, s.batch, s.loader, service.WatchConfig{Kind: domain.TaskOCR, Patterns: []string{"*.png"}})
	t.Cleanup(func() {
		SetServices(nil, nil, nil, service.WatchConfig{})
		resetFlags()
	})
	return s
}

func resetFlags() {
	extractPrompt, extractPreset, extractSchemaFile, extractLayoutMode = "", "", "", ""
	extractWithBoxes = false
	extractEntityTypes = nil
	extractMerge = "concatenate"
	extractOutput = ""
	batchPatterns, batchFormat, batchOutDir = nil, "json", ""
	watchDirs, watchPatterns, watchTask = nil, nil, ""
	rootCmd.SetArgs(nil)
}

func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func png(source string) port.ImageRef {
	return port.ImageRef{Data: []byte("img"), ContentType: "image/png", Source: source}
}

func TestTasksCmd(t *testing.T) {
	out, err := execute("tasks")

	require.NoError(t, err)
	assert.Contains(t, out, "field_extraction")
	assert.Contains(t, out, "contract")
	assert.Contains(t, out, "business_card")
}

func TestExtractCmd_SingleFile(t *testing.T) {
	s := setupTestServices(t)
	s.loader.On("Load", mock.Anything, "scan.png").Return(png("scan.png"), nil)
	s.ext.On("Extract", mock.Anything, domain.TaskFieldExtraction, png("scan.png"),
		mock.MatchedBy(func(o domain.TaskOptions) bool { return o.Preset == "receipt" })).
		Return(&service.ExtractionResult{DocumentID: "doc-1", Record: &domain.Record{Kind: domain.TaskFieldExtraction}}, nil)

	out, err := execute("extract", "field_extraction", "scan.png", "--preset", "receipt")

	require.NoError(t, err)
	assert.Contains(t, out, `"document_id": "doc-1"`)
	s.ext.AssertExpectations(t)
}

func TestExtractCmd_PagesToFile(t *testing.T) {
	s := setupTestServices(t)
	s.loader.On("Load", mock.Anything, "p1.png").Return(png("p1.png"), nil)
	s.loader.On("Load", mock.Anything, "p2.png").Return(png("p2.png"), nil)
	s.ext.On("ExtractPages", mock.Anything, domain.TaskOCR, []port.ImageRef{png("p1.png"), png("p2.png")}, domain.MergeStructured, mock.Anything).
		Return(&service.PagesResult{DocumentID: "doc-2", Document: &task.DocumentResult{MergedText: "a\n\nb"}}, nil)

	path := filepath.Join(t.TempDir(), "out.json")
	out, err := execute("extract", "ocr", "p1.png", "p2.png", "--merge", "structured", "-o", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "doc-2")
}

func TestExtractCmd_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		t.Cleanup(resetFlags)
		_, err := execute("extract", "ocr", "a.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})

	t.Run("unknown task", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute("extract", "summarize", "a.png")
		assert.ErrorIs(t, err, domain.ErrUnknownTaskKind)
	})

	t.Run("unknown preset", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute("extract", "field_extraction", "a.png", "--preset", "passport")
		assert.ErrorIs(t, err, domain.ErrUnknownPreset)
	})

	t.Run("backend failure", func(t *testing.T) {
		s := setupTestServices(t)
		s.loader.On("Load", mock.Anything, "a.png").Return(png("a.png"), nil)
		s.ext.On("Extract", mock.Anything, domain.TaskOCR, mock.Anything, mock.Anything).
			Return(nil, domain.ErrBackendTimeout)

		_, err := execute("extract", "ocr", "a.png")
		assert.ErrorIs(t, err, domain.ErrBackendTimeout)
	})
}

func TestBatchCmd_FilesWithExport(t *testing.T) {
	s := setupTestServices(t)
	msg := "unreadable"
	job := &domain.BatchJob{
		ID:        uuid.New(),
		TaskKind:  domain.TaskOCR,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
		Items: []*domain.BatchItem{
			{ID: uuid.New(), SourceRef: "a.png", Status: domain.StatusPending},
			{ID: uuid.New(), SourceRef: "b.png", Status: domain.StatusPending},
		},
	}
	done := *job
	done.Status = domain.StatusPartial
	done.Items = []*domain.BatchItem{
		{ID: job.Items[0].ID, SourceRef: "a.png", Status: domain.StatusCompleted, Result: &domain.Record{Kind: domain.TaskOCR, Text: "hello"}},
		{ID: job.Items[1].ID, SourceRef: "b.png", Status: domain.StatusFailed, Error: &msg},
	}

	s.batch.On("CreateJob", mock.Anything, domain.TaskOCR, []string{"a.png", "b.png"}, domain.TaskOptions{}).Return(job, nil)
	s.ext.On("Factory", domain.TaskOCR).Return(task.Factory(func() (task.Handler, error) { return nil, errors.New("unused") }), nil)
	s.batch.On("ProcessJob", mock.Anything, job.ID, mock.Anything).Return(&done, nil)

	outDir := t.TempDir()
	out, err := execute("batch", "ocr", "a.png", "b.png", "--format", "csv", "--out", outDir)

	require.NoError(t, err)
	assert.Contains(t, out, "FAILED b.png: unreadable")
	assert.Contains(t, out, "PARTIAL (1 completed, 1 failed, 2 total)")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".csv"))
	s.batch.AssertExpectations(t)
}

func TestBatchCmd_Directory(t *testing.T) {
	s := setupTestServices(t)
	dir := t.TempDir()
	s.batch.On("CreateJobFromDir", mock.Anything, domain.TaskTable, dir, []string{"*.pdf"}, domain.TaskOptions{}).
		Return(nil, domain.ErrNoMatchingFiles)

	_, err := execute("batch", "table", dir, "-p", "*.pdf")

	assert.ErrorIs(t, err, domain.ErrNoMatchingFiles)
}

func TestBatchCmd_UnknownFormat(t *testing.T) {
	setupTestServices(t)

	_, err := execute("batch", "ocr", "a.png", "--format", "pdf")

	assert.ErrorIs(t, err, domain.ErrUnknownExportFormat)
}

func TestWatchConfig(t *testing.T) {
	setupTestServices(t)

	_, err := watchConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no directories")

	watchDirs = []string{"/inbox"}
	watchTask = "invoice"
	cfg, err := watchConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"/inbox"}, cfg.Dirs)
	assert.Equal(t, []string{"*.png"}, cfg.Patterns)
	assert.Equal(t, domain.TaskInvoice, cfg.Kind)

	watchTask = "poetry"
	_, err = watchConfig()
	assert.ErrorIs(t, err, domain.ErrUnknownTaskKind)
}
