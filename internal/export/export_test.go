package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docvision/internal/domain"
	"docvision/internal/export"
)

func sampleJob() *domain.BatchJob {
	ms := int64(120)
	errMsg := "unsupported content type"
	conf := 0.9
	return &domain.BatchJob{
		ID:        uuid.New(),
		TaskKind:  domain.TaskOCR,
		Status:    domain.StatusPartial,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Items: []*domain.BatchItem{
			{
				ID:               uuid.New(),
				SourceRef:        "a.png",
				Status:           domain.StatusCompleted,
				ProcessingTimeMs: &ms,
				Result: &domain.Record{
					Kind:       domain.TaskOCR,
					Text:       "hello, world",
					Confidence: &conf,
					Data: domain.OCRData{
						Mode:   "with_boxes",
						Blocks: []domain.TextBlock{{Text: "hello"}},
					},
				},
			},
			{
				ID:        uuid.New(),
				SourceRef: "b.txt",
				Status:    domain.StatusFailed,
				Error:     &errMsg,
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want export.Format
	}{
		{"", export.FormatJSON},
		{"json", export.FormatJSON},
		{"CSV", export.FormatCSV},
		{" xlsx ", export.FormatXLSX},
	}
	for _, tt := range tests {
		got, err := export.ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := export.ParseFormat("pdf")
	assert.True(t, errors.Is(err, domain.ErrUnknownExportFormat))
}

func TestJobTable_FlattensDataKeys(t *testing.T) {
	job := sampleJob()
	table := export.JobTable(job.Results())

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{
		"Item ID", "Source", "Status", "Processing Time (ms)", "Error", "Task", "Text", "Confidence",
		"blocks", "mode",
	}, table.Headers)

	first := table.Rows[0]
	assert.Equal(t, "a.png", first[1])
	assert.Equal(t, "COMPLETED", first[2])
	assert.Equal(t, "120", first[3])
	assert.Equal(t, "hello, world", first[6])
	assert.Equal(t, "0.9000", first[7])
	assert.JSONEq(t, `[{"text":"hello"}]`, first[8])
	assert.Equal(t, "with_boxes", first[9])

	second := table.Rows[1]
	assert.Equal(t, "FAILED", second[2])
	assert.Equal(t, "unsupported content type", second[4])
	assert.Empty(t, second[8])
}

func TestRender_CSVStartsWithBOM(t *testing.T) {
	out, err := export.Render(export.FormatCSV, sampleJob())
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(out, export.BOM))
	rows, err := csv.NewReader(bytes.NewReader(out[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Item ID", rows[0][0])
	assert.Equal(t, "hello, world", rows[1][6])
}

func TestRender_JSONIncludesCounters(t *testing.T) {
	out, err := export.Render(export.FormatJSON, sampleJob())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "PARTIAL", decoded["status"])
	assert.EqualValues(t, 2, decoded["total_items"])
	assert.EqualValues(t, 1, decoded["failed_items"])
	assert.Contains(t, string(out), "\n  ")
}

func TestRender_XLSX(t *testing.T) {
	out, err := export.Render(export.FormatXLSX, sampleJob())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Source", rows[0][1])
	assert.Equal(t, "b.txt", rows[2][1])
}

func TestBuildFilename(t *testing.T) {
	name := export.BuildFilename("job: 42/ocr", export.FormatCSV)

	assert.Regexp(t, `^job_42_ocr_\d{4}-\d{2}-\d{2}\.csv$`, name)
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	long := string(bytes.Repeat([]byte("a"), 150))

	assert.Len(t, export.SanitizeFilename(long), 100)
}
