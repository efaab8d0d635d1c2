package task

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"docvision/internal/domain"
	"docvision/internal/parser"
	"docvision/internal/port"
)

const tablePrompt = "Extract all tables from this image. For each table:\n" +
	"1. Identify the table boundaries (bounding box)\n" +
	"2. Extract the headers (column names)\n" +
	"3. Extract every row of data\n\n" +
	"Return JSON:\n```json\n" +
	`{"tables": [{"bbox": {"x1": 0, "y1": 0, "x2": 500, "y2": 300}, "headers": ["Column1", "Column2"], "rows": [["value1", "value2"]]}]}` +
	"\n```"

// TableHandler extracts tables as headers plus rows.
type TableHandler struct{ base }

func NewTableHandler(backend port.GenerationBackend) *TableHandler {
	return &TableHandler{base{backend: backend}}
}

func (h *TableHandler) Kind() domain.TaskKind { return domain.TaskTable }

func (h *TableHandler) SystemPrompt() string {
	return "You are an assistant specialized in extracting tables from documents. " +
		"Identify tables and extract their headers and cells as structured data."
}

func (h *TableHandler) UserPrompt(opts domain.TaskOptions) string {
	return promptOr(opts, tablePrompt)
}

func (h *TableHandler) Process(ctx context.Context, image port.ImageRef, opts domain.TaskOptions) (*domain.Record, error) {
	raw, err := h.generate(ctx, h, image, opts)
	if err != nil {
		return nil, err
	}

	var entries []map[string]any
	if obj := parser.ParseObject(raw); obj != nil {
		entries = asMapList(obj["tables"])
	}

	tables := make([]domain.Table, 0, len(entries))
	var boxes []domain.Box
	for i, e := range entries {
		t := domain.Table{
			Headers: asStringList(e["headers"]),
			Rows:    [][]string{},
		}
		if rows, ok := e["rows"].([]any); ok {
			for _, r := range rows {
				t.Rows = append(t.Rows, asStringList(r))
			}
		}
		if b := labeledBox(e, fmt.Sprintf("Table %d", i+1)); b != nil {
			t.BBox = b
			boxes = append(boxes, *b)
		}
		tables = append(tables, t)
	}

	format := opts.OutputFormat
	if format == "" {
		format = "json"
	}
	data := domain.TableData{Tables: tables}
	if format == "csv" && len(tables) > 0 {
		data.CSV, err = TablesToCSV(tables)
		if err != nil {
			return nil, fmt.Errorf("table: rendering csv: %w", err)
		}
	}

	return &domain.Record{
		Kind:          domain.TaskTable,
		Text:          raw,
		Data:          data,
		BoundingBoxes: boxes,
		Metadata:      map[string]any{"table_count": len(tables), "output_format": format},
	}, nil
}

// TablesToCSV renders tables one after another, separated by a blank line.
func TablesToCSV(tables []domain.Table) (string, error) {
	var buf bytes.Buffer
	for i, t := range tables {
		if i > 0 {
			buf.WriteString("\n")
		}
		w := csv.NewWriter(&buf)
		if len(t.Headers) > 0 {
			if err := w.Write(t.Headers); err != nil {
				return "", err
			}
		}
		if err := w.WriteAll(t.Rows); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
