// Package export renders batch job results as JSON, CSV or XLSX documents.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"docvision/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name. Empty selects JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownExportFormat, s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// baseColumns lead every tabular export; data keys follow in sorted order.
var baseColumns = []string{
	"Item ID",
	"Source",
	"Status",
	"Processing Time (ms)",
	"Error",
	"Task",
	"Text",
	"Confidence",
}

// Table is the flat view of a job used by the tabular formats.
type Table struct {
	Headers []string
	Rows    [][]string
}

// JobTable flattens job items into rows. Top-level keys of each record payload
// become columns; nested values are JSON-encoded.
func JobTable(results []domain.ItemResult) Table {
	dataMaps := make([]map[string]any, len(results))
	keySet := make(map[string]bool)
	for i, r := range results {
		if r.Result == nil {
			continue
		}
		dataMaps[i] = r.Result.DataMap()
		for k := range dataMaps[i] {
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := append(append([]string{}, baseColumns...), keys...)
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		row := make([]string, len(headers))
		row[0] = r.ItemID.String()
		row[1] = r.SourceRef
		row[2] = string(r.Status)
		if r.ProcessingTimeMs != nil {
			row[3] = strconv.FormatInt(*r.ProcessingTimeMs, 10)
		}
		if r.Error != nil {
			row[4] = *r.Error
		}
		if rec := r.Result; rec != nil {
			row[5] = string(rec.Kind)
			row[6] = rec.Text
			if rec.Confidence != nil {
				row[7] = strconv.FormatFloat(*rec.Confidence, 'f', 4, 64)
			}
		}
		for j, k := range keys {
			if v, ok := dataMaps[i][k]; ok {
				row[len(baseColumns)+j] = cellValue(v)
			}
		}
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows}
}

func cellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}

// Write renders job in format f to w.
func Write(w io.Writer, f Format, job *domain.BatchJob) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(job)
	case FormatCSV:
		return WriteCSV(w, JobTable(job.Results()))
	case FormatXLSX:
		return WriteXLSX(w, "Results", JobTable(job.Results()))
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownExportFormat, f)
}

// Render is Write into memory.
func Render(f Format, job *domain.BatchJob) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, job); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces unsafe characters with _, collapses runs of
// underscores and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {name}_{YYYY-MM-DD}.{format}.
func BuildFilename(name string, f Format) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), time.Now().UTC().Format("2006-01-02"), f)
}
