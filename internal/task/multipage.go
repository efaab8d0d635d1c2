package task

import (
	"context"
	"fmt"
	"strings"

	"docvision/internal/domain"
	"docvision/internal/port"
)

// PageResult is the record produced for one page.
type PageResult struct {
	PageNumber int            `json:"page_number"`
	Record     *domain.Record `json:"result"`
}

// DocumentResult is a multi-page document processed page by page and merged.
type DocumentResult struct {
	Pages      []PageResult   `json:"pages"`
	MergedText string         `json:"merged_text"`
	MergedData map[string]any `json:"merged_data,omitempty"`
	Metadata   map[string]any `json:"metadata"`
}

// TotalPages returns the number of processed pages.
func (d *DocumentResult) TotalPages() int { return len(d.Pages) }

// ParseMergeStrategy validates a merge strategy name. Empty selects concatenate.
func ParseMergeStrategy(s string) (domain.MergeStrategy, error) {
	switch domain.MergeStrategy(s) {
	case "", domain.MergeConcatenate:
		return domain.MergeConcatenate, nil
	case domain.MergeStructured:
		return domain.MergeStructured, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownMergeStrategy, s)
}

// MultiPageProcessor runs one handler over the pages of a document in order.
type MultiPageProcessor struct {
	handler Handler
}

func NewMultiPageProcessor(h Handler) *MultiPageProcessor {
	return &MultiPageProcessor{handler: h}
}

// ProcessPages processes pages sequentially and merges the results. The first
// failing page aborts the document.
func (p *MultiPageProcessor) ProcessPages(ctx context.Context, pages []port.ImageRef, strategy domain.MergeStrategy, opts domain.TaskOptions) (*DocumentResult, error) {
	if len(pages) == 0 {
		return nil, domain.ErrNoInputs
	}
	if _, err := ParseMergeStrategy(string(strategy)); err != nil {
		return nil, err
	}
	if strategy == "" {
		strategy = domain.MergeConcatenate
	}

	results := make([]PageResult, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := p.handler.Process(ctx, page, opts)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		results = append(results, PageResult{PageNumber: i + 1, Record: rec})
	}

	var text string
	var data map[string]any
	if strategy == domain.MergeStructured {
		text, data = mergeStructured(results)
	} else {
		text, data = mergeConcatenate(results)
	}

	return &DocumentResult{
		Pages:      results,
		MergedText: text,
		MergedData: data,
		Metadata: map[string]any{
			"total_pages":    len(results),
			"merge_strategy": string(strategy),
			"task_type":      string(p.handler.Kind()),
		},
	}, nil
}

func mergeConcatenate(pages []PageResult) (string, map[string]any) {
	parts := make([]string, 0, 2*len(pages))
	var perPage []any
	for _, pr := range pages {
		parts = append(parts, fmt.Sprintf("--- Page %d ---", pr.PageNumber), pr.Record.Text)
		if d := pr.Record.DataMap(); len(d) > 0 {
			perPage = append(perPage, map[string]any{"page": pr.PageNumber, "data": d})
		}
	}
	if len(perPage) == 0 {
		return strings.Join(parts, "\n\n"), nil
	}
	return strings.Join(parts, "\n\n"), map[string]any{"pages": perPage}
}

// mergeStructured concatenates list values key by key; scalar values are
// collected into a list per key.
func mergeStructured(pages []PageResult) (string, map[string]any) {
	texts := make([]string, 0, len(pages))
	combined := map[string]any{}
	for _, pr := range pages {
		texts = append(texts, pr.Record.Text)
		for k, v := range pr.Record.DataMap() {
			acc, _ := combined[k].([]any)
			if list, ok := v.([]any); ok {
				acc = append(acc, list...)
			} else {
				acc = append(acc, v)
			}
			combined[k] = acc
		}
	}
	if len(combined) == 0 {
		return strings.Join(texts, "\n\n"), nil
	}
	return strings.Join(texts, "\n\n"), combined
}
