package task

import (
	"context"
	"strconv"

	"docvision/internal/domain"
	"docvision/internal/parser"
	"docvision/internal/port"
)

var layoutPrompts = map[domain.LayoutMode]string{
	domain.LayoutElements: "Analyze the layout of this document. Identify every structural element " +
		"(header, paragraph, table, figure, list, caption and so on). For each element give:\n" +
		"- type: the element type\n" +
		"- bbox: bounding box coordinates (x1, y1, x2, y2)\n" +
		"- level: hierarchy level for headers (1, 2, 3...)\n\n" +
		"Return a JSON array:\n```json\n" +
		`[{"type": "header", "level": 1, "bbox": {"x1": 0, "y1": 0, "x2": 500, "y2": 50}}]` + "\n```",
	domain.LayoutSections: "Identify the major sections in this document. " +
		"For each section give its title and bounding box. Return a JSON array:\n```json\n" +
		`[{"title": "Introduction", "bbox": {"x1": 0, "y1": 0, "x2": 500, "y2": 200}}]` + "\n```",
	domain.LayoutReadingOrder: "Determine the reading order of all text elements in this document. " +
		"Number each element in the order it should be read. Return a JSON array:\n```json\n" +
		`[{"order": 1, "type": "header", "bbox": {"x1": 0, "y1": 0, "x2": 500, "y2": 50}}]` + "\n```",
}

// LayoutHandler locates structural elements, sections or reading order.
type LayoutHandler struct{ base }

func NewLayoutHandler(backend port.GenerationBackend) *LayoutHandler {
	return &LayoutHandler{base{backend: backend}}
}

func (h *LayoutHandler) Kind() domain.TaskKind { return domain.TaskLayout }

func (h *LayoutHandler) SystemPrompt() string {
	return "You are an assistant specialized in document layout analysis. " +
		"Identify and locate the structural elements of documents such as headers, " +
		"paragraphs, tables, figures and lists."
}

func layoutMode(opts domain.TaskOptions) domain.LayoutMode {
	if _, ok := layoutPrompts[opts.LayoutMode]; ok {
		return opts.LayoutMode
	}
	return domain.LayoutElements
}

func (h *LayoutHandler) UserPrompt(opts domain.TaskOptions) string {
	return promptOr(opts, layoutPrompts[layoutMode(opts)])
}

func (h *LayoutHandler) Process(ctx context.Context, image port.ImageRef, opts domain.TaskOptions) (*domain.Record, error) {
	raw, err := h.generate(ctx, h, image, opts)
	if err != nil {
		return nil, err
	}

	mode := layoutMode(opts)
	entries := parser.ParseLabeledBoxes(raw)
	elements := make([]domain.LayoutElement, 0, len(entries))
	boxes := make([]domain.Box, 0, len(entries))
	for _, e := range entries {
		el := domain.LayoutElement{
			Type:  asString(e.Attrs["type"]),
			Title: asString(e.Attrs["title"]),
			Level: asInt(e.Attrs["level"]),
			Order: asInt(e.Attrs["order"]),
			Text:  asString(e.Attrs["text"]),
		}
		b := e.BBox.WithLabel(layoutLabel(mode, el, e.Label))
		el.BBox = &b
		elements = append(elements, el)
		boxes = append(boxes, b)
	}

	return &domain.Record{
		Kind:          domain.TaskLayout,
		Text:          raw,
		Data:          domain.LayoutData{Mode: mode, Elements: elements},
		BoundingBoxes: boxes,
		Metadata:      map[string]any{"mode": string(mode), "element_count": len(elements)},
	}, nil
}

func layoutLabel(mode domain.LayoutMode, el domain.LayoutElement, fallback string) string {
	switch mode {
	case domain.LayoutSections:
		if el.Title != "" {
			return el.Title
		}
	case domain.LayoutReadingOrder:
		if el.Order > 0 {
			return strconv.Itoa(el.Order)
		}
	default:
		if el.Type != "" {
			if el.Level > 0 {
				return el.Type + strconv.Itoa(el.Level)
			}
			return el.Type
		}
	}
	return fallback
}
