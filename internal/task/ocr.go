package task

import (
	"context"

	"docvision/internal/domain"
	"docvision/internal/parser"
	"docvision/internal/port"
)

const (
	ocrTextPrompt  = "Extract all text from this image. Preserve the layout and structure."
	ocrBoxesPrompt = "Extract all text from this image with bounding box coordinates. " +
		"Return a JSON array where each item has \"text\" and \"bbox\" (x1, y1, x2, y2). Format:\n" +
		"```json\n" +
		`[{"text": "extracted text", "bbox": {"x1": 0, "y1": 0, "x2": 100, "y2": 50}}]` + "\n" +
		"```"
)

// OCRHandler extracts text, optionally with one box per text span.
type OCRHandler struct{ base }

func NewOCRHandler(backend port.GenerationBackend) *OCRHandler {
	return &OCRHandler{base{backend: backend}}
}

func (h *OCRHandler) Kind() domain.TaskKind { return domain.TaskOCR }

func (h *OCRHandler) SystemPrompt() string {
	return "You are an assistant specialized in optical character recognition. " +
		"Extract all text from the image accurately and keep its layout and structure."
}

func (h *OCRHandler) UserPrompt(opts domain.TaskOptions) string {
	if opts.WithBoxes {
		return promptOr(opts, ocrBoxesPrompt)
	}
	return promptOr(opts, ocrTextPrompt)
}

func (h *OCRHandler) Process(ctx context.Context, image port.ImageRef, opts domain.TaskOptions) (*domain.Record, error) {
	raw, err := h.generate(ctx, h, image, opts)
	if err != nil {
		return nil, err
	}

	if !opts.WithBoxes {
		return &domain.Record{
			Kind:     domain.TaskOCR,
			Text:     raw,
			Data:     domain.OCRData{Mode: "text_only"},
			Metadata: map[string]any{"mode": "text_only"},
		}, nil
	}

	entries := parser.ParseLabeledBoxes(raw)
	blocks := make([]domain.TextBlock, 0, len(entries))
	boxes := make([]domain.Box, 0, len(entries))
	for _, e := range entries {
		text := asString(e.Attrs["text"])
		if text == "" {
			text = e.Label
		}
		b := e.BBox.WithLabel(text)
		blocks = append(blocks, domain.TextBlock{Text: text, BBox: &b})
		boxes = append(boxes, b)
	}

	return &domain.Record{
		Kind:          domain.TaskOCR,
		Text:          raw,
		Data:          domain.OCRData{Mode: "with_boxes", Blocks: blocks},
		BoundingBoxes: boxes,
		Metadata:      map[string]any{"mode": "with_boxes", "box_count": len(boxes)},
	}, nil
}
