package task

import (
	"context"
	"fmt"
	"strings"

	"docvision/internal/domain"
	"docvision/internal/parser"
	"docvision/internal/port"
)

// EntityType is a recognizable entity category.
type EntityType struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EntityTypes lists the supported categories in prompt order.
var EntityTypes = []EntityType{
	{"PERSON", "Names of people"},
	{"ORGANIZATION", "Companies, institutions, organizations"},
	{"LOCATION", "Places, addresses, geographic locations"},
	{"DATE", "Dates and times"},
	{"MONEY", "Monetary values and currencies"},
	{"EMAIL", "Email addresses"},
	{"PHONE", "Phone numbers"},
	{"URL", "Website URLs"},
	{"PRODUCT", "Product names"},
	{"EVENT", "Events"},
}

// NERHandler finds named entities and groups them by type.
type NERHandler struct{ base }

func NewNERHandler(backend port.GenerationBackend) *NERHandler {
	return &NERHandler{base{backend: backend}}
}

func (h *NERHandler) Kind() domain.TaskKind { return domain.TaskNER }

func (h *NERHandler) SystemPrompt() string {
	return "You are an assistant specialized in named entity recognition. " +
		"Identify the named entities in the text of images and categorize them by type."
}

// selectedTypes keeps the requested types that are known. No request, or no
// known type in it, selects every type.
func selectedTypes(requested []string) []EntityType {
	if len(requested) == 0 {
		return EntityTypes
	}
	want := make(map[string]bool, len(requested))
	for _, r := range requested {
		want[strings.ToUpper(strings.TrimSpace(r))] = true
	}
	var out []EntityType
	for _, t := range EntityTypes {
		if want[t.Name] {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return EntityTypes
	}
	return out
}

func (h *NERHandler) UserPrompt(opts domain.TaskOptions) string {
	if opts.Prompt != "" {
		return opts.Prompt
	}
	var sb strings.Builder
	sb.WriteString("Extract all named entities from this image. Identify:\n\n")
	for _, t := range selectedTypes(opts.EntityTypes) {
		fmt.Fprintf(&sb, "- %s: %s\n", t.Name, t.Description)
	}
	sb.WriteString("\nReturn JSON:\n```json\n" +
		`{"entities": [{"text": "entity text", "type": "ENTITY_TYPE", "confidence": 0.95, "bbox": {"x1": 0, "y1": 0, "x2": 100, "y2": 50}}]}` +
		"\n```")
	return sb.String()
}

func (h *NERHandler) Process(ctx context.Context, image port.ImageRef, opts domain.TaskOptions) (*domain.Record, error) {
	raw, err := h.generate(ctx, h, image, opts)
	if err != nil {
		return nil, err
	}

	var entries []map[string]any
	if obj := parser.ParseObject(raw); obj != nil {
		entries = asMapList(obj["entities"])
	} else {
		entries = parser.ParseObjectArray(raw)
	}

	data := domain.EntityData{
		Entities: make([]domain.Entity, 0, len(entries)),
		ByType:   map[string][]string{},
	}
	var boxes []domain.Box
	var scores []float64
	for _, e := range entries {
		ent := domain.Entity{
			Text:       asString(e["text"]),
			Type:       strings.ToUpper(asString(e["type"])),
			Confidence: asConfidence(e["confidence"]),
		}
		if ent.Type == "" {
			ent.Type = "UNKNOWN"
		}
		if b := labeledBox(e, ent.Type+": "+clip(ent.Text, 15)); b != nil {
			ent.BBox = b
			boxes = append(boxes, *b)
		}
		if ent.Confidence != nil {
			scores = append(scores, *ent.Confidence)
		}
		data.Entities = append(data.Entities, ent)
		data.ByType[ent.Type] = append(data.ByType[ent.Type], ent.Text)
	}

	return &domain.Record{
		Kind:          domain.TaskNER,
		Text:          raw,
		Data:          data,
		BoundingBoxes: boxes,
		Confidence:    mean(scores),
		Metadata:      map[string]any{"entity_count": len(data.Entities), "type_count": len(data.ByType)},
	}, nil
}
