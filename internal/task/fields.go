package task

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"docvision/internal/domain"
	"docvision/internal/parser"
	"docvision/internal/port"
	"docvision/internal/validator"
	"docvision/internal/validator/crossfield"
)

// FieldHandler extracts the fields of a preset or custom schema and checks
// each value against its declared type.
type FieldHandler struct {
	base
	validator *validator.FieldValidator
}

// NewFieldHandler creates a handler. A nil validator selects the built-in rules.
func NewFieldHandler(backend port.GenerationBackend, v *validator.FieldValidator) *FieldHandler {
	if v == nil {
		v = validator.NewFieldValidator(nil)
	}
	return &FieldHandler{base: base{backend: backend}, validator: v}
}

func (h *FieldHandler) Kind() domain.TaskKind { return domain.TaskFieldExtraction }

func (h *FieldHandler) SystemPrompt() string {
	return "You are an assistant specialized in extracting specific fields from documents. " +
		"Extract only the requested fields and give a confidence score for each value."
}

func (h *FieldHandler) UserPrompt(opts domain.TaskOptions) string {
	if opts.Prompt != "" {
		return opts.Prompt
	}
	schema, err := validator.ResolveSchema(opts.Preset, opts.Schema)
	if err != nil {
		schema, _ = validator.Preset(validator.DefaultPreset)
	}
	return SchemaPrompt(schema)
}

// SchemaPrompt lists the schema fields and the expected JSON reply shape.
func SchemaPrompt(schema *domain.Schema) string {
	var sb strings.Builder
	sb.WriteString("Extract the following fields from this document:\n\n")
	for _, f := range schema.Fields {
		typ := f.Type
		if typ == "" {
			typ = domain.FieldString
		}
		fmt.Fprintf(&sb, "- %s (%s): %s\n", f.Name, typ, f.Description)
	}
	sb.WriteString("\nReturn JSON with the field names as keys. For each field give:\n" +
		"- value: the extracted value\n" +
		"- confidence: a score from 0.0 to 1.0\n" +
		"- bbox: bounding box coordinates (optional)\n\n" +
		"Example:\n```json\n" +
		`{"fields": {"field_name": {"value": "extracted value", "confidence": 0.95, "bbox": {"x1": 0, "y1": 0, "x2": 100, "y2": 50}}}}` +
		"\n```")
	return sb.String()
}

func (h *FieldHandler) Process(ctx context.Context, image port.ImageRef, opts domain.TaskOptions) (*domain.Record, error) {
	schema, err := validator.ResolveSchema(opts.Preset, opts.Schema)
	if err != nil {
		return nil, fmt.Errorf("field_extraction: %w", err)
	}

	raw, err := h.generate(ctx, h, image, opts)
	if err != nil {
		return nil, err
	}

	rawFields := map[string]any{}
	if obj := parser.ParseObject(raw); obj != nil {
		if f, ok := obj["fields"].(map[string]any); ok {
			rawFields = f
		} else {
			rawFields = obj
		}
	}

	names := make([]string, 0, len(rawFields))
	for name := range rawFields {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make(map[string]domain.FieldValue, len(rawFields))
	values := make(map[string]any, len(rawFields))
	var boxes []domain.Box
	var scores []float64
	for _, name := range names {
		fv := fieldValue(rawFields[name])
		if fv.BBox != nil {
			b := fv.BBox.WithLabel(name)
			fv.BBox = &b
			boxes = append(boxes, b)
		}
		if fv.Confidence != nil {
			scores = append(scores, *fv.Confidence)
		}
		fields[name] = fv
		values[name] = fv.Value
	}

	var required []string
	for _, f := range schema.Fields {
		if f.Required {
			required = append(required, f.Name)
		}
	}

	data := domain.FieldData{
		Preset:           opts.Preset,
		Schema:           *schema,
		Fields:           fields,
		ValidationErrors: h.validator.ValidateFields(values, schema),
		MissingRequired:  crossfield.MissingFields(values, required),
	}

	return &domain.Record{
		Kind:          domain.TaskFieldExtraction,
		Text:          raw,
		Data:          data,
		BoundingBoxes: boxes,
		Confidence:    mean(scores),
		Metadata: map[string]any{
			"field_count":   len(fields),
			"preset":        opts.Preset,
			"invalid_count": len(data.ValidationErrors),
			"missing_count": len(data.MissingRequired),
		},
	}, nil
}

// fieldValue unwraps {value, confidence, bbox}; anything else is a bare value.
func fieldValue(v any) domain.FieldValue {
	m, ok := v.(map[string]any)
	if !ok {
		return domain.FieldValue{Value: v}
	}
	if _, has := m["value"]; !has {
		return domain.FieldValue{Value: v}
	}
	return domain.FieldValue{
		Value:      m["value"],
		Confidence: asConfidence(m["confidence"]),
		BBox:       parser.BoxPtr(m["bbox"]),
	}
}
