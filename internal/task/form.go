package task

import (
	"context"
	"strings"

	"docvision/internal/domain"
	"docvision/internal/parser"
	"docvision/internal/port"
)

// FormHandler extracts key/value pairs, checkboxes and signatures.
type FormHandler struct{ base }

func NewFormHandler(backend port.GenerationBackend) *FormHandler {
	return &FormHandler{base{backend: backend}}
}

func (h *FormHandler) Kind() domain.TaskKind { return domain.TaskForm }

func (h *FormHandler) SystemPrompt() string {
	return "You are an assistant specialized in form understanding. " +
		"Extract key-value pairs, detect checkboxes and radio buttons and identify signatures in form images."
}

func (h *FormHandler) UserPrompt(opts domain.TaskOptions) string {
	if opts.Prompt != "" {
		return opts.Prompt
	}
	var sb strings.Builder
	sb.WriteString("Analyze this form and extract:\n\n")
	sb.WriteString("- Key-value pairs: every form field with its label and value\n")
	if !opts.SkipCheckboxes {
		sb.WriteString("- Checkboxes and radio buttons with their state (checked or unchecked)\n")
	}
	if !opts.SkipSignatures {
		sb.WriteString("- Signatures: signature fields, handwritten signatures and stamps\n")
	}
	sb.WriteString("\nReturn JSON:\n```json\n{\n" +
		`  "fields": [{"key": "field label", "value": "field value", "type": "text|date|number|dropdown", "required": true, "bbox": {"x1": 0, "y1": 0, "x2": 100, "y2": 50}}]`)
	if !opts.SkipCheckboxes {
		sb.WriteString(",\n" + `  "checkboxes": [{"label": "checkbox label", "checked": true, "group": "radio group if any", "bbox": {"x1": 0, "y1": 0, "x2": 20, "y2": 20}}]`)
	}
	if !opts.SkipSignatures {
		sb.WriteString(",\n" + `  "signatures": [{"type": "handwritten|digital|stamp", "name": "signer name", "date": "date if present", "bbox": {"x1": 0, "y1": 0, "x2": 200, "y2": 100}}]`)
	}
	sb.WriteString("\n}\n```")
	return sb.String()
}

func (h *FormHandler) Process(ctx context.Context, image port.ImageRef, opts domain.TaskOptions) (*domain.Record, error) {
	raw, err := h.generate(ctx, h, image, opts)
	if err != nil {
		return nil, err
	}

	obj := parser.ParseObject(raw)
	if obj == nil {
		obj = map[string]any{}
	}

	data := domain.FormData{Fields: []domain.FormField{}}
	var boxes []domain.Box

	for _, e := range asMapList(obj["fields"]) {
		f := domain.FormField{
			Key:      asString(e["key"]),
			Value:    e["value"],
			Type:     asString(e["type"]),
			Required: asBool(e["required"]),
		}
		label := f.Key
		if label == "" {
			label = "field"
		}
		if b := labeledBox(e, clip(label, 20)); b != nil {
			f.BBox = b
			boxes = append(boxes, *b)
		}
		data.Fields = append(data.Fields, f)
	}

	if !opts.SkipCheckboxes {
		for _, e := range asMapList(obj["checkboxes"]) {
			c := domain.Checkbox{
				Label:   asString(e["label"]),
				Checked: asBool(e["checked"]),
				Group:   asString(e["group"]),
			}
			state := "[ ] "
			if c.Checked {
				state = "[x] "
			}
			if b := labeledBox(e, state+clip(c.Label, 15)); b != nil {
				c.BBox = b
				boxes = append(boxes, *b)
			}
			data.Checkboxes = append(data.Checkboxes, c)
		}
	}

	if !opts.SkipSignatures {
		for _, e := range asMapList(obj["signatures"]) {
			s := domain.Signature{
				Type: asString(e["type"]),
				Name: asString(e["name"]),
				Date: asString(e["date"]),
			}
			if b := labeledBox(e, "Signature"); b != nil {
				s.BBox = b
				boxes = append(boxes, *b)
			}
			data.Signatures = append(data.Signatures, s)
		}
	}

	return &domain.Record{
		Kind:          domain.TaskForm,
		Text:          raw,
		Data:          data,
		BoundingBoxes: boxes,
		Metadata: map[string]any{
			"field_count":     len(data.Fields),
			"checkbox_count":  len(data.Checkboxes),
			"signature_count": len(data.Signatures),
		},
	}, nil
}
