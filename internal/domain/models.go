package domain

// Box is an axis-aligned region in image pixel coordinates. X1<=X2 and Y1<=Y2 always hold.
type Box struct {
	X1    int    `json:"x1"`
	Y1    int    `json:"y1"`
	X2    int    `json:"x2"`
	Y2    int    `json:"y2"`
	Label string `json:"label,omitempty"`
}

// NewBox builds a normalized box, swapping corners when they arrive reversed.
func NewBox(x1, y1, x2, y2 int) Box {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// WithLabel returns a copy of the box carrying the given label.
func (b Box) WithLabel(label string) Box {
	b.Label = label
	return b
}

// LabeledBox is one entry recovered by labeled-box parsing. Attrs keeps any
// additional keys the model attached to the entry (type, level, order, text...).
type LabeledBox struct {
	Label string         `json:"label"`
	BBox  Box            `json:"bbox"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Point is a single x/y coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// FieldSpec describes one field of an extraction schema.
type FieldSpec struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Schema is an ordered, read-only list of field descriptors.
type Schema struct {
	Name   string      `json:"name,omitempty"`
	Fields []FieldSpec `json:"fields"`
}

// FieldNames returns the schema field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// ValidationResult collects rule violations for one record.
type ValidationResult struct {
	IsValid    bool               `json:"is_valid"`
	Errors     []string           `json:"errors"`
	Warnings   []string           `json:"warnings"`
	Calculated map[string]float64 `json:"calculated,omitempty"`
}

// NewValidationResult returns a valid result with empty (non-nil) lists.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}
}

// AddError records a violation and marks the result invalid.
func (v *ValidationResult) AddError(msg string) {
	v.Errors = append(v.Errors, msg)
	v.IsValid = false
}

// AddWarning records a non-fatal finding.
func (v *ValidationResult) AddWarning(msg string) {
	v.Warnings = append(v.Warnings, msg)
}

// TaskOptions carries per-request knobs for task handlers. Zero values select defaults.
type TaskOptions struct {
	Prompt       string     `json:"prompt,omitempty"`
	WithBoxes    bool       `json:"with_boxes,omitempty"`
	LayoutMode   LayoutMode `json:"layout_mode,omitempty"`
	OutputFormat string     `json:"output_format,omitempty"`
	Preset       string     `json:"preset,omitempty"`
	Schema       *Schema    `json:"schema,omitempty"`
	EntityTypes  []string   `json:"entity_types,omitempty"`
	DocumentType string     `json:"document_type,omitempty"`

	SkipCheckboxes  bool `json:"skip_checkboxes,omitempty"`
	SkipSignatures  bool `json:"skip_signatures,omitempty"`
	SkipClauses     bool `json:"skip_clauses,omitempty"`
	SkipObligations bool `json:"skip_obligations,omitempty"`

	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}
