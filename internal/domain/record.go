package domain

import "encoding/json"

// Record is the structured result recovered from one generation-backend response.
// It is built once by a task handler and not mutated afterwards.
type Record struct {
	Kind          TaskKind       `json:"task_type"`
	Text          string         `json:"text"`
	Data          RecordData     `json:"data,omitempty"`
	BoundingBoxes []Box          `json:"bounding_boxes,omitempty"`
	Confidence    *float64       `json:"confidence,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// RecordData is implemented by the per-task payload variants.
type RecordData interface {
	TaskKind() TaskKind
}

// DataMap renders the record payload as a generic map, used by exporters and page merging.
func (r *Record) DataMap() map[string]any {
	if r == nil || r.Data == nil {
		return nil
	}
	raw, err := json.Marshal(r.Data)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// TextBlock is one OCR span.
type TextBlock struct {
	Text string `json:"text"`
	BBox *Box   `json:"bbox,omitempty"`
}

// OCRData is the payload of the ocr task.
type OCRData struct {
	Mode   string      `json:"mode"`
	Blocks []TextBlock `json:"blocks,omitempty"`
}

func (OCRData) TaskKind() TaskKind { return TaskOCR }

// LayoutElement is one structural element, section or reading-order entry.
type LayoutElement struct {
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
	Level int    `json:"level,omitempty"`
	Order int    `json:"order,omitempty"`
	Text  string `json:"text,omitempty"`
	BBox  *Box   `json:"bbox,omitempty"`
}

// LayoutData is the payload of the layout task.
type LayoutData struct {
	Mode     LayoutMode      `json:"mode"`
	Elements []LayoutElement `json:"elements"`
}

func (LayoutData) TaskKind() TaskKind { return TaskLayout }

// Table is one extracted table.
type Table struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
	BBox    *Box       `json:"bbox,omitempty"`
}

// TableData is the payload of the table task.
type TableData struct {
	Tables []Table `json:"tables"`
	CSV    string  `json:"csv,omitempty"`
}

func (TableData) TaskKind() TaskKind { return TaskTable }

// FieldValue is one extracted field with optional confidence and location.
type FieldValue struct {
	Value      any      `json:"value"`
	Confidence *float64 `json:"confidence,omitempty"`
	BBox       *Box     `json:"bbox,omitempty"`
}

// FieldData is the payload of the field_extraction task.
type FieldData struct {
	Preset           string                `json:"preset,omitempty"`
	Schema           Schema                `json:"schema"`
	Fields           map[string]FieldValue `json:"fields"`
	ValidationErrors map[string][]string   `json:"validation_errors,omitempty"`
	MissingRequired  []string              `json:"missing_required,omitempty"`
}

func (FieldData) TaskKind() TaskKind { return TaskFieldExtraction }

// Entity is one named entity.
type Entity struct {
	Text       string   `json:"text"`
	Type       string   `json:"type"`
	Confidence *float64 `json:"confidence,omitempty"`
	BBox       *Box     `json:"bbox,omitempty"`
}

// EntityData is the payload of the ner task.
type EntityData struct {
	Entities []Entity            `json:"entities"`
	ByType   map[string][]string `json:"by_type"`
}

func (EntityData) TaskKind() TaskKind { return TaskNER }

// FormField is a key/value pair on a form.
type FormField struct {
	Key      string `json:"key"`
	Value    any    `json:"value"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required,omitempty"`
	BBox     *Box   `json:"bbox,omitempty"`
}

// Checkbox is a checkbox or radio button on a form.
type Checkbox struct {
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
	Group   string `json:"group,omitempty"`
	BBox    *Box   `json:"bbox,omitempty"`
}

// Signature is a signature, stamp or seal on a form.
type Signature struct {
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
	Date string `json:"date,omitempty"`
	BBox *Box   `json:"bbox,omitempty"`
}

// FormData is the payload of the form task.
type FormData struct {
	Fields     []FormField `json:"fields"`
	Checkboxes []Checkbox  `json:"checkboxes,omitempty"`
	Signatures []Signature `json:"signatures,omitempty"`
}

func (FormData) TaskKind() TaskKind { return TaskForm }

// InvoiceData is the payload of the invoice task. Header, summary and payment
// keep whatever keys the document carried.
type InvoiceData struct {
	DocumentType string            `json:"document_type"`
	Header       map[string]any    `json:"header"`
	LineItems    []map[string]any  `json:"line_items"`
	Summary      map[string]any    `json:"summary"`
	Payment      map[string]any    `json:"payment"`
	Validation   *ValidationResult `json:"validation"`
}

func (InvoiceData) TaskKind() TaskKind { return TaskInvoice }

// Party is a contract party.
type Party struct {
	Name           string `json:"name"`
	Role           string `json:"role,omitempty"`
	Address        string `json:"address,omitempty"`
	Representative string `json:"representative,omitempty"`
}

// Clause is a summarized contract clause.
type Clause struct {
	Number  string `json:"number,omitempty"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Obligation is a duty of one contract party.
type Obligation struct {
	Party       string `json:"party"`
	Obligation  string `json:"obligation"`
	Deadline    string `json:"deadline,omitempty"`
	Consequence string `json:"consequence,omitempty"`
}

// ContractData is the payload of the contract task.
type ContractData struct {
	Parties     []Party        `json:"parties"`
	Dates       map[string]any `json:"dates"`
	Clauses     []Clause       `json:"clauses,omitempty"`
	Obligations []Obligation   `json:"obligations,omitempty"`
	KeyTerms    map[string]any `json:"key_terms"`
	DateErrors  []string       `json:"date_errors,omitempty"`
}

func (ContractData) TaskKind() TaskKind { return TaskContract }
