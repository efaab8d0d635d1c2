package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"docvision/internal/domain"
)

// DefaultPreset is used when neither a preset nor a custom schema is requested.
const DefaultPreset = "invoice"

var presets = map[string]domain.Schema{
	"invoice": {
		Name: "invoice",
		Fields: []domain.FieldSpec{
			{Name: "invoice_number", Type: domain.FieldString, Required: true, Description: "Invoice number or ID"},
			{Name: "date", Type: domain.FieldDate, Required: true, Description: "Invoice date"},
			{Name: "due_date", Type: domain.FieldDate, Description: "Payment due date"},
			{Name: "vendor_name", Type: domain.FieldString, Required: true, Description: "Vendor/seller name"},
			{Name: "vendor_address", Type: domain.FieldString, Description: "Vendor address"},
			{Name: "customer_name", Type: domain.FieldString, Description: "Customer/buyer name"},
			{Name: "subtotal", Type: domain.FieldCurrency, Description: "Subtotal amount"},
			{Name: "tax", Type: domain.FieldCurrency, Description: "Tax amount"},
			{Name: "total", Type: domain.FieldCurrency, Required: true, Description: "Total amount"},
		},
	},
	"receipt": {
		Name: "receipt",
		Fields: []domain.FieldSpec{
			{Name: "store_name", Type: domain.FieldString, Required: true, Description: "Store/merchant name"},
			{Name: "date", Type: domain.FieldDate, Description: "Transaction date"},
			{Name: "items", Type: domain.FieldArray, Description: "List of purchased items"},
			{Name: "subtotal", Type: domain.FieldCurrency, Description: "Subtotal"},
			{Name: "tax", Type: domain.FieldCurrency, Description: "Tax amount"},
			{Name: "total", Type: domain.FieldCurrency, Required: true, Description: "Total amount"},
			{Name: "payment_method", Type: domain.FieldString, Description: "Payment method used"},
		},
	},
	"id_card": {
		Name: "id_card",
		Fields: []domain.FieldSpec{
			{Name: "full_name", Type: domain.FieldString, Required: true, Description: "Full name"},
			{Name: "date_of_birth", Type: domain.FieldDate, Description: "Date of birth"},
			{Name: "id_number", Type: domain.FieldString, Required: true, Description: "ID/document number"},
			{Name: "expiry_date", Type: domain.FieldDate, Description: "Expiration date"},
			{Name: "address", Type: domain.FieldString, Description: "Address"},
			{Name: "nationality", Type: domain.FieldString, Description: "Nationality/country"},
		},
	},
	"business_card": {
		Name: "business_card",
		Fields: []domain.FieldSpec{
			{Name: "name", Type: domain.FieldString, Required: true, Description: "Person's name"},
			{Name: "title", Type: domain.FieldString, Description: "Job title"},
			{Name: "company", Type: domain.FieldString, Description: "Company name"},
			{Name: "email", Type: domain.FieldEmail, Description: "Email address"},
			{Name: "phone", Type: domain.FieldPhone, Description: "Phone number"},
			{Name: "address", Type: domain.FieldString, Description: "Address"},
			{Name: "website", Type: domain.FieldURL, Description: "Website URL"},
		},
	},
}

// Preset returns a copy of the named preset schema.
func Preset(name string) (*domain.Schema, error) {
	s, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownPreset, name)
	}
	cp := domain.Schema{Name: s.Name, Fields: append([]domain.FieldSpec(nil), s.Fields...)}
	return &cp, nil
}

// PresetNames lists the available presets, sorted.
func PresetNames() []string {
	out := make([]string, 0, len(presets))
	for name := range presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// schemaDocument constrains custom schema documents.
const schemaDocument = `{
  "type": "object",
  "required": ["fields"],
  "properties": {
    "name": {"type": "string"},
    "fields": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "type": {"enum": %s},
          "required": {"type": "boolean"},
          "description": {"type": "string"}
        }
      }
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func documentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		types := make([]string, 0, len(domain.KnownFieldTypes))
		for t := range domain.KnownFieldTypes {
			types = append(types, string(t))
		}
		sort.Strings(types)
		enum, _ := json.Marshal(types)

		compiler := jsonschema.NewCompiler()
		doc := fmt.Sprintf(schemaDocument, enum)
		if err := compiler.AddResource("schema.json", strings.NewReader(doc)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("schema.json")
	})
	return compiledSchema, compileErr
}

// LoadSchema parses and validates a custom schema document. Field types default
// to string, and field names must be unique.
func LoadSchema(raw []byte) (*domain.Schema, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSchema, err)
	}
	compiled, err := documentSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSchema, err)
	}

	var s domain.Schema
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSchema, err)
	}
	if err := CheckSchema(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CheckSchema enforces unique names and known types on an in-memory schema,
// filling empty types with string.
func CheckSchema(s *domain.Schema) error {
	if s == nil || len(s.Fields) == 0 {
		return fmt.Errorf("%w: schema has no fields", domain.ErrInvalidSchema)
	}
	seen := make(map[string]bool, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("%w: field %d has no name", domain.ErrInvalidSchema, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field name %q", domain.ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = true
		if f.Type == "" {
			f.Type = domain.FieldString
		}
		if !domain.KnownFieldTypes[f.Type] {
			return fmt.Errorf("%w: field %q has unknown type %q", domain.ErrInvalidSchema, f.Name, f.Type)
		}
	}
	return nil
}

// ResolveSchema picks the schema for a request: a named preset wins, then a
// custom schema, then the default preset.
func ResolveSchema(preset string, custom *domain.Schema) (*domain.Schema, error) {
	if preset != "" {
		return Preset(preset)
	}
	if custom != nil {
		cp := domain.Schema{Name: custom.Name, Fields: append([]domain.FieldSpec(nil), custom.Fields...)}
		if err := CheckSchema(&cp); err != nil {
			return nil, err
		}
		return &cp, nil
	}
	return Preset(DefaultPreset)
}
