package validator

import (
	"fmt"
	"strconv"

	"docvision/internal/domain"
)

// FieldValidator applies type rules to individual values and to whole
// schema-shaped records. It holds no mutable state and is safe for concurrent use.
type FieldValidator struct {
	registry *Registry
}

// NewFieldValidator creates a FieldValidator. A nil registry selects the built-in rules.
func NewFieldValidator(registry *Registry) *FieldValidator {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &FieldValidator{registry: registry}
}

// ValidateField checks value against the rule for fieldType. Types without a
// rule (string, array, anything unrecognized) are always valid.
func (v *FieldValidator) ValidateField(value string, fieldType domain.FieldType) (bool, string) {
	rule := v.registry.Get(fieldType)
	if rule == nil {
		return true, ""
	}
	return rule.Check(value)
}

// ValidateFields checks each schema field present in values. A value may be
// wrapped as {value, confidence, bbox}; the inner value is checked. Empty values
// are skipped. Only fields with errors appear in the result.
func (v *FieldValidator) ValidateFields(values map[string]any, schema *domain.Schema) map[string][]string {
	errs := make(map[string][]string)
	if schema == nil {
		return errs
	}
	for _, f := range schema.Fields {
		raw, ok := values[f.Name]
		if !ok {
			continue
		}
		s := FieldString(raw)
		if s == "" {
			continue
		}
		if valid, msg := v.ValidateField(s, f.Type); !valid {
			errs[f.Name] = append(errs[f.Name], msg)
		}
	}
	return errs
}

// Types lists the field types that have a rule.
func (v *FieldValidator) Types() []domain.FieldType {
	return v.registry.Types()
}

// FieldString unwraps a {value,...} wrapper and renders the value as text.
// nil and empty containers render as "".
func FieldString(raw any) string {
	switch t := raw.(type) {
	case domain.FieldValue:
		return FieldString(t.Value)
	case *domain.FieldValue:
		if t == nil {
			return ""
		}
		return FieldString(t.Value)
	case map[string]any:
		inner, ok := t["value"]
		if !ok {
			return ""
		}
		return FieldString(inner)
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		if len(t) == 0 {
			return ""
		}
	}
	return fmt.Sprint(raw)
}
