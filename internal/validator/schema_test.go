package validator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvision/internal/domain"
	"docvision/internal/validator"
)

func TestPreset_Known(t *testing.T) {
	for _, name := range []string{"invoice", "receipt", "id_card", "business_card"} {
		s, err := validator.Preset(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, s.Fields, name)
	}
	assert.Equal(t, []string{"business_card", "id_card", "invoice", "receipt"}, validator.PresetNames())
}

func TestPreset_ReturnsCopy(t *testing.T) {
	s, err := validator.Preset("invoice")
	require.NoError(t, err)
	s.Fields[0].Name = "mutated"

	again, err := validator.Preset("invoice")
	require.NoError(t, err)
	assert.Equal(t, "invoice_number", again.Fields[0].Name)
}

func TestPreset_Unknown(t *testing.T) {
	_, err := validator.Preset("passport")

	assert.True(t, errors.Is(err, domain.ErrUnknownPreset))
}

func TestLoadSchema_Valid(t *testing.T) {
	raw := []byte(`{"name": "po", "fields": [
		{"name": "po_number", "required": true},
		{"name": "contact", "type": "email", "description": "Buyer email"}
	]}`)

	s, err := validator.LoadSchema(raw)

	require.NoError(t, err)
	assert.Equal(t, "po", s.Name)
	assert.Equal(t, domain.FieldString, s.Fields[0].Type)
	assert.True(t, s.Fields[0].Required)
	assert.Equal(t, domain.FieldEmail, s.Fields[1].Type)
}

func TestLoadSchema_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":       `{`,
		"no fields":      `{"name": "x"}`,
		"empty fields":   `{"fields": []}`,
		"unknown type":   `{"fields": [{"name": "a", "type": "colour"}]}`,
		"missing name":   `{"fields": [{"type": "email"}]}`,
		"duplicate name": `{"fields": [{"name": "a"}, {"name": "a", "type": "date"}]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := validator.LoadSchema([]byte(raw))
			assert.True(t, errors.Is(err, domain.ErrInvalidSchema), "got %v", err)
		})
	}
}

func TestResolveSchema(t *testing.T) {
	s, err := validator.ResolveSchema("", nil)
	require.NoError(t, err)
	assert.Equal(t, "invoice", s.Name)

	s, err = validator.ResolveSchema("receipt", &domain.Schema{Fields: []domain.FieldSpec{{Name: "x"}}})
	require.NoError(t, err)
	assert.Equal(t, "receipt", s.Name)

	s, err = validator.ResolveSchema("", &domain.Schema{Fields: []domain.FieldSpec{{Name: "x"}}})
	require.NoError(t, err)
	assert.Equal(t, domain.FieldString, s.Fields[0].Type)

	_, err = validator.ResolveSchema("", &domain.Schema{Fields: []domain.FieldSpec{{Name: "x"}, {Name: "x"}}})
	assert.True(t, errors.Is(err, domain.ErrInvalidSchema))
}
