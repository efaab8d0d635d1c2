package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvision/internal/handler"
	"docvision/internal/validator"
)

func newValidateHandler() *handler.ValidateHandler {
	return handler.NewValidateHandler(validator.NewFieldValidator(validator.DefaultRegistry()))
}

func postValidate(t *testing.T, path string, h gin.HandlerFunc, payload any) (int, map[string]any) {
	t.Helper()
	w := serve(http.MethodPost, path, h, jsonRequest(t, http.MethodPost, path, payload))
	resp := decodeResponse(t, w)
	data, _ := resp.Data.(map[string]any)
	return w.Code, data
}

func TestValidateHandler_Fields(t *testing.T) {
	h := newValidateHandler()

	code, data := postValidate(t, "/validate/fields", h.Fields, map[string]any{
		"preset": "business_card",
		"values": map[string]any{
			"name":  "Ada Lovelace",
			"email": "not-an-email",
			"phone": map[string]any{"value": "+1 555 0100", "confidence": 0.9},
		},
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, data["valid"])
	errs, ok := data["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "email")
	assert.NotContains(t, errs, "name")
	assert.NotContains(t, errs, "phone")
}

func TestValidateHandler_Fields_UnknownPreset(t *testing.T) {
	h := newValidateHandler()

	w := serve(http.MethodPost, "/validate/fields", h.Fields, jsonRequest(t, http.MethodPost, "/validate/fields", map[string]any{
		"preset": "passport",
		"values": map[string]any{"x": "y"},
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_PRESET", decodeResponse(t, w).Error.Code)
}

func TestValidateHandler_Totals(t *testing.T) {
	h := newValidateHandler()

	code, data := postValidate(t, "/validate/totals", h.Totals, map[string]any{
		"line_items": []map[string]any{
			{"quantity": 2, "unit_price": 10, "amount": 20},
			{"quantity": 1, "unit_price": 5, "amount": 5},
		},
		"summary": map[string]any{"subtotal": 25, "tax": 2.5, "total": 30},
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, data["is_valid"])
	errs, ok := data["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Total mismatch")
}

func TestValidateHandler_Totals_WithinTolerance(t *testing.T) {
	h := newValidateHandler()

	code, data := postValidate(t, "/validate/totals", h.Totals, map[string]any{
		"line_items": []map[string]any{{"amount": "$100.00"}},
		"summary":    map[string]any{"subtotal": "100", "tax": "8", "total": "108.5"},
		"tolerance":  1.0,
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, data["is_valid"])
}

func TestValidateHandler_Dates(t *testing.T) {
	h := newValidateHandler()

	code, data := postValidate(t, "/validate/dates", h.Dates, map[string]any{
		"dates": map[string]any{"invoice_date": "2024-03-10", "due_date": "2024-03-01"},
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, data["valid"])
	assert.Len(t, data["errors"], 1)
}

func TestValidateHandler_Dates_CustomRules(t *testing.T) {
	h := newValidateHandler()

	code, data := postValidate(t, "/validate/dates", h.Dates, map[string]any{
		"dates": map[string]any{"signed": "2024-01-01", "filed": "2024-02-01"},
		"rules": []map[string]string{{"before": "signed", "after": "filed"}},
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, []any{}, data["errors"])
}

func TestValidateHandler_Consistency(t *testing.T) {
	h := newValidateHandler()

	code, data := postValidate(t, "/validate/consistency", h.Consistency, map[string]any{
		"record": map[string]any{
			"vendor":   map[string]any{"name": "Acme"},
			"discount": 5,
		},
		"required":     []string{"vendor.name", "vendor.tax_id"},
		"dependencies": []map[string]any{{"if_field": "discount", "then_required": []string{"discount_reason"}}},
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, data["valid"])
	assert.Equal(t, []any{"vendor.tax_id"}, data["missing"])
	assert.Equal(t, []any{"discount_reason is required when discount is present"}, data["errors"])
}

func TestValidateHandler_References(t *testing.T) {
	h := newValidateHandler()

	code, data := postValidate(t, "/validate/references", h.References, map[string]any{
		"primary":   map[string]any{"po_number": "PO-1", "vendor": "ACME  Corp"},
		"secondary": map[string]any{"order": map[string]any{"number": "PO-2"}, "supplier": "acme corp"},
		"pairs": []map[string]string{
			{"primary": "po_number", "secondary": "order.number"},
			{"primary": "vendor", "secondary": "supplier"},
		},
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, data["valid"])
	errs, ok := data["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "po_number")
}

func TestValidateHandler_InvalidBody(t *testing.T) {
	h := newValidateHandler()

	w := serve(http.MethodPost, "/validate/references", h.References,
		jsonRequest(t, http.MethodPost, "/validate/references", map[string]any{"primary": map[string]any{}}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeResponse(t, w).Error.Code)
}
