package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docvision/internal/validator"
	"docvision/internal/validator/crossfield"
)

// ValidateHandler exposes the field and cross-field validators.
type ValidateHandler struct {
	fields *validator.FieldValidator
}

// NewValidateHandler creates a new ValidateHandler.
func NewValidateHandler(fields *validator.FieldValidator) *ValidateHandler {
	return &ValidateHandler{fields: fields}
}

func bindValidation(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return false
	}
	return true
}

// Fields handles POST /api/v1/validate/fields
// @Summary Validate field values
// @Description Check values against the types of a schema or preset
// @Tags validate
// @Accept json
// @Produce json
// @Param body body ValidateFieldsRequest true "Values and schema"
// @Success 200 {object} Response{data=ValidateFieldsResponse} "Per-field errors"
// @Failure 400 {object} ErrorResponseBody "Invalid schema"
// @Router /validate/fields [post]
func (h *ValidateHandler) Fields(c *gin.Context) {
	var req ValidateFieldsRequest
	if !bindValidation(c, &req) {
		return
	}
	schema, err := validator.ResolveSchema(req.Preset, req.Schema)
	if err != nil {
		HandleError(c, err)
		return
	}
	errs := h.fields.ValidateFields(req.Values, schema)
	RespondOK(c, ValidateFieldsResponse{Valid: len(errs) == 0, Errors: errs})
}

// Totals handles POST /api/v1/validate/totals
// @Summary Reconcile totals
// @Description Check line item arithmetic and subtotal/tax/total reconciliation
// @Tags validate
// @Accept json
// @Produce json
// @Param body body ValidateTotalsRequest true "Line items and summary"
// @Success 200 {object} Response{data=domain.ValidationResult} "Validation result"
// @Router /validate/totals [post]
func (h *ValidateHandler) Totals(c *gin.Context) {
	var req ValidateTotalsRequest
	if !bindValidation(c, &req) {
		return
	}
	tolerance := crossfield.DefaultTolerance
	if req.Tolerance != nil && *req.Tolerance >= 0 {
		tolerance = *req.Tolerance
	}
	RespondOK(c, crossfield.ValidateTotals(req.LineItems, req.Summary, tolerance))
}

// Dates handles POST /api/v1/validate/dates
// @Summary Check date ordering
// @Tags validate
// @Accept json
// @Produce json
// @Param body body ValidateDatesRequest true "Dates and optional rules"
// @Success 200 {object} Response{data=RuleErrorsResponse} "Ordering errors"
// @Router /validate/dates [post]
func (h *ValidateHandler) Dates(c *gin.Context) {
	var req ValidateDatesRequest
	if !bindValidation(c, &req) {
		return
	}
	RespondOK(c, newRuleErrors(crossfield.ValidateDates(req.Dates, req.Rules)))
}

// Consistency handles POST /api/v1/validate/consistency
// @Summary Check required fields and dependencies
// @Tags validate
// @Accept json
// @Produce json
// @Param body body ValidateConsistencyRequest true "Record, required paths and dependencies"
// @Success 200 {object} Response{data=ConsistencyResponse} "Missing fields and dependency errors"
// @Router /validate/consistency [post]
func (h *ValidateHandler) Consistency(c *gin.Context) {
	var req ValidateConsistencyRequest
	if !bindValidation(c, &req) {
		return
	}
	missing := crossfield.MissingFields(req.Record, req.Required)
	errs := crossfield.ValidateDependencies(req.Record, req.Dependencies)
	RespondOK(c, ConsistencyResponse{
		Valid:   len(missing) == 0 && len(errs) == 0,
		Missing: missing,
		Errors:  errs,
	})
}

// References handles POST /api/v1/validate/references
// @Summary Compare two records
// @Tags validate
// @Accept json
// @Produce json
// @Param body body ValidateReferencesRequest true "Records and field pairs"
// @Success 200 {object} Response{data=RuleErrorsResponse} "Mismatches"
// @Router /validate/references [post]
func (h *ValidateHandler) References(c *gin.Context) {
	var req ValidateReferencesRequest
	if !bindValidation(c, &req) {
		return
	}
	RespondOK(c, newRuleErrors(crossfield.ValidateReferences(req.Primary, req.Secondary, req.Pairs)))
}

func newRuleErrors(errs []string) RuleErrorsResponse {
	if errs == nil {
		errs = []string{}
	}
	return RuleErrorsResponse{Valid: len(errs) == 0, Errors: errs}
}
