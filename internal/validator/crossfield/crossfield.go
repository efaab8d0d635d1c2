// Package crossfield checks relationships between fields of a record and
// between records: date ordering, arithmetic reconciliation, required fields,
// conditional dependencies and cross-record matching. All checks are pure.
package crossfield

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"docvision/internal/domain"
	"docvision/internal/validator"
)

// DefaultTolerance is the absolute slack allowed when reconciling money amounts.
const DefaultTolerance = 0.01

var (
	moneyStrip = regexp.MustCompile(`[$€£¥₹,\s]`)
	spaceRun   = regexp.MustCompile(`\s+`)
)

// DateRule requires the Before field to not be later than the After field.
type DateRule struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// DefaultDateRules covers the common start/end style pairs.
var DefaultDateRules = []DateRule{
	{Before: "start_date", After: "end_date"},
	{Before: "effective_date", After: "termination_date"},
	{Before: "invoice_date", After: "due_date"},
	{Before: "order_date", After: "delivery_date"},
}

// ValidateDates returns one error per rule whose dates are out of order. Dates
// that are missing or unparseable are skipped. A nil rule list selects DefaultDateRules.
func ValidateDates(dates map[string]any, rules []DateRule) []string {
	if rules == nil {
		rules = DefaultDateRules
	}
	errs := []string{}
	for _, r := range rules {
		beforeRaw, ok1 := dates[r.Before].(string)
		afterRaw, ok2 := dates[r.After].(string)
		if !ok1 || !ok2 {
			continue
		}
		before, ok1 := validator.ParseDate(beforeRaw)
		after, ok2 := validator.ParseDate(afterRaw)
		if !ok1 || !ok2 {
			continue
		}
		if before.After(after) {
			errs = append(errs, fmt.Sprintf("%s (%s) should be before %s (%s)", r.Before, beforeRaw, r.After, afterRaw))
		}
	}
	return errs
}

// ValidateTotals reconciles line items against the reported summary.
//
// The calculated subtotal sums each item's amount, falling back to
// quantity*unit_price when the amount is absent or zero. The expected total is
// base + tax - discount, where base is the reported subtotal when present and
// the calculated one otherwise. Subtotal and total mismatches are errors; a
// line whose quantity*unit_price disagrees with its amount is a warning.
func ValidateTotals(lineItems []map[string]any, summary map[string]any, tolerance float64) *domain.ValidationResult {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	res := domain.NewValidationResult()

	calculatedSubtotal := 0.0
	for i, item := range lineItems {
		amount, hasAmount := number(item["amount"])
		qty, hasQty := number(item["quantity"])
		if !hasQty {
			qty = 1
		}
		priceRaw, ok := item["unit_price"]
		if !ok {
			priceRaw = item["unitPrice"]
		}
		price, hasPrice := number(priceRaw)

		if amount > 0 {
			calculatedSubtotal += amount
		} else if qty > 0 && price > 0 {
			calculatedSubtotal += qty * price
		}

		if hasAmount && hasQty && hasPrice && amount > 0 && qty > 0 && price > 0 {
			expected := qty * price
			if math.Abs(expected-amount) > tolerance {
				res.AddWarning(fmt.Sprintf("Line %d: quantity * unit_price (%.2f) != amount (%.2f)", i+1, expected, amount))
			}
		}
	}

	reportedSubtotal, _ := number(summary["subtotal"])
	tax, _ := number(summary["tax"])
	discount, _ := number(summary["discount"])
	total, _ := number(summary["total"])

	if calculatedSubtotal > 0 && reportedSubtotal > 0 && math.Abs(calculatedSubtotal-reportedSubtotal) > tolerance {
		res.AddError(fmt.Sprintf("Subtotal mismatch: calculated %.2f, reported %.2f", calculatedSubtotal, reportedSubtotal))
	}

	base := calculatedSubtotal
	if reportedSubtotal > 0 {
		base = reportedSubtotal
	}
	expectedTotal := base + tax - discount

	if total > 0 && math.Abs(expectedTotal-total) > tolerance {
		res.AddError(fmt.Sprintf(
			"Total mismatch: subtotal (%.2f) + tax (%.2f) - discount (%.2f) = %.2f, but total is %.2f",
			base, tax, discount, expectedTotal, total,
		))
	}

	res.Calculated = map[string]float64{
		"subtotal":       calculatedSubtotal,
		"expected_total": expectedTotal,
	}
	return res
}

// MissingFields returns the dot-separated paths that are absent, empty strings
// or empty lists in record.
func MissingFields(record map[string]any, paths []string) []string {
	missing := []string{}
	for _, p := range paths {
		if isEmpty(Lookup(record, p)) {
			missing = append(missing, p)
		}
	}
	return missing
}

// Dependency requires ThenRequired fields whenever IfField carries a value.
type Dependency struct {
	IfField      string   `json:"if_field"`
	ThenRequired []string `json:"then_required"`
}

// ValidateDependencies returns one error per missing dependent field.
func ValidateDependencies(record map[string]any, deps []Dependency) []string {
	errs := []string{}
	for _, d := range deps {
		if !truthy(Lookup(record, d.IfField)) {
			continue
		}
		for _, req := range d.ThenRequired {
			if isEmpty(Lookup(record, req)) {
				errs = append(errs, fmt.Sprintf("%s is required when %s is present", req, d.IfField))
			}
		}
	}
	return errs
}

// FieldPair links a field of the primary record to one of the secondary record.
type FieldPair struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// ValidateReferences compares paired fields across two records after
// normalizing case and whitespace. Pairs missing a value on either side are skipped.
func ValidateReferences(primary, secondary map[string]any, pairs []FieldPair) []string {
	errs := []string{}
	for _, p := range pairs {
		pv := Lookup(primary, p.Primary)
		sv := Lookup(secondary, p.Secondary)
		if !truthy(pv) || !truthy(sv) {
			continue
		}
		if normalize(pv) != normalize(sv) {
			errs = append(errs, fmt.Sprintf("Mismatch: %s='%v' vs %s='%v'", p.Primary, display(pv), p.Secondary, display(sv)))
		}
	}
	return errs
}

// Lookup resolves a dot-separated path through nested maps.
func Lookup(record map[string]any, path string) any {
	var cur any = record
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil
		}
	}
	return cur
}

// Number converts amounts such as 12, "12.50" or "$1,200" to float64. The
// boolean is false for nil and unparseable values.
func Number(v any) (float64, bool) {
	return number(v)
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(moneyStrip.ReplaceAllString(t, ""), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

// truthy mirrors "has a meaningful value": not nil, empty, zero or false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() > 0
	}
	return true
}

func display(v any) string {
	return validator.FieldString(v)
}

func normalize(v any) string {
	s := strings.ToLower(strings.TrimSpace(display(v)))
	return spaceRun.ReplaceAllString(s, " ")
}
