package validator

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"docvision/internal/domain"
)

var (
	emailPattern     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneSeparators  = regexp.MustCompile(`[\s\-.()]`)
	phonePattern     = regexp.MustCompile(`^\+?\d{7,15}$`)
	currencyStrip    = regexp.MustCompile(`[$€£¥₹\s,]`)
	urlPattern       = regexp.MustCompile(`(?i)^https?://[^\s/$.?#].[^\s]*$`)
	integerSeparator = regexp.MustCompile(`[,\s]`)
)

// BuiltinRules returns the rule for every checked field type.
func BuiltinRules() []Rule {
	return []Rule{
		&fieldRule{fieldType: domain.FieldEmail, check: checkEmail},
		&fieldRule{fieldType: domain.FieldPhone, check: checkPhone},
		&fieldRule{fieldType: domain.FieldDate, check: checkDate},
		&fieldRule{fieldType: domain.FieldCurrency, check: checkCurrency},
		&fieldRule{fieldType: domain.FieldURL, check: checkURL},
		&fieldRule{fieldType: domain.FieldPercentage, check: checkPercentage},
		&fieldRule{fieldType: domain.FieldInteger, check: checkInteger},
	}
}

func checkEmail(v string) (bool, string) {
	if emailPattern.MatchString(v) {
		return true, ""
	}
	return false, fmt.Sprintf("Invalid email format: %s", v)
}

func checkPhone(v string) (bool, string) {
	cleaned := phoneSeparators.ReplaceAllString(v, "")
	if phonePattern.MatchString(cleaned) {
		return true, ""
	}
	return false, fmt.Sprintf("Invalid phone format: %s", v)
}

func checkDate(v string) (bool, string) {
	if _, ok := ParseDate(v); ok {
		return true, ""
	}
	return false, fmt.Sprintf("Invalid date format: %s", v)
}

func checkCurrency(v string) (bool, string) {
	cleaned := currencyStrip.ReplaceAllString(v, "")
	if _, err := parseDecimal(cleaned); err == nil {
		return true, ""
	}
	return false, fmt.Sprintf("Invalid currency format: %s", v)
}

func checkURL(v string) (bool, string) {
	if urlPattern.MatchString(v) {
		return true, ""
	}
	return false, fmt.Sprintf("Invalid URL format: %s", v)
}

func checkPercentage(v string) (bool, string) {
	cleaned := strings.TrimRight(strings.TrimSpace(v), "%")
	n, err := parseDecimal(strings.TrimSpace(cleaned))
	if err != nil {
		return false, fmt.Sprintf("Invalid percentage format: %s", v)
	}
	if !(n >= 0 && n <= 100) {
		return false, fmt.Sprintf("Percentage out of range: %s", v)
	}
	return true, ""
}

func checkInteger(v string) (bool, string) {
	cleaned := integerSeparator.ReplaceAllString(v, "")
	if _, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return true, ""
	}
	return false, fmt.Sprintf("Invalid integer format: %s", v)
}

var errNotDecimal = errors.New("not a decimal number")

// parseDecimal is strconv.ParseFloat restricted to finite base-10 input.
func parseDecimal(s string) (float64, error) {
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, errNotDecimal
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errNotDecimal
	}
	return n, nil
}
