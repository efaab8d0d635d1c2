package validator

import "docvision/internal/domain"

// Rule checks a single string value of one field type.
type Rule interface {
	FieldType() domain.FieldType
	Check(value string) (bool, string)
}

// fieldRule adapts a check function to Rule.
type fieldRule struct {
	fieldType domain.FieldType
	check     func(string) (bool, string)
}

func (r *fieldRule) FieldType() domain.FieldType      { return r.fieldType }
func (r *fieldRule) Check(value string) (bool, string) { return r.check(value) }
