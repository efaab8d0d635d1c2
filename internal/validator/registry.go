package validator

import (
	"sort"

	"docvision/internal/domain"
)

// Registry maps field types to their rules.
type Registry struct {
	rules map[domain.FieldType]Rule
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[domain.FieldType]Rule)}
}

// DefaultRegistry returns a registry holding every built-in rule.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range BuiltinRules() {
		r.Register(rule)
	}
	return r
}

// Register adds a rule, replacing any rule for the same type.
func (r *Registry) Register(rule Rule) {
	r.rules[rule.FieldType()] = rule
}

// Get returns the rule for a field type, or nil if not found.
func (r *Registry) Get(t domain.FieldType) Rule {
	return r.rules[t]
}

// Types returns the registered field types, sorted.
func (r *Registry) Types() []domain.FieldType {
	out := make([]domain.FieldType, 0, len(r.rules))
	for t := range r.rules {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
