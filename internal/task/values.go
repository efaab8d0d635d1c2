package task

import (
	"encoding/json"
	"strconv"
	"strings"

	"docvision/internal/domain"
	"docvision/internal/parser"
	"docvision/internal/validator/crossfield"
)

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func asInt(v any) int {
	f, ok := crossfield.Number(v)
	if !ok {
		return 0
	}
	return int(f)
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "checked", "x", "1":
			return true
		}
	case float64:
		return t != 0
	}
	return false
}

// asConfidence reads a 0..1 score. Values outside the range are dropped.
func asConfidence(v any) *float64 {
	f, ok := crossfield.Number(v)
	if !ok || f < 0 || f > 1 {
		return nil
	}
	return &f
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asMapList(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return []map[string]any{}
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func asStringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, asString(e))
	}
	return out
}

// labeledBox returns the entry's box labeled with label, or nil.
func labeledBox(entry map[string]any, label string) *domain.Box {
	b := parser.BoxPtr(entry["bbox"])
	if b == nil {
		return nil
	}
	out := b.WithLabel(label)
	return &out
}

func mean(scores []float64) *float64 {
	if len(scores) == 0 {
		return nil
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	m := sum / float64(len(scores))
	return &m
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
