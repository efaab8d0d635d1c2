package parser

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"docvision/internal/domain"
)

var (
	bracketBoxRe = regexp.MustCompile(`\[(\d+),\s*(\d+),\s*(\d+),\s*(\d+)\]`)
	parenBoxRe   = regexp.MustCompile(`\((\d+),\s*(\d+),\s*(\d+),\s*(\d+)\)`)
	bareBoxRe    = regexp.MustCompile(`(\d+),\s*(\d+),\s*(\d+),\s*(\d+)`)
	labeledBoxRe = regexp.MustCompile(`"?([^":\[\]]+)"?\s*:\s*[\[\(](\d+),\s*(\d+),\s*(\d+),\s*(\d+)[\]\)]`)
)

var boxKeys = [4]string{"x1", "y1", "x2", "y2"}

// ParseBoundingBox reads a single box written as a JSON object with x1..y2
// keys, as [x1,y1,x2,y2], or as (x1,y1,x2,y2), alone or embedded in prose.
// It returns nil when none match.
func ParseBoundingBox(text string) *domain.Box {
	var decoded any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &decoded); err == nil {
		if b, ok := BoxFromValue(decoded); ok {
			return &b
		}
	}
	if obj := ParseObject(text); obj != nil {
		if b, ok := BoxFromValue(obj); ok {
			return &b
		}
	}
	for _, re := range []*regexp.Regexp{bracketBoxRe, parenBoxRe, bareBoxRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			b, ok := boxFromDigits(m[1:5])
			if ok {
				return &b
			}
		}
	}
	return nil
}

// BoxFromValue converts a decoded JSON value (an object with x1..y2 keys or a
// four-element list) into a normalized box.
func BoxFromValue(v any) (domain.Box, bool) {
	switch t := v.(type) {
	case map[string]any:
		var c [4]int
		for i, k := range boxKeys {
			raw, ok := t[k]
			if !ok {
				return domain.Box{}, false
			}
			n, ok := toInt(raw)
			if !ok {
				return domain.Box{}, false
			}
			c[i] = n
		}
		return domain.NewBox(c[0], c[1], c[2], c[3]), true
	case []any:
		if len(t) != 4 {
			return domain.Box{}, false
		}
		var c [4]int
		for i, raw := range t {
			n, ok := toInt(raw)
			if !ok {
				return domain.Box{}, false
			}
			c[i] = n
		}
		return domain.NewBox(c[0], c[1], c[2], c[3]), true
	}
	return domain.Box{}, false
}

// BoxPtr is BoxFromValue returning nil when v is not a box.
func BoxPtr(v any) *domain.Box {
	if b, ok := BoxFromValue(v); ok {
		return &b
	}
	return nil
}

// ParseLabeledBoxes recovers a list of labeled boxes. Structured output (a
// single box-like object, or an array of entries carrying a bbox) is tried
// first; otherwise lines like `"label": [x1, y1, x2, y2]` are scanned.
func ParseLabeledBoxes(text string) []domain.LabeledBox {
	if obj := ParseObject(text); obj != nil {
		if lb, ok := labeledBoxFromMap(obj); ok {
			return []domain.LabeledBox{lb}
		}
	}

	if entries := ParseObjectArray(text); len(entries) > 0 {
		out := make([]domain.LabeledBox, 0, len(entries))
		for _, e := range entries {
			if lb, ok := labeledBoxFromMap(e); ok {
				out = append(out, lb)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	matches := labeledBoxRe.FindAllStringSubmatch(text, -1)
	out := make([]domain.LabeledBox, 0, len(matches))
	for _, m := range matches {
		b, ok := boxFromDigits(m[2:6])
		if !ok {
			continue
		}
		label := strings.TrimSpace(m[1])
		out = append(out, domain.LabeledBox{Label: label, BBox: b.WithLabel(label)})
	}
	return out
}

func labeledBoxFromMap(m map[string]any) (domain.LabeledBox, bool) {
	var (
		b  domain.Box
		ok bool
	)
	for _, key := range []string{"bbox", "bbox_2d", "box"} {
		if raw, present := m[key]; present {
			if b, ok = BoxFromValue(raw); ok {
				break
			}
		}
	}
	if !ok {
		if b, ok = BoxFromValue(m); !ok {
			return domain.LabeledBox{}, false
		}
	}

	label := stringValue(m["label"])
	if label == "" {
		label = stringValue(m["text"])
	}

	attrs := make(map[string]any)
	for k, v := range m {
		switch k {
		case "bbox", "bbox_2d", "box", "label", "x1", "y1", "x2", "y2":
			continue
		}
		attrs[k] = v
	}
	if len(attrs) == 0 {
		attrs = nil
	}
	return domain.LabeledBox{Label: label, BBox: b.WithLabel(label), Attrs: attrs}, true
}

func boxFromDigits(groups []string) (domain.Box, bool) {
	var c [4]int
	for i, g := range groups {
		n, err := strconv.Atoi(g)
		if err != nil {
			return domain.Box{}, false
		}
		c[i] = n
	}
	return domain.NewBox(c[0], c[1], c[2], c[3]), true
}

// toInt coerces JSON numbers and numeric strings to int, truncating fractions.
func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
