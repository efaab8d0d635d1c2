package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	quotedPairRe = regexp.MustCompile(`"([^"]+)"\s*:\s*"([^"]*)"`)
	plainPairRe  = regexp.MustCompile(`([^:\n=]+)\s*[:=]\s*([^\n]+)`)
)

// ParseKeyValues extracts key/value pairs from a JSON object, or failing that
// from `"key": "value"`, `key: value` and `key = value` lines. The first
// occurrence of a key wins.
func ParseKeyValues(text string) map[string]string {
	if obj := ParseObject(text); obj != nil {
		out := make(map[string]string, len(obj))
		for k, v := range obj {
			out[k] = flatString(v)
		}
		return out
	}

	out := make(map[string]string)
	for _, re := range []*regexp.Regexp{quotedPairRe, plainPairRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			key := strings.Trim(strings.TrimSpace(m[1]), `"`)
			val := strings.Trim(strings.TrimSpace(m[2]), `"`)
			if key == "" {
				continue
			}
			if _, seen := out[key]; !seen {
				out[key] = val
			}
		}
	}
	return out
}

func flatString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
	if s := stringValue(v); s != "" {
		return s
	}
	return fmt.Sprint(v)
}
