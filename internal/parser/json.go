package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFenceRe  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
	objectSpan  = regexp.MustCompile(`(?s)\{.*\}`)
	arraySpan   = regexp.MustCompile(`(?s)\[.*\]`)
)

// ParseObject returns the first JSON object found in text, or nil.
//
// Candidates are tried in order: ```json fenced blocks, any fenced block,
// then the span from the first '{' to the last '}'.
func ParseObject(text string) map[string]any {
	for _, candidate := range candidates(text, objectSpan) {
		var out map[string]any
		if decodeSpan(candidate, '{', '}', &out) && out != nil {
			return out
		}
	}
	return nil
}

// ParseArray returns the first JSON array found in text, or nil.
func ParseArray(text string) []any {
	for _, candidate := range candidates(text, arraySpan) {
		var out []any
		if decodeSpan(candidate, '[', ']', &out) && out != nil {
			return out
		}
	}
	return nil
}

// ParseObjectArray is ParseArray restricted to the object entries of the array.
func ParseObjectArray(text string) []map[string]any {
	arr := ParseArray(text)
	if arr == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// candidates lists the spans to try, strategy by strategy.
func candidates(text string, span *regexp.Regexp) []string {
	var out []string
	for _, m := range jsonFenceRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	for _, m := range anyFenceRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	if m := span.FindString(text); m != "" {
		out = append(out, m)
	}
	return out
}

// decodeSpan trims the candidate, narrows it to the outermost delimiters when
// needed, and decodes it into dst.
func decodeSpan(candidate string, open, close byte, dst any) bool {
	s := strings.TrimSpace(candidate)
	if s == "" {
		return false
	}
	if s[0] != open {
		start := strings.IndexByte(s, open)
		end := strings.LastIndexByte(s, close)
		if start == -1 || end <= start {
			return false
		}
		s = s[start : end+1]
	}
	return json.Unmarshal([]byte(s), dst) == nil
}
