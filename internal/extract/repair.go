// Package extract recovers a JSON object from raw model output. The text is
// untrusted: models wrap JSON in markdown fences, surround it with prose,
// and put literal line breaks inside string values, so recovery runs a
// sequence of progressively more permissive attempts instead of a single
// strict parse.
package extract

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONObject reports raw text from which no JSON object could be
// recovered by any repair attempt.
var ErrNoJSONObject = errors.New("no JSON object found in model output")

// Repair extracts a single JSON object from raw model output. Attempts run
// cheapest-first: parse as-is after stripping fences, re-parse with literal
// control characters escaped inside strings, then slice from the first "{"
// to the last "}" and retry both. The first success wins; anything that is
// not a JSON object fails.
func Repair(raw string) (map[string]any, error) {
	cleaned := stripFences(raw)

	if obj, ok := tryParse(cleaned); ok {
		return obj, nil
	}
	if obj, ok := tryParse(escapeControlChars(cleaned)); ok {
		return obj, nil
	}

	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start < 0 || end <= start {
		return nil, ErrNoJSONObject
	}
	sliced := cleaned[start : end+1]

	if obj, ok := tryParse(sliced); ok {
		return obj, nil
	}
	if obj, ok := tryParse(escapeControlChars(sliced)); ok {
		return obj, nil
	}

	return nil, ErrNoJSONObject
}

func tryParse(s string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// stripFences removes a leading markdown code fence with its optional
// language tag, the matching closing fence, and surrounding whitespace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = s[3:]
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

// escapeControlChars rewrites literal newlines, carriage returns, and tabs
// inside JSON string values into their escaped forms. A multi-line step
// description emitted as raw line breaks is the most common reason a
// near-valid object fails the strict parser.
func escapeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}
		if escaped {
			escaped = false
			b.WriteByte(c)
			continue
		}
		switch c {
		case '\\':
			escaped = true
			b.WriteByte(c)
		case '"':
			inString = false
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
