// internal/advisor/normalize/coerce.go
package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	listDelimiters = regexp.MustCompile(`[，,、；;\n]`)
	numberPattern  = regexp.MustCompile(`-?\d+(\.\d+)?`)
)

func asObject(v interface{}) (map[string]interface{}, bool) {
	m, isMap := v.(map[string]interface{})
	return m, isMap && m != nil
}

// firstString returns the first key holding a string value, trimmed.
func firstString(obj map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, isStr := obj[k].(string); isStr {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstPresent returns the first key whose value is not null.
func firstPresent(obj map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, exists := obj[k]; exists && v != nil {
			return v, true
		}
	}
	return nil, false
}

// stringList accepts a list of strings or a delimited string.
func stringList(v interface{}) []string {
	out := []string{}
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if s, isStr := item.(string); isStr {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range listDelimiters.Split(t, -1) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// toNumber coerces a JSON number or a numeric string such as "1,200 元/月".
func toNumber(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		match := numberPattern.FindString(strings.ReplaceAll(t, ",", ""))
		if match == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
