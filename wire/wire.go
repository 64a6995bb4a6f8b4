// Package wire reads values out of decoded JSON documents (map[string]any).
//
// The remote services return loosely typed documents: numbers arrive as
// float64, optional fields may be null, and nested objects are maps. The
// getters here never panic; a missing key, a null or a value of the wrong
// type yields the fallback.
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// String returns m[key] if it is a string, otherwise def.
func String(m map[string]any, key, def string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return def
}

// Int returns m[key] as an int. JSON numbers and numeric strings are
// converted; anything else yields def.
func Int(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return def
}

// Bool returns m[key] if it is a bool, otherwise def.
func Bool(m map[string]any, key string, def bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return def
}

// Map returns the nested object at key, or nil.
func Map(m map[string]any, key string) map[string]any {
	nested, _ := m[key].(map[string]any)
	return nested
}

// StringSlice returns the array at key with every non-null element
// formatted as a string. A single string is wrapped in a slice.
func StringSlice(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	case string:
		return []string{v}
	}
	return nil
}

// PathError reports where Path stopped.
type PathError struct {
	Path   []string
	Failed string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %s %s", strings.Join(e.Path, "."), e.Failed, e.Reason)
}

// Path walks nested objects along keys and returns the value at the end.
func Path(m map[string]any, keys ...string) (any, error) {
	var cur any = m
	for _, key := range keys {
		obj, ok := cur.(map[string]any)
		if !ok || obj == nil {
			return nil, &PathError{Path: keys, Failed: key, Reason: "is read from a non-object"}
		}
		if cur, ok = obj[key]; !ok {
			return nil, &PathError{Path: keys, Failed: key, Reason: "is missing"}
		}
	}
	return cur, nil
}
