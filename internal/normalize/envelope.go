// Package normalize turns loosely shaped API payloads into domain values.
// Every entity has exactly one normalizer with a fixed source-field
// precedence; the first non-empty source wins.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Lookup walks nested objects along keys. It reports false when any step is
// missing, null, or not an object.
func Lookup(v any, keys ...string) (any, bool) {
	cur := v
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[k]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, cur != nil
}

// Object returns v as a JSON object.
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// FirstObject returns the first path that resolves to an object.
func FirstObject(root any, paths ...[]string) (map[string]any, bool) {
	for _, p := range paths {
		if v, ok := Lookup(root, p...); ok {
			if m, ok := v.(map[string]any); ok {
				return m, true
			}
		}
	}
	return nil, false
}

// FirstArray returns the first path that resolves to an array. An empty
// path denotes root itself. Nil is returned when no path matches.
func FirstArray(root any, paths ...[]string) []any {
	for _, p := range paths {
		if v, ok := Lookup(root, p...); ok {
			if arr, ok := v.([]any); ok {
				return arr
			}
		}
	}
	return nil
}

// DataOrRoot returns the "data" member of an object response, or the
// response itself when there is none.
func DataOrRoot(root any) any {
	if v, ok := Lookup(root, "data"); ok {
		return v
	}
	return root
}

// String renders a scalar member as text. Numbers are formatted without a
// trailing ".0"; objects, arrays, booleans and null yield "".
func String(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// Field returns m[key] rendered by String.
func Field(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	return String(m[key])
}

// FirstField returns the first non-empty Field among keys.
func FirstField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := Field(m, k); s != "" {
			return s
		}
	}
	return ""
}

// Number parses a JSON number or a numeric string.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Bool reports a JSON true. Strings "true" are accepted as well.
func Bool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	default:
		return false
	}
}

// imageURL resolves the display image of a product-like object: an explicit
// imageUrl, then the primary entry of images, then the first entry.
func imageURL(m map[string]any) string {
	if s := Field(m, "imageUrl"); s != "" {
		return s
	}
	images, _ := m["images"].([]any)
	for _, img := range images {
		if o, ok := img.(map[string]any); ok && Bool(o["isPrimary"]) {
			if s := Field(o, "url"); s != "" {
				return s
			}
		}
	}
	if len(images) > 0 {
		if o, ok := images[0].(map[string]any); ok {
			return Field(o, "url")
		}
		return String(images[0])
	}
	return ""
}
