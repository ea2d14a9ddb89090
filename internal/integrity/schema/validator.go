// Package schema provides declarative structural validation of save payloads.
package schema

import (
	"encoding/json"
	"fmt"
)

// Options controls a validation pass.
type Options struct {
	// StrictMode makes any warning (deprecated-field usage) invalidate
	// the result, not just errors.
	StrictMode bool

	// DeepValidation additionally walks array fields element by
	// element, checking each element's identity key.
	DeepValidation bool
}

// Result is the outcome of one validation pass. Produced fresh per
// call; callers must not mutate it.
type Result struct {
	IsValid         bool
	Errors          []string
	Warnings        []string
	CorruptedFields []string
}

// Validate walks the descriptor's rules against a candidate document.
//
// It is pure and nil-safe: a nil or partially-formed document reports
// missing fields, it never panics. Every field with an error finding is
// added to CorruptedFields exactly once so the recovery engine can
// target it.
func Validate(doc map[string]any, desc *Descriptor, opts Options) Result {
	r := Result{}
	corrupted := make(map[string]bool)

	markCorrupted := func(path string) {
		if !corrupted[path] {
			corrupted[path] = true
			r.CorruptedFields = append(r.CorruptedFields, path)
		}
	}

	for _, rule := range desc.Rules() {
		value, found := Resolve(doc, rule.Path)

		if !found {
			if rule.Required {
				r.Errors = append(r.Errors, fmt.Sprintf("missing required field: %s", rule.Path))
				markCorrupted(rule.Path)
			}
			continue
		}

		if rule.Deprecated {
			r.Warnings = append(r.Warnings, fmt.Sprintf("deprecated field present: %s", rule.Path))
		}

		if !typeMatches(value, rule.Type) {
			r.Errors = append(r.Errors, fmt.Sprintf("field %s: expected %s, got %s", rule.Path, rule.Type, jsonType(value)))
			markCorrupted(rule.Path)
			continue
		}

		if rule.Type == TypeNumber {
			n, _ := AsNumber(value)
			if rule.Min != nil && n < *rule.Min {
				r.Errors = append(r.Errors, fmt.Sprintf("field %s: value %v below minimum %v", rule.Path, n, *rule.Min))
				markCorrupted(rule.Path)
			}
			if rule.Max != nil && n > *rule.Max {
				r.Errors = append(r.Errors, fmt.Sprintf("field %s: value %v above maximum %v", rule.Path, n, *rule.Max))
				markCorrupted(rule.Path)
			}
		}

		if opts.DeepValidation && rule.Type == TypeArray {
			validateElements(&r, rule, value.([]any), markCorrupted)
		}
	}

	r.IsValid = len(r.Errors) == 0
	if opts.StrictMode && len(r.Warnings) > 0 {
		r.IsValid = false
	}
	return r
}

// validateElements checks each array element's identity under deep
// validation. One malformed element marks the whole field corrupted,
// but every bad element is still reported individually.
func validateElements(r *Result, rule FieldRule, elems []any, markCorrupted func(string)) {
	key := rule.ElementKey
	if key == "" {
		key = "id"
	}

	for i, elem := range elems {
		// "-" marks arrays of plain scalars: elements must be
		// non-empty strings rather than identified objects.
		if key == "-" {
			s, ok := elem.(string)
			if !ok || s == "" {
				r.Errors = append(r.Errors, fmt.Sprintf("field %s[%d]: expected non-empty string element", rule.Path, i))
				markCorrupted(rule.Path)
			}
			continue
		}

		obj, ok := elem.(map[string]any)
		if !ok {
			r.Errors = append(r.Errors, fmt.Sprintf("field %s[%d]: expected object element", rule.Path, i))
			markCorrupted(rule.Path)
			continue
		}
		id, ok := obj[key].(string)
		if !ok || id == "" {
			r.Errors = append(r.Errors, fmt.Sprintf("field %s[%d]: missing or empty %q", rule.Path, i, key))
			markCorrupted(rule.Path)
		}
	}
}

// typeMatches checks a decoded JSON value against an expected type.
func typeMatches(v any, t FieldType) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		_, ok := AsNumber(v)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeArray:
		_, ok := v.([]any)
		return ok
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	default:
		return false
	}
}

// AsNumber normalizes the numeric representations a decoded document
// can carry. Documents built by json.Unmarshal hold float64; documents
// assembled in code may hold Go integer types.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// jsonType names a decoded value's JSON type for error messages.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		if _, ok := AsNumber(v); ok {
			return "number"
		}
		return fmt.Sprintf("%T", v)
	}
}
