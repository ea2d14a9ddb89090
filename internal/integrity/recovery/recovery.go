// Package recovery repairs corrupted save documents with safe defaults.
package recovery

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sawyersrpg/savecore/internal/core/domain"
	"github.com/sawyersrpg/savecore/internal/integrity/schema"
)

// Outcome is the result of a recovery attempt. When Recovered is false
// no repair was attempted or possible; Data is the input returned
// unchanged and must not be treated as trustworthy.
type Outcome struct {
	Recovered bool
	Data      map[string]any

	// Repaired lists the fields that were actually touched.
	Repaired []string
}

// Engine applies per-field default strategies driven by the schema
// descriptor.
type Engine struct {
	desc      *schema.Descriptor
	skeletons map[string]func() any
}

// NewEngine creates a recovery engine for the given descriptor.
func NewEngine(desc *schema.Descriptor) *Engine {
	return &Engine{
		desc: desc,
		skeletons: map[string]func() any{
			"player": func() any {
				return toDocument(domain.DefaultPlayer())
			},
			"player.equipment": func() any {
				return toDocument(domain.Equipment{})
			},
		},
	}
}

// Attempt repairs the fields listed in the validation result's
// CorruptedFields, choosing the first applicable strategy per field:
//
//	(a) missing required field      -> substitute a minimal valid skeleton
//	(b) wrong primitive type        -> lossless coercion, else zero value
//	(c) expected array, not array   -> empty array
//	(d) numeric bound violation     -> clamp to the boundary
//
// Arrays corrupted only by malformed elements keep their valid elements
// and drop the rest. Single pass: no revalidation, no recursion. Any
// corrupted field outside the descriptor fails the whole attempt and
// the input is returned unchanged. The input document is never mutated.
func (e *Engine) Attempt(doc map[string]any, result schema.Result) Outcome {
	failed := Outcome{Recovered: false, Data: doc}

	if len(result.CorruptedFields) == 0 {
		return Outcome{Recovered: true, Data: doc}
	}

	repaired, err := deepCopy(doc)
	if err != nil {
		return failed
	}
	if repaired == nil {
		repaired = map[string]any{}
	}

	var touched []string
	for _, path := range result.CorruptedFields {
		rule, ok := e.desc.Rule(path)
		if !ok {
			// Unknown field, no strategy.
			return failed
		}
		if e.repairField(repaired, rule) {
			touched = append(touched, path)
		} else {
			return failed
		}
	}

	return Outcome{Recovered: true, Data: repaired, Repaired: touched}
}

func (e *Engine) repairField(doc map[string]any, rule schema.FieldRule) bool {
	value, found := schema.Resolve(doc, rule.Path)

	// (a) missing entirely: substitute skeleton or zero value.
	if !found {
		return setPath(doc, rule.Path, e.defaultFor(rule))
	}

	switch rule.Type {
	case schema.TypeArray:
		arr, ok := value.([]any)
		if !ok {
			// (c) not an array at all.
			return setPath(doc, rule.Path, []any{})
		}
		// Corrupted via malformed elements: keep the valid ones.
		return setPath(doc, rule.Path, filterElements(arr, rule))

	case schema.TypeNumber:
		n, ok := schema.AsNumber(value)
		if !ok {
			// (b) wrong type: lossless coercion when possible.
			if coerced, ok := coerceNumber(value); ok {
				n = coerced
			} else {
				n = 0
			}
		}
		// (d) clamp to bounds instead of discarding.
		if rule.Min != nil && n < *rule.Min {
			n = *rule.Min
		}
		if rule.Max != nil && n > *rule.Max {
			n = *rule.Max
		}
		return setPath(doc, rule.Path, n)

	case schema.TypeString:
		if s, ok := coerceString(value); ok {
			return setPath(doc, rule.Path, s)
		}
		return setPath(doc, rule.Path, "")

	case schema.TypeBoolean:
		if b, ok := value.(bool); ok {
			return setPath(doc, rule.Path, b)
		}
		return setPath(doc, rule.Path, false)

	case schema.TypeObject:
		if _, ok := value.(map[string]any); ok {
			// Present and object-typed yet corrupted means a child rule
			// failed; the child's own entry handles it.
			return true
		}
		return setPath(doc, rule.Path, e.defaultFor(rule))

	default:
		return false
	}
}

// defaultFor picks the substitute for a missing or unusable field:
// a registered skeleton when one exists, else the type's zero value.
func (e *Engine) defaultFor(rule schema.FieldRule) any {
	if skel, ok := e.skeletons[rule.Path]; ok {
		return skel()
	}
	switch rule.Type {
	case schema.TypeString:
		return ""
	case schema.TypeNumber:
		if rule.Min != nil {
			return *rule.Min
		}
		return float64(0)
	case schema.TypeBoolean:
		return false
	case schema.TypeArray:
		return []any{}
	case schema.TypeObject:
		return map[string]any{}
	default:
		return nil
	}
}

// filterElements drops array elements that fail the identity check
// deep validation applies.
func filterElements(arr []any, rule schema.FieldRule) []any {
	key := rule.ElementKey
	if key == "" {
		key = "id"
	}

	kept := make([]any, 0, len(arr))
	for _, elem := range arr {
		if key == "-" {
			if s, ok := elem.(string); ok && s != "" {
				kept = append(kept, elem)
			}
			continue
		}
		obj, ok := elem.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := obj[key].(string); ok && id != "" {
			kept = append(kept, elem)
		}
	}
	return kept
}

// coerceNumber attempts a lossless conversion to number.
func coerceNumber(v any) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// coerceString attempts a lossless conversion to string.
func coerceString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if n, ok := schema.AsNumber(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	if b, ok := v.(bool); ok {
		return strconv.FormatBool(b), true
	}
	return "", false
}

// setPath writes a value at a dot-delimited path, creating intermediate
// objects as needed. Fails if an intermediate exists with a non-object
// type.
func setPath(doc map[string]any, path string, value any) bool {
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok || next == nil {
			child := map[string]any{}
			current[part] = child
			current = child
			continue
		}
		obj, ok := next.(map[string]any)
		if !ok {
			return false
		}
		current = obj
	}
	current[parts[len(parts)-1]] = value
	return true
}

// deepCopy clones a document via JSON round trip.
func deepCopy(doc map[string]any) (map[string]any, error) {
	if doc == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// toDocument converts a typed model into document form.
func toDocument(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}
