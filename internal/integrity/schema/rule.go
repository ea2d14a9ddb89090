// Package schema provides declarative structural validation of save payloads.
package schema

import "strings"

// FieldType is the expected JSON type of a field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// FieldRule describes one field of the save payload. Path is
// dot-delimited into nested objects ("player.level").
type FieldRule struct {
	Path     string
	Type     FieldType
	Required bool

	// Min/Max bound numeric fields when set.
	Min *float64
	Max *float64

	// Deprecated fields produce a warning when present, never an error
	// (unless validation runs in strict mode).
	Deprecated bool

	// ElementKey is the identity key array elements must carry under
	// deep validation. Empty means "id".
	ElementKey string
}

// Descriptor is an ordered list of field rules for one state shape
// version. Immutable once built.
type Descriptor struct {
	rules []FieldRule
	index map[string]int
}

// NewDescriptor builds a descriptor from an ordered rule list.
func NewDescriptor(rules []FieldRule) *Descriptor {
	idx := make(map[string]int, len(rules))
	for i, r := range rules {
		idx[r.Path] = i
	}
	return &Descriptor{rules: rules, index: idx}
}

// Rules returns the rules in declaration order.
func (d *Descriptor) Rules() []FieldRule {
	return d.rules
}

// Rule looks up the rule for a path. The second return is false for
// paths the descriptor does not cover.
func (d *Descriptor) Rule(path string) (FieldRule, bool) {
	i, ok := d.index[path]
	if !ok {
		return FieldRule{}, false
	}
	return d.rules[i], true
}

// Resolve walks a dot-delimited path into a document. Missing
// intermediate objects (or intermediates of the wrong type) report
// "not found" rather than failing.
func Resolve(doc map[string]any, path string) (any, bool) {
	if doc == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var current any = doc
	for _, part := range parts {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// minPtr and maxPtr build bound pointers for rule tables.
func minPtr(v float64) *float64 { return &v }
func maxPtr(v float64) *float64 { return &v }
