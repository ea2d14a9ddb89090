// Package canonical provides deterministic JSON serialization.
//
// Standard library JSON marshaling already sorts map keys, but it does
// not normalize numbers that round-trip through interface{} values, and
// it HTML-escapes by default. Canonical form here means: sorted object
// keys, no HTML escaping, no insignificant whitespace, and numbers
// rendered the way encoding/json renders float64. Two documents that
// are structurally equal always produce identical bytes, regardless of
// key insertion order.
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Marshal serializes v into canonical JSON bytes.
//
// Strings are returned as their raw bytes without JSON quoting, so a
// caller hashing a pre-serialized payload gets the same digest as one
// hashing the original string. Any other value is normalized through a
// decode/encode round trip to strip type-specific ordering.
func Marshal(v any) ([]byte, error) {
	if s, ok := v.(string); ok {
		return []byte(s), nil
	}
	if b, ok := v.([]byte); ok {
		return b, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical: marshal: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("canonical: normalize: %w", err)
	}

	var buf bytes.Buffer
	if err := encode(&buf, decoded); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeScalar(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encode(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		return encodeScalar(buf, v)
	}
}

func encodeScalar(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("canonical: encode scalar: %w", err)
	}
	// json.Encoder appends a newline; canonical form has none.
	buf.Truncate(buf.Len() - 1)
	return nil
}
