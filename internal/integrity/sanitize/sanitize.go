// Package sanitize prepares save documents for upload to remote
// storage.
package sanitize

import (
	"sort"
	"time"
)

// ArrayCap is the maximum element count a sanitized array may carry.
const ArrayCap = 1000

// sessionKeys are ephemeral fields that carry no progress worth
// reconstructing on another device.
var sessionKeys = []string{
	"sessionData",
	"uiState",
	"activeDialogue",
	"pendingAnimations",
	"inputBindings",
	"debugFlags",
}

// Sanitizer produces cloud-safe copies of save documents. The clock is
// injected so uploads can be tested with a fixed time source.
type Sanitizer struct {
	now func() time.Time
}

// New creates a sanitizer using the given time source. A nil clock
// falls back to time.Now.
func New(now func() time.Time) *Sanitizer {
	if now == nil {
		now = time.Now
	}
	return &Sanitizer{now: now}
}

// ForCloud returns a new document safe for remote upload: session-only
// keys stripped, the timestamp refreshed to the sanitization moment,
// and oversized arrays truncated to their most recent ArrayCap
// elements. The input document is never modified.
func (s *Sanitizer) ForCloud(doc map[string]any) map[string]any {
	out := sanitizeObject(doc)
	for _, key := range sessionKeys {
		delete(out, key)
	}
	out["timestamp"] = float64(s.now().UnixMilli())
	return out
}

func sanitizeObject(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for key, value := range obj {
		out[key] = sanitizeValue(value)
	}
	return out
}

func sanitizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return sanitizeObject(v)
	case []any:
		return truncateArray(v)
	default:
		return v
	}
}

// truncateArray copies an array, capping it at ArrayCap elements. When
// elements carry their own time fields the most recent ones win;
// otherwise the tail of insertion order is kept, since new elements are
// appended.
func truncateArray(arr []any) []any {
	out := make([]any, len(arr))
	for i, elem := range arr {
		out[i] = sanitizeValue(elem)
	}
	if len(out) <= ArrayCap {
		return out
	}

	if timed(out) {
		sort.SliceStable(out, func(i, j int) bool {
			return elementTime(out[i]) < elementTime(out[j])
		})
	}
	return out[len(out)-ArrayCap:]
}

// timed reports whether any element carries a usable time field.
func timed(arr []any) bool {
	for _, elem := range arr {
		if _, ok := lookupTime(elem); ok {
			return true
		}
	}
	return false
}

// elementTime extracts the element's time for recency ordering.
// Elements without one sort first so they are dropped before dated
// ones.
func elementTime(elem any) float64 {
	if t, ok := lookupTime(elem); ok {
		return t
	}
	return -1
}

func lookupTime(elem any) (float64, bool) {
	obj, ok := elem.(map[string]any)
	if !ok {
		return 0, false
	}
	for _, key := range []string{"timestamp", "obtainedAt"} {
		if n, ok := obj[key].(float64); ok {
			return n, true
		}
	}
	return 0, false
}
