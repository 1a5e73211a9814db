// normalizer/fields.go
package normalizer

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Candidate keys per concept, in priority order. The first present and
// non-blank value wins.
var (
	containerKeys = []string{"results", "data", "items", "itineraries", "flights"}

	cabinKeys = []string{"cabinCode", "cabin"}

	legDurationKeys = []string{"legDurationDisplay", "duration", "durationDisplay"}

	segmentDepartureKeys = []string{"departure", "from", "origin"}
	segmentArrivalKeys   = []string{"arrival", "to", "destination"}
	segmentDurationKeys  = []string{"duration", "durationDisplay"}
	segmentCarrierKeys   = []string{"carrier", "marketingAirline", "operatingAirline"}

	fareDisplayPriceKeys = []string{"displayPrice", "price"}
)

// firstPresent returns the first non-blank value found under keys.
func firstPresent(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && !isBlank(v) {
			return v
		}
	}
	return nil
}

// isBlank reports whether v carries no usable data: nil, empty string,
// zero number, false, or an empty list or object.
func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case []any:
		return len(val) == 0
	case []map[string]any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	if n, ok := numeric(v); ok {
		return n == 0
	}
	return false
}

// asMap returns v as an object, or an empty one.
func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok && m != nil {
		return m
	}
	return map[string]any{}
}

// asList returns v as a list. ok is false when v is not a list at all.
func asList(v any) (list []any, ok bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []map[string]any:
		out := make([]any, len(val))
		for i, m := range val {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

func numeric(v any) (float64, bool) {
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
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// stringOf renders scalar values as text. Objects, lists and nil yield "".
func stringOf(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	}
	if n, ok := numeric(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// textOf is like stringOf but falls back to fmt formatting for composite values.
func textOf(v any) string {
	if v == nil {
		return ""
	}
	if s := stringOf(v); s != "" {
		return s
	}
	return fmt.Sprint(v)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
