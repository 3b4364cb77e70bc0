package dataset

import (
	"math"

	"github.com/bytedance/sonic"
)

// Sanitize replaces NaN and infinite floats with nil, recursively, so
// statistics documents survive JSON encoding. Anything else passes
// through untouched.
func Sanitize(v any) any {
	switch v := v.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	case float32:
		return Sanitize(float64(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = Sanitize(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = Sanitize(e)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes v with NaN/Inf sanitized away.
func MarshalJSON(v any) ([]byte, error) {
	return sonic.Marshal(Sanitize(v))
}
