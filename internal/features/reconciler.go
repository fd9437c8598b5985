package features

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Value is a single reconciled feature. Numeric reports whether coercion to
// float64 succeeded; when it did not, Raw keeps the original input value.
type Value struct {
	Num     float64
	Raw     any
	Numeric bool
}

// Vector is an ordered feature vector ready for model input. With a schema the
// order is the schema's and every entry is numeric; without one it mirrors the
// caller's input and may mix types.
type Vector struct {
	Columns []string
	Values  []Value
}

// Len returns the number of features.
func (v Vector) Len() int {
	return len(v.Values)
}

// Floats returns the vector as a float64 slice, or false when any entry is
// non-numeric.
func (v Vector) Floats() ([]float64, bool) {
	out := make([]float64, len(v.Values))
	ok := true
	for i, val := range v.Values {
		if !val.Numeric {
			ok = false
			continue
		}
		out[i] = val.Num
	}
	return out, ok
}

// FloatsLossy returns the vector as a float64 slice, substituting zero for any
// non-numeric entry. This is the positional form used by the fallback model
// invocation.
func (v Vector) FloatsLossy() []float64 {
	out := make([]float64, len(v.Values))
	for i, val := range v.Values {
		if val.Numeric {
			out[i] = val.Num
		}
	}
	return out
}

// Reconcile maps an arbitrary input record onto the model's expected feature
// vector. It is a total function: malformed or missing fields degrade to
// defaults instead of propagating errors, so a fully malformed record can
// silently become a zero-filled vector.
//
// With a schema, each expected column is matched against the input keys
// case-insensitively with surrounding whitespace trimmed; matched values are
// coerced to float64 and anything missing, empty or unparsable becomes 0.0.
// Without a schema, every input key passes through in input order with numeric
// coercion attempted per value; values that resist coercion are kept as-is.
func Reconcile(raw map[string]any, keys []string, schema []string) Vector {
	if len(schema) > 0 {
		return reconcileWithSchema(raw, schema)
	}
	return passThrough(raw, keys)
}

func reconcileWithSchema(raw map[string]any, schema []string) Vector {
	vec := Vector{
		Columns: make([]string, len(schema)),
		Values:  make([]Value, len(schema)),
	}

	for i, col := range schema {
		vec.Columns[i] = col
		want := normalizeKey(col)

		var found any
		for k, v := range raw {
			if normalizeKey(k) == want {
				found = v
				break
			}
		}

		num, ok := coerce(found)
		if !ok {
			num = 0.0
		}
		vec.Values[i] = Value{Num: num, Raw: found, Numeric: true}
	}

	return vec
}

// passThrough keeps the caller's key order when it is known. Map iteration
// order is not stable, so callers that care about positional input should
// provide keys; with nil keys the map order is whatever it is.
func passThrough(raw map[string]any, keys []string) Vector {
	if keys == nil {
		keys = make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
	}

	vec := Vector{
		Columns: make([]string, 0, len(keys)),
		Values:  make([]Value, 0, len(keys)),
	}

	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		vec.Columns = append(vec.Columns, k)
		if num, ok := coerce(v); ok {
			vec.Values = append(vec.Values, Value{Num: num, Numeric: true})
		} else {
			vec.Values = append(vec.Values, Value{Raw: v})
		}
	}

	return vec
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// coerce attempts float64 coercion of an arbitrary input value. Empty strings
// and nil are not coercible, matching the "missing means default" policy.
func coerce(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
