package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// MarshalObject encodes columns and values as a JSON object whose keys keep
// the given order. encoding/json sorts map keys, so rows cannot be maps.
// NaN and infinite floats have no JSON form and are written as null.
func MarshalObject(columns []string, values []interface{}) ([]byte, error) {
	if len(columns) != len(values) {
		return nil, fmt.Errorf("object has %d columns but %d values", len(columns), len(values))
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(finite(values[i]))
		if err != nil {
			return nil, fmt.Errorf("failed to encode column %q: %w", col, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// finite replaces non-finite floats, alone or inside a float list, with nil
func finite(v interface{}) interface{} {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	case float32:
		return finite(float64(x))
	case []float64:
		out := make([]interface{}, len(x))
		for i, f := range x {
			out[i] = finite(f)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = finite(e)
		}
		return out
	}
	return v
}
