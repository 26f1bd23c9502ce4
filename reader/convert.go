package reader

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/vegasq/pqview/result"
)

const secondsPerDay = 24 * 60 * 60

// convertValue turns a value decoded from a parquet row into a typed
// result value guided by the column's declared type
func convertValue(raw interface{}, col Column) (result.Value, error) {
	if raw == nil {
		return result.Null(), nil
	}
	if rv := reflect.ValueOf(raw); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return result.Null(), nil
		}
		raw = rv.Elem().Interface()
	}

	switch col.Type.Kind {
	case result.TypeText:
		switch v := raw.(type) {
		case string:
			return result.Text(v), nil
		case []byte:
			return result.Text(string(v)), nil
		}
		return result.Text(fmt.Sprint(raw)), nil
	case result.TypeInteger:
		if n, ok := asInt64(raw); ok {
			return result.Integer(n), nil
		}
	case result.TypeFloat:
		if f, ok := asFloat64(raw); ok {
			return result.Float(f), nil
		}
	case result.TypeBoolean:
		if b, ok := raw.(bool); ok {
			return result.Boolean(b), nil
		}
	case result.TypeDate:
		if t, ok := raw.(time.Time); ok {
			return result.Date(t), nil
		}
		if days, ok := asInt64(raw); ok {
			return result.Date(time.Unix(days*secondsPerDay, 0)), nil
		}
	case result.TypeDateTime:
		if t, ok := raw.(time.Time); ok {
			return result.DateTime(t.Unix()), nil
		}
		if n, ok := asInt64(raw); ok {
			return result.DateTime(toSeconds(n, col.Unit)), nil
		}
	case result.TypeTime:
		if d, ok := raw.(time.Duration); ok {
			return result.Time(d), nil
		}
		if n, ok := asInt64(raw); ok {
			return result.Time(toDuration(n, col.Unit)), nil
		}
	case result.TypeArray:
		return convertArray(raw, col)
	case result.TypeDynamic:
		return inferValue(raw)
	}
	return result.Value{}, fmt.Errorf("column %s: cannot convert %T to %s", col.Name, raw, col.Type)
}

// convertArray converts a decoded list. Null elements widen the element
// type to Dynamic since concrete element types do not admit nulls.
func convertArray(raw interface{}, col Column) (result.Value, error) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return result.Value{}, fmt.Errorf("column %s: expected a list, got %T", col.Name, raw)
	}

	elem := result.DynamicType
	if col.Type.Elem != nil {
		elem = *col.Type.Elem
	}
	elemCol := Column{Name: col.Name, Type: elem, Unit: col.Unit}

	values := make([]result.Value, rv.Len())
	for i := range values {
		v, err := convertValue(rv.Index(i).Interface(), elemCol)
		if err != nil {
			return result.Value{}, err
		}
		values[i] = v
	}

	arr, err := result.NewArray(elem, values)
	if err != nil {
		return result.NewArray(result.DynamicType, values)
	}
	return arr, nil
}

// inferValue maps a Go value onto the closest result kind
func inferValue(raw interface{}) (result.Value, error) {
	switch v := raw.(type) {
	case string:
		return result.Text(v), nil
	case []byte:
		return result.Text(string(v)), nil
	case bool:
		return result.Boolean(v), nil
	case time.Time:
		return result.DateTime(v.Unix()), nil
	case time.Duration:
		return result.Time(v), nil
	case map[string]interface{}:
		return result.Text(fmt.Sprint(v)), nil
	}
	if n, ok := asInt64(raw); ok {
		return result.Integer(n), nil
	}
	if f, ok := asFloat64(raw); ok {
		return result.Float(f), nil
	}
	if rv := reflect.ValueOf(raw); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return convertArray(raw, Column{Type: result.ArrayOf(result.DynamicType)})
	}
	return result.Text(fmt.Sprint(raw)), nil
}

func asInt64(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func asFloat64(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	if n, ok := asInt64(raw); ok {
		return float64(n), true
	}
	return 0, false
}

// toSeconds converts a stored timestamp into whole seconds, rounding
// towards negative infinity
func toSeconds(n int64, unit TimeUnit) int64 {
	var per int64
	switch unit {
	case UnitMillis:
		per = 1e3
	case UnitMicros:
		per = 1e6
	case UnitNanos:
		per = 1e9
	default:
		return n
	}
	s := n / per
	if n%per < 0 {
		s--
	}
	return s
}

func toDuration(n int64, unit TimeUnit) time.Duration {
	switch unit {
	case UnitMicros:
		return time.Duration(n) * time.Microsecond
	case UnitNanos:
		return time.Duration(n)
	default:
		return time.Duration(n) * time.Millisecond
	}
}
