// Package result defines the typed result model produced by the query engine.
//
// A ResultSet is an ordered list of groups of rows sharing one list of column
// titles. Every cell is a Value, a closed variant over the kinds listed in
// Kind. Renderers and serializers consume this model read-only.
package result

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant stored in a Value.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindText
	KindBoolean
	KindDate
	KindTime
	KindDateTime
	KindArray
	KindRange
	KindNull

	kindCount
)

var kindNames = [...]string{
	KindInteger:  "Integer",
	KindFloat:    "Float",
	KindText:     "Text",
	KindBoolean:  "Boolean",
	KindDate:     "Date",
	KindTime:     "Time",
	KindDateTime: "DateTime",
	KindArray:    "Array",
	KindRange:    "Range",
	KindNull:     "Null",
}

// String returns the kind name
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every value kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ErrElementType is returned when an array element does not match the
// array's declared element type.
var ErrElementType = errors.New("array element type mismatch")

// Value is one cell of a result set.
//
// The zero Value is an Integer 0; use Null() for absent values.
type Value struct {
	kind  Kind
	i     int64     // Integer, DateTime (epoch seconds), Time (nanoseconds since midnight)
	f     float64   // Float
	s     string    // Text
	b     bool      // Boolean
	t     time.Time // Date, normalized to UTC midnight
	elem  *DataType // Array element type
	elems []Value   // Array elements, Range bounds (lower, upper)
}

// Integer returns an Integer value
func Integer(v int64) Value { return Value{kind: KindInteger, i: v} }

// Float returns a Float value
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Text returns a Text value
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Boolean returns a Boolean value
func Boolean(v bool) Value { return Value{kind: KindBoolean, b: v} }

// Null returns the absent value
func Null() Value { return Value{kind: KindNull} }

// Date returns a Date value for the calendar day of t, interpreted in UTC.
func Date(t time.Time) Value {
	y, m, d := t.UTC().Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Time returns a Time value for the wall-clock offset since midnight.
// Offsets outside one day wrap around.
func Time(sinceMidnight time.Duration) Value {
	const day = 24 * time.Hour
	d := sinceMidnight % day
	if d < 0 {
		d += day
	}
	return Value{kind: KindTime, i: int64(d)}
}

// DateTime returns a DateTime value holding seconds since the Unix epoch
func DateTime(epochSeconds int64) Value { return Value{kind: KindDateTime, i: epochSeconds} }

// Range returns the half-open interval [lower, upper).
func Range(lower, upper Value) Value {
	return Value{kind: KindRange, elems: []Value{lower, upper}}
}

// NewArray builds an Array value after checking every element against elem.
//
// Returns ErrElementType when an element's kind is not accepted by elem.
func NewArray(elem DataType, elems []Value) (Value, error) {
	for i, v := range elems {
		if elementAccepts(elem, v.kind) {
			continue
		}
		return Value{}, fmt.Errorf("%w: element %d is %s, array holds %s", ErrElementType, i, v.kind, elem)
	}
	out := make([]Value, len(elems))
	copy(out, elems)
	return Value{kind: KindArray, elem: &elem, elems: out}, nil
}

// MustArray is like NewArray but panics on a mismatched element.
func MustArray(elem DataType, elems []Value) Value {
	v, err := NewArray(elem, elems)
	if err != nil {
		panic(err)
	}
	return v
}

// elementAccepts is Accepts for array elements. Undefined and Null element
// types come from empty literals and carry no elements.
func elementAccepts(elem DataType, k Kind) bool {
	switch elem.Kind {
	case TypeUndefined, TypeNull:
		return k == KindNull
	default:
		return elem.Accepts(k)
	}
}

// Kind returns the value's variant
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the absent value
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsInt returns the Integer payload (0 for other kinds)
func (v Value) AsInt() int64 {
	if v.kind == KindInteger {
		return v.i
	}
	return 0
}

// AsFloat returns the Float payload. Integers are widened.
func (v Value) AsFloat() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInteger:
		return float64(v.i)
	}
	return 0
}

// AsText returns the Text payload ("" for other kinds)
func (v Value) AsText() string {
	if v.kind == KindText {
		return v.s
	}
	return ""
}

// AsBool returns the Boolean payload (false for other kinds)
func (v Value) AsBool() bool { return v.kind == KindBoolean && v.b }

// AsDate returns the Date payload as UTC midnight
func (v Value) AsDate() time.Time { return v.t }

// AsTime returns the Time payload as an offset since midnight
func (v Value) AsTime() time.Duration {
	if v.kind == KindTime {
		return time.Duration(v.i)
	}
	return 0
}

// AsDateTime returns the DateTime payload in seconds since the epoch
func (v Value) AsDateTime() int64 {
	if v.kind == KindDateTime {
		return v.i
	}
	return 0
}

// AsArray returns the element type and elements of an Array value.
// The returned slice must not be modified.
func (v Value) AsArray() (DataType, []Value) {
	if v.kind != KindArray || v.elem == nil {
		return UndefinedType, nil
	}
	return *v.elem, v.elems
}

// AsRange returns the lower and upper bounds of a Range value
func (v Value) AsRange() (Value, Value) {
	if v.kind != KindRange || len(v.elems) != 2 {
		return Null(), Null()
	}
	return v.elems[0], v.elems[1]
}

// Type returns the data type of the value
func (v Value) Type() DataType {
	switch v.kind {
	case KindInteger:
		return IntegerType
	case KindFloat:
		return FloatType
	case KindText:
		return TextType
	case KindBoolean:
		return BooleanType
	case KindDate:
		return DateType
	case KindTime:
		return TimeType
	case KindDateTime:
		return DateTimeType
	case KindArray:
		elem, _ := v.AsArray()
		return ArrayOf(elem)
	case KindRange:
		lo, _ := v.AsRange()
		return RangeOf(lo.Type())
	case KindNull:
		return NullType
	default:
		panic(fmt.Sprintf("result: unhandled value kind %v", v.kind))
	}
}

// String returns the display form of the value
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindText:
		return v.s
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindDate:
		return v.t.Format("2006-01-02")
	case KindTime:
		return formatClock(time.Duration(v.i))
	case KindDateTime:
		return time.Unix(v.i, 0).UTC().Format("2006-01-02 15:04:05")
	case KindArray:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindRange:
		lo, hi := v.AsRange()
		return lo.String() + ".." + hi.String()
	case KindNull:
		return "NULL"
	default:
		panic(fmt.Sprintf("result: unhandled value kind %v", v.kind))
	}
}

// formatClock renders an offset since midnight as HH:MM:SS[.fraction]
func formatClock(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	ns := d - s*time.Second
	out := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if ns > 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", int64(ns)), "0")
		out += "." + frac
	}
	return out
}

// Equal reports whether two values are identical in kind and payload.
// Integer and Float values compare numerically.
func Equal(a, b Value) bool {
	if a.kind == KindNull || b.kind == KindNull {
		return a.kind == b.kind
	}
	if a.kind == KindArray || b.kind == KindArray || a.kind == KindRange || b.kind == KindRange {
		if a.kind != b.kind || len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	}
	c, err := Compare(a, b)
	return err == nil && c == 0
}

// Compare orders two values.
//
// Null sorts before every other value. Integers and Floats compare
// numerically; Text, Boolean, Date, Time and DateTime compare within their own
// kind. Any other pairing returns an error.
func Compare(a, b Value) (int, error) {
	if a.kind == KindNull || b.kind == KindNull {
		switch {
		case a.kind == b.kind:
			return 0, nil
		case a.kind == KindNull:
			return -1, nil
		default:
			return 1, nil
		}
	}

	if isNumeric(a.kind) && isNumeric(b.kind) {
		if a.kind == KindInteger && b.kind == KindInteger {
			return cmpInt(a.i, b.i), nil
		}
		af, bf := a.AsFloat(), b.AsFloat()
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		case af == bf:
			return 0, nil
		}
		// NaN sorts last
		if math.IsNaN(af) && !math.IsNaN(bf) {
			return 1, nil
		}
		if !math.IsNaN(af) && math.IsNaN(bf) {
			return -1, nil
		}
		return 0, nil
	}

	if a.kind != b.kind {
		return 0, fmt.Errorf("cannot compare %s with %s", a.kind, b.kind)
	}

	switch a.kind {
	case KindText:
		return strings.Compare(a.s, b.s), nil
	case KindBoolean:
		switch {
		case a.b == b.b:
			return 0, nil
		case !a.b:
			return -1, nil
		default:
			return 1, nil
		}
	case KindDate:
		return a.t.Compare(b.t), nil
	case KindTime, KindDateTime:
		return cmpInt(a.i, b.i), nil
	default:
		return 0, fmt.Errorf("values of kind %s are not ordered", a.kind)
	}
}

// Key returns a string that is equal for Equal values of the same kind.
// Used for grouping and DISTINCT.
func (v Value) Key() string {
	switch v.kind {
	case KindInteger:
		// Integers and integral floats group together
		return "n:" + strconv.FormatInt(v.i, 10)
	case KindFloat:
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < 1<<53 {
			return "n:" + strconv.FormatInt(int64(v.f), 10)
		}
		return "n:" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindArray, KindRange:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.Key()
		}
		return v.kind.String() + ":[" + strings.Join(parts, ",") + "]"
	default:
		return v.kind.String() + ":" + v.String()
	}
}

func isNumeric(k Kind) bool { return k == KindInteger || k == KindFloat }

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
