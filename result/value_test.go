package result

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleValue returns one value of every kind, indexed by kind.
func sampleValue(t *testing.T, k Kind) Value {
	t.Helper()
	switch k {
	case KindInteger:
		return Integer(42)
	case KindFloat:
		return Float(3.14)
	case KindText:
		return Text("alice")
	case KindBoolean:
		return Boolean(true)
	case KindDate:
		return Date(time.Date(2024, 3, 9, 17, 0, 0, 0, time.UTC))
	case KindTime:
		return Time(13*time.Hour + 5*time.Minute + 9*time.Second)
	case KindDateTime:
		return DateTime(1000)
	case KindArray:
		return MustArray(IntegerType, []Value{Integer(1), Integer(2)})
	case KindRange:
		return Range(Integer(1), Integer(5))
	case KindNull:
		return Null()
	}
	t.Fatalf("no sample for kind %v", k)
	return Value{}
}

func TestValue_EveryKindHasStringAndType(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			v := sampleValue(t, k)
			assert.Equal(t, k, v.Kind())
			assert.NotPanics(t, func() { _ = v.String() })
			assert.NotPanics(t, func() { _ = v.Type() })
			assert.NotPanics(t, func() { _ = v.Key() })
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"integer", Integer(-7), "-7"},
		{"float", Float(3.14), "3.14"},
		{"float integral", Float(2), "2"},
		{"text", Text("hi"), "hi"},
		{"boolean", Boolean(false), "false"},
		{"date", Date(time.Date(2024, 1, 2, 23, 59, 0, 0, time.UTC)), "2024-01-02"},
		{"time", Time(9*time.Hour + 30*time.Minute), "09:30:00"},
		{"time fraction", Time(time.Second + 500*time.Millisecond), "00:00:01.5"},
		{"datetime", DateTime(1000), "1970-01-01 00:16:40"},
		{"array", MustArray(TextType, []Value{Text("a"), Text("b")}), "[a, b]"},
		{"range", Range(Integer(1), Integer(10)), "1..10"},
		{"null", Null(), "NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestTime_WrapsAroundDay(t *testing.T) {
	assert.Equal(t, "01:00:00", Time(25*time.Hour).String())
	assert.Equal(t, "23:00:00", Time(-time.Hour).String())
}

func TestNewArray_RejectsMismatchedElements(t *testing.T) {
	_, err := NewArray(IntegerType, []Value{Integer(1), Text("two")})
	require.ErrorIs(t, err, ErrElementType)

	_, err = NewArray(IntegerType, []Value{Integer(1), Null()})
	require.ErrorIs(t, err, ErrElementType)

	v, err := NewArray(DynamicType, []Value{Integer(1), Text("two")})
	require.NoError(t, err)
	elem, elems := v.AsArray()
	assert.Equal(t, TypeDynamic, elem.Kind)
	assert.Len(t, elems, 2)

	empty, err := NewArray(UndefinedType, nil)
	require.NoError(t, err)
	assert.Equal(t, "Array(Undefined)", empty.Type().String())
}

func TestNewArray_CopiesInput(t *testing.T) {
	in := []Value{Integer(1), Integer(2)}
	v := MustArray(IntegerType, in)
	in[0] = Integer(99)
	_, elems := v.AsArray()
	assert.Equal(t, int64(1), elems[0].AsInt())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"int less", Integer(1), Integer(2), -1},
		{"int float equal", Integer(2), Float(2.0), 0},
		{"float greater", Float(2.5), Integer(2), 1},
		{"text", Text("b"), Text("a"), 1},
		{"bool", Boolean(false), Boolean(true), -1},
		{"null first", Null(), Integer(0), -1},
		{"null equal", Null(), Null(), 0},
		{"value after null", Text(""), Null(), 1},
		{"datetime", DateTime(5), DateTime(3), 1},
		{"date", Date(time.Unix(0, 0)), Date(time.Unix(86400, 0)), -1},
		{"nan last", Float(math.NaN()), Float(1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Compare(Text("a"), Integer(1))
	assert.Error(t, err)
	_, err = Compare(Range(Integer(1), Integer(2)), Range(Integer(1), Integer(2)))
	assert.Error(t, err)
}

func TestEqualAndKey(t *testing.T) {
	assert.True(t, Equal(Integer(3), Float(3)))
	assert.Equal(t, Integer(3).Key(), Float(3).Key())
	assert.NotEqual(t, Integer(3).Key(), Text("3").Key())
	assert.True(t, Equal(Range(Integer(1), Integer(2)), Range(Integer(1), Integer(2))))
	assert.False(t, Equal(Null(), Integer(0)))
	assert.True(t, Equal(
		MustArray(TextType, []Value{Text("a")}),
		MustArray(TextType, []Value{Text("a")}),
	))
}

func TestAccessorsOnOtherKinds(t *testing.T) {
	v := Text("x")
	assert.Zero(t, v.AsInt())
	assert.Zero(t, v.AsDateTime())
	assert.False(t, v.AsBool())
	elem, elems := v.AsArray()
	assert.Equal(t, TypeUndefined, elem.Kind)
	assert.Nil(t, elems)
	lo, hi := v.AsRange()
	assert.True(t, lo.IsNull())
	assert.True(t, hi.IsNull())
	assert.Equal(t, 3.0, Integer(3).AsFloat())
}
