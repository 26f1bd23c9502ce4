package reader

import (
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/vegasq/pqview/result"
)

// TimeUnit is the storage unit of a parquet TIME or TIMESTAMP column
type TimeUnit int

const (
	UnitNone TimeUnit = iota
	UnitMillis
	UnitMicros
	UnitNanos
)

// Column describes one queryable column of a repository
type Column struct {
	Name string
	Type result.DataType
	// Unit is set for Time and DateTime columns, and for arrays of them
	Unit TimeUnit
}

// extractColumns returns the queryable columns of a parquet schema.
//
// Nested group fields use dot notation (e.g., "address.street"). Repeated
// leaves and LIST groups become arrays of their element type; repeated
// groups become arrays of Dynamic.
func extractColumns(schema *parquet.Schema) []Column {
	var columns []Column
	for _, field := range schema.Fields() {
		columns = append(columns, extractField(field, "", false)...)
	}
	return columns
}

func extractField(field parquet.Field, prefix string, parentRepeated bool) []Column {
	name := field.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || field.Repeated()

	if elem, ok := listElement(field); ok {
		if elem.Leaf() {
			t, unit := leafType(elem)
			return []Column{{Name: name, Type: result.ArrayOf(t), Unit: unit}}
		}
		return []Column{{Name: name, Type: result.ArrayOf(result.DynamicType)}}
	}

	if !field.Leaf() {
		if repeated {
			return []Column{{Name: name, Type: result.ArrayOf(result.DynamicType)}}
		}
		var columns []Column
		for _, child := range field.Fields() {
			columns = append(columns, extractField(child, name, repeated)...)
		}
		return columns
	}

	t, unit := leafType(field)
	if repeated {
		t = result.ArrayOf(t)
	}
	return []Column{{Name: name, Type: t, Unit: unit}}
}

// listElement returns the element node of a LIST annotated group
func listElement(field parquet.Field) (parquet.Field, bool) {
	if field.Leaf() {
		return nil, false
	}
	lt := logicalType(field)
	if lt == nil || lt.List == nil {
		return nil, false
	}
	list := field.Fields()
	if len(list) != 1 {
		return nil, false
	}
	if list[0].Leaf() {
		return list[0], true
	}
	elems := list[0].Fields()
	if len(elems) != 1 {
		return nil, false
	}
	return elems[0], true
}

func logicalType(field parquet.Field) *format.LogicalType {
	if field.Type() == nil {
		return nil
	}
	return field.Type().LogicalType()
}

// leafType maps a parquet leaf onto the engine's type system. Logical
// types are checked first for more specific typing, falling back to the
// physical type.
func leafType(field parquet.Field) (result.DataType, TimeUnit) {
	if lt := logicalType(field); lt != nil {
		switch {
		case lt.UTF8 != nil, lt.Enum != nil, lt.UUID != nil, lt.Json != nil:
			return result.TextType, UnitNone
		case lt.Date != nil:
			return result.DateType, UnitNone
		case lt.Time != nil:
			return result.TimeType, timeUnit(lt.Time.Unit)
		case lt.Timestamp != nil:
			return result.DateTimeType, timeUnit(lt.Timestamp.Unit)
		case lt.Integer != nil:
			return result.IntegerType, UnitNone
		}
	}

	switch field.Type().Kind() {
	case parquet.Boolean:
		return result.BooleanType, UnitNone
	case parquet.Int32, parquet.Int64:
		return result.IntegerType, UnitNone
	case parquet.Float, parquet.Double:
		return result.FloatType, UnitNone
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return result.TextType, UnitNone
	default:
		return result.DynamicType, UnitNone
	}
}

func timeUnit(u format.TimeUnit) TimeUnit {
	switch {
	case u.Millis != nil:
		return UnitMillis
	case u.Micros != nil:
		return UnitMicros
	case u.Nanos != nil:
		return UnitNanos
	default:
		return UnitNone
	}
}
