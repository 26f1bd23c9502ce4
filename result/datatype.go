package result

import (
	"fmt"
	"strings"
)

// TypeKind identifies a data type in the engine's type system.
//
// The set is closed: every switch over TypeKind must handle each constant.
// typeKindCount marks the end of the enumeration so tests can iterate it.
type TypeKind int

const (
	TypeText TypeKind = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeDate
	TypeTime
	TypeDateTime
	TypeArray
	TypeRange
	TypeVariant
	TypeOptional
	TypeVarargs
	TypeDynamic
	TypeUndefined
	TypeAny
	TypeNull

	typeKindCount
)

var typeKindNames = [...]string{
	TypeText:      "Text",
	TypeInteger:   "Integer",
	TypeFloat:     "Float",
	TypeBoolean:   "Boolean",
	TypeDate:      "Date",
	TypeTime:      "Time",
	TypeDateTime:  "DateTime",
	TypeArray:     "Array",
	TypeRange:     "Range",
	TypeVariant:   "Variant",
	TypeOptional:  "Optional",
	TypeVarargs:   "Varargs",
	TypeDynamic:   "Dynamic",
	TypeUndefined: "Undefined",
	TypeAny:       "Any",
	TypeNull:      "Null",
}

// String returns the type kind name
func (k TypeKind) String() string {
	if k < 0 || k >= typeKindCount {
		return fmt.Sprintf("TypeKind(%d)", int(k))
	}
	return typeKindNames[k]
}

// TypeKinds returns every type kind in declaration order.
func TypeKinds() []TypeKind {
	kinds := make([]TypeKind, 0, typeKindCount)
	for k := TypeKind(0); k < typeKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// DataType describes the type of a column, function argument or array element.
//
// Array, Range, Optional and Varargs carry their inner type in Elem.
// Variant lists its alternatives.
type DataType struct {
	Kind     TypeKind
	Elem     *DataType
	Variants []DataType
}

// Predefined scalar types
var (
	TextType      = DataType{Kind: TypeText}
	IntegerType   = DataType{Kind: TypeInteger}
	FloatType     = DataType{Kind: TypeFloat}
	BooleanType   = DataType{Kind: TypeBoolean}
	DateType      = DataType{Kind: TypeDate}
	TimeType      = DataType{Kind: TypeTime}
	DateTimeType  = DataType{Kind: TypeDateTime}
	DynamicType   = DataType{Kind: TypeDynamic}
	UndefinedType = DataType{Kind: TypeUndefined}
	AnyType       = DataType{Kind: TypeAny}
	NullType      = DataType{Kind: TypeNull}
)

// ArrayOf returns the array type with the given element type
func ArrayOf(elem DataType) DataType {
	return DataType{Kind: TypeArray, Elem: &elem}
}

// RangeOf returns the range type with the given bound type
func RangeOf(bound DataType) DataType {
	return DataType{Kind: TypeRange, Elem: &bound}
}

// OptionalOf returns an optional argument type
func OptionalOf(inner DataType) DataType {
	return DataType{Kind: TypeOptional, Elem: &inner}
}

// VarargsOf returns a variadic argument type
func VarargsOf(inner DataType) DataType {
	return DataType{Kind: TypeVarargs, Elem: &inner}
}

// VariantOf returns a type accepting any of the alternatives
func VariantOf(alternatives ...DataType) DataType {
	return DataType{Kind: TypeVariant, Variants: alternatives}
}

// String returns a readable type name such as "Array(Integer)"
func (t DataType) String() string {
	switch t.Kind {
	case TypeArray, TypeRange, TypeOptional, TypeVarargs:
		if t.Elem == nil {
			return t.Kind.String()
		}
		return fmt.Sprintf("%s(%s)", t.Kind, t.Elem.String())
	case TypeVariant:
		names := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			names[i] = v.String()
		}
		return fmt.Sprintf("Variant(%s)", strings.Join(names, " | "))
	default:
		return t.Kind.String()
	}
}

// Equal reports whether two data types are structurally identical
func (t DataType) Equal(other DataType) bool {
	if t.Kind != other.Kind {
		return false
	}
	if (t.Elem == nil) != (other.Elem == nil) {
		return false
	}
	if t.Elem != nil && !t.Elem.Equal(*other.Elem) {
		return false
	}
	if len(t.Variants) != len(other.Variants) {
		return false
	}
	for i := range t.Variants {
		if !t.Variants[i].Equal(other.Variants[i]) {
			return false
		}
	}
	return true
}

// Accepts reports whether a value of kind k may be stored where t is declared.
//
// Concrete types require the matching value kind. Variant accepts any of its
// alternatives; Optional and Varargs defer to their inner type; Dynamic and
// Any accept every kind. Null values are accepted only by Null, Any, Dynamic
// and Optional.
func (t DataType) Accepts(k Kind) bool {
	switch t.Kind {
	case TypeText:
		return k == KindText
	case TypeInteger:
		return k == KindInteger
	case TypeFloat:
		return k == KindFloat
	case TypeBoolean:
		return k == KindBoolean
	case TypeDate:
		return k == KindDate
	case TypeTime:
		return k == KindTime
	case TypeDateTime:
		return k == KindDateTime
	case TypeArray:
		return k == KindArray
	case TypeRange:
		return k == KindRange
	case TypeVariant:
		for _, v := range t.Variants {
			if v.Accepts(k) {
				return true
			}
		}
		return false
	case TypeOptional:
		if k == KindNull {
			return true
		}
		return t.Elem == nil || t.Elem.Accepts(k)
	case TypeVarargs:
		return t.Elem == nil || t.Elem.Accepts(k)
	case TypeDynamic, TypeAny:
		return true
	case TypeUndefined:
		return false
	case TypeNull:
		return k == KindNull
	default:
		panic(fmt.Sprintf("result: unhandled type kind %v", t.Kind))
	}
}
