package render

import (
	"fmt"
	"time"

	"github.com/vegasq/pqview/result"
)

// Cell converts one typed value into its host-native form.
//
// Arrays dispatch again on their declared element type. Arrays declared
// over Undefined, Any or Null cannot be represented and panic, as does any
// kind outside the closed set.
func Cell(v result.Value) interface{} {
	switch v.Kind() {
	case result.KindInteger:
		return v.AsInt()
	case result.KindFloat:
		return v.AsFloat()
	case result.KindText:
		return v.AsText()
	case result.KindBoolean:
		return v.AsBool()
	case result.KindDate, result.KindTime:
		return v.String()
	case result.KindDateTime:
		return time.Unix(v.AsDateTime(), 0).UTC()
	case result.KindRange:
		return v.String()
	case result.KindArray:
		return arrayCell(v)
	case result.KindNull:
		return nil
	default:
		panic(fmt.Sprintf("render: unhandled value kind %v", v.Kind()))
	}
}

func arrayCell(v result.Value) interface{} {
	elem, elems := v.AsArray()
	switch elem.Kind {
	case result.TypeInteger:
		out := make([]int64, len(elems))
		for i, e := range elems {
			out[i] = e.AsInt()
		}
		return out
	case result.TypeFloat:
		out := make([]float64, len(elems))
		for i, e := range elems {
			out[i] = e.AsFloat()
		}
		return out
	case result.TypeBoolean:
		out := make([]bool, len(elems))
		for i, e := range elems {
			out[i] = e.AsBool()
		}
		return out
	case result.TypeText, result.TypeDate, result.TypeTime, result.TypeDateTime,
		result.TypeArray, result.TypeRange, result.TypeVariant, result.TypeOptional,
		result.TypeVarargs, result.TypeDynamic:
		out := make([]string, len(elems))
		for i, e := range elems {
			out[i] = e.String()
		}
		return out
	case result.TypeUndefined, result.TypeAny, result.TypeNull:
		panic(fmt.Sprintf("render: array element type %s has no host representation", elem))
	default:
		panic(fmt.Sprintf("render: unhandled array element type %v", elem.Kind))
	}
}
