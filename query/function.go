package query

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/vegasq/pqview/result"
)

// Signature declares the parameter and return types of a function.
//
// Optional parameters may be omitted; a trailing Varargs parameter accepts
// zero or more arguments of its inner type.
type Signature struct {
	Params []result.DataType
	Return result.DataType
}

// MinArity returns the number of required arguments
func (s Signature) MinArity() int {
	n := 0
	for _, p := range s.Params {
		if p.Kind == result.TypeOptional || p.Kind == result.TypeVarargs {
			break
		}
		n++
	}
	return n
}

// MaxArity returns the maximum number of arguments (-1 for unlimited)
func (s Signature) MaxArity() int {
	if n := len(s.Params); n > 0 && s.Params[n-1].Kind == result.TypeVarargs {
		return -1
	}
	return len(s.Params)
}

// Param returns the declared type of the i-th argument
func (s Signature) Param(i int) result.DataType {
	if i < len(s.Params) {
		if p := s.Params[i]; p.Kind != result.TypeVarargs {
			return p
		}
	}
	if n := len(s.Params); n > 0 && s.Params[n-1].Kind == result.TypeVarargs {
		return s.Params[n-1]
	}
	return result.AnyType
}

// Function is a scalar function callable from queries
type Function struct {
	Name      string
	Signature Signature
	Eval      func(args []result.Value) (result.Value, error)
}

// FunctionRegistry manages function lookup and registration
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]*Function
}

// NewFunctionRegistry creates a new function registry
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]*Function),
	}
}

// Register registers a function
func (r *FunctionRegistry) Register(f *Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[strings.ToUpper(f.Name)] = f
}

// Get retrieves a function by name (case-insensitive)
func (r *FunctionRegistry) Get(name string) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, exists := r.functions[strings.ToUpper(name)]
	return f, exists
}

// nowFunc is swapped by tests
var nowFunc = time.Now

var numeric = result.VariantOf(result.IntegerType, result.FloatType)

// StandardFunctions returns a registry holding the built-in scalar functions
func StandardFunctions() *FunctionRegistry {
	r := NewFunctionRegistry()

	text := func(name string, fn func(string) string) *Function {
		return &Function{
			Name:      name,
			Signature: Signature{Params: []result.DataType{result.TextType}, Return: result.TextType},
			Eval: strict(func(args []result.Value) (result.Value, error) {
				return result.Text(fn(args[0].AsText())), nil
			}),
		}
	}
	r.Register(text("lower", strings.ToLower))
	r.Register(text("upper", strings.ToUpper))
	r.Register(text("trim", strings.TrimSpace))

	r.Register(&Function{
		Name: "len",
		Signature: Signature{
			Params: []result.DataType{result.VariantOf(result.TextType, result.ArrayOf(result.AnyType))},
			Return: result.IntegerType,
		},
		Eval: strict(evalLen),
	})
	r.Register(&Function{
		Name: "concat",
		Signature: Signature{
			Params: []result.DataType{result.AnyType, result.VarargsOf(result.AnyType)},
			Return: result.TextType,
		},
		Eval: evalConcat,
	})
	r.Register(&Function{
		Name:      "abs",
		Signature: Signature{Params: []result.DataType{numeric}, Return: numeric},
		Eval:      strict(evalAbs),
	})
	r.Register(&Function{
		Name: "round",
		Signature: Signature{
			Params: []result.DataType{numeric, result.OptionalOf(result.IntegerType)},
			Return: result.FloatType,
		},
		Eval: strict(evalRound),
	})
	r.Register(&Function{
		Name: "year",
		Signature: Signature{
			Params: []result.DataType{result.VariantOf(result.DateType, result.DateTimeType)},
			Return: result.IntegerType,
		},
		Eval: strict(evalYear),
	})
	r.Register(&Function{
		Name:      "now",
		Signature: Signature{Return: result.DateTimeType},
		Eval: func([]result.Value) (result.Value, error) {
			return result.DateTime(nowFunc().Unix()), nil
		},
	})
	r.Register(&Function{
		Name:      "current_date",
		Signature: Signature{Return: result.DateType},
		Eval: func([]result.Value) (result.Value, error) {
			return result.Date(nowFunc()), nil
		},
	})
	r.Register(&Function{
		Name:      "current_time",
		Signature: Signature{Return: result.TimeType},
		Eval: func([]result.Value) (result.Value, error) {
			t := nowFunc().UTC()
			midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return result.Time(t.Sub(midnight).Truncate(time.Second)), nil
		},
	})
	r.Register(&Function{
		Name: "range",
		Signature: Signature{
			Params: []result.DataType{result.AnyType, result.AnyType},
			Return: result.RangeOf(result.DynamicType),
		},
		Eval: strict(evalRange),
	})
	r.Register(&Function{
		Name: "coalesce",
		Signature: Signature{
			Params: []result.DataType{result.AnyType, result.VarargsOf(result.AnyType)},
			Return: result.DynamicType,
		},
		Eval: func(args []result.Value) (result.Value, error) {
			for _, a := range args {
				if !a.IsNull() {
					return a, nil
				}
			}
			return result.Null(), nil
		},
	})

	return r
}

// strict wraps fn so any null argument yields null
func strict(fn func([]result.Value) (result.Value, error)) func([]result.Value) (result.Value, error) {
	return func(args []result.Value) (result.Value, error) {
		for _, a := range args {
			if a.IsNull() {
				return result.Null(), nil
			}
		}
		return fn(args)
	}
}

func evalLen(args []result.Value) (result.Value, error) {
	switch v := args[0]; v.Kind() {
	case result.KindText:
		return result.Integer(int64(utf8.RuneCountInString(v.AsText()))), nil
	case result.KindArray:
		_, elems := v.AsArray()
		return result.Integer(int64(len(elems))), nil
	default:
		return result.Value{}, fmt.Errorf("len expects Text or Array, got %s", v.Kind())
	}
}

// evalConcat joins the string forms of its arguments; nulls are skipped
func evalConcat(args []result.Value) (result.Value, error) {
	var b strings.Builder
	for _, a := range args {
		if a.IsNull() {
			continue
		}
		b.WriteString(a.String())
	}
	return result.Text(b.String()), nil
}

func evalAbs(args []result.Value) (result.Value, error) {
	switch v := args[0]; v.Kind() {
	case result.KindInteger:
		if n := v.AsInt(); n < 0 {
			return result.Integer(-n), nil
		}
		return v, nil
	case result.KindFloat:
		return result.Float(math.Abs(v.AsFloat())), nil
	default:
		return result.Value{}, fmt.Errorf("abs expects a number, got %s", v.Kind())
	}
}

func evalRound(args []result.Value) (result.Value, error) {
	v := args[0]
	if v.Kind() != result.KindInteger && v.Kind() != result.KindFloat {
		return result.Value{}, fmt.Errorf("round expects a number, got %s", v.Kind())
	}
	digits := int64(0)
	if len(args) > 1 {
		if args[1].Kind() != result.KindInteger {
			return result.Value{}, fmt.Errorf("round precision must be Integer, got %s", args[1].Kind())
		}
		digits = args[1].AsInt()
	}
	scale := math.Pow(10, float64(digits))
	return result.Float(math.Round(v.AsFloat()*scale) / scale), nil
}

func evalYear(args []result.Value) (result.Value, error) {
	switch v := args[0]; v.Kind() {
	case result.KindDate:
		return result.Integer(int64(v.AsDate().Year())), nil
	case result.KindDateTime:
		return result.Integer(int64(time.Unix(v.AsDateTime(), 0).UTC().Year())), nil
	default:
		return result.Value{}, fmt.Errorf("year expects Date or DateTime, got %s", v.Kind())
	}
}

func evalRange(args []result.Value) (result.Value, error) {
	lo, hi := args[0], args[1]
	c, err := result.Compare(lo, hi)
	if err != nil {
		return result.Value{}, fmt.Errorf("range bounds: %w", err)
	}
	if c > 0 {
		return result.Value{}, fmt.Errorf("range lower bound %s is greater than upper bound %s", lo, hi)
	}
	return result.Range(lo, hi), nil
}
