package query

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vegasq/pqview/result"
)

// Aggregation folds the values of one group into a single value
type Aggregation struct {
	Name      string
	Signature Signature
	Eval      func(values []result.Value) (result.Value, error)
}

// AggregationRegistry manages aggregation lookup and registration
type AggregationRegistry struct {
	mu           sync.RWMutex
	aggregations map[string]*Aggregation
}

// NewAggregationRegistry creates an empty registry
func NewAggregationRegistry() *AggregationRegistry {
	return &AggregationRegistry{aggregations: make(map[string]*Aggregation)}
}

// Register registers an aggregation
func (r *AggregationRegistry) Register(a *Aggregation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aggregations[strings.ToUpper(a.Name)] = a
}

// Get retrieves an aggregation by name (case-insensitive)
func (r *AggregationRegistry) Get(name string) (*Aggregation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.aggregations[strings.ToUpper(name)]
	return a, ok
}

// StandardAggregations returns count, sum, avg, min, max and array_agg
func StandardAggregations() *AggregationRegistry {
	r := NewAggregationRegistry()
	any1 := []result.DataType{result.AnyType}
	num1 := []result.DataType{numeric}

	r.Register(&Aggregation{Name: "count", Signature: Signature{Params: any1, Return: result.IntegerType}, Eval: aggCount})
	r.Register(&Aggregation{Name: "sum", Signature: Signature{Params: num1, Return: numeric}, Eval: aggSum})
	r.Register(&Aggregation{Name: "avg", Signature: Signature{Params: num1, Return: result.FloatType}, Eval: aggAvg})
	r.Register(&Aggregation{Name: "min", Signature: Signature{Params: any1, Return: result.DynamicType}, Eval: aggExtreme(-1)})
	r.Register(&Aggregation{Name: "max", Signature: Signature{Params: any1, Return: result.DynamicType}, Eval: aggExtreme(1)})
	r.Register(&Aggregation{Name: "array_agg", Signature: Signature{Params: any1, Return: result.ArrayOf(result.DynamicType)}, Eval: aggArray})
	return r
}

// aggCount counts non-null values
func aggCount(values []result.Value) (result.Value, error) {
	n := int64(0)
	for _, v := range values {
		if !v.IsNull() {
			n++
		}
	}
	return result.Integer(n), nil
}

// aggSum stays Integer until a Float is seen. No non-null values yields null.
func aggSum(values []result.Value) (result.Value, error) {
	var (
		isum    int64
		fsum    float64
		isFloat bool
		seen    bool
	)
	for _, v := range values {
		switch v.Kind() {
		case result.KindNull:
			continue
		case result.KindInteger:
			isum += v.AsInt()
		case result.KindFloat:
			fsum += v.AsFloat()
			isFloat = true
		default:
			return result.Value{}, fmt.Errorf("sum expects numbers, got %s", v.Kind())
		}
		seen = true
	}
	switch {
	case !seen:
		return result.Null(), nil
	case isFloat:
		return result.Float(fsum + float64(isum)), nil
	default:
		return result.Integer(isum), nil
	}
}

func aggAvg(values []result.Value) (result.Value, error) {
	sum := 0.0
	n := 0
	for _, v := range values {
		switch v.Kind() {
		case result.KindNull:
			continue
		case result.KindInteger, result.KindFloat:
			sum += v.AsFloat()
			n++
		default:
			return result.Value{}, fmt.Errorf("avg expects numbers, got %s", v.Kind())
		}
	}
	if n == 0 {
		return result.Null(), nil
	}
	return result.Float(sum / float64(n)), nil
}

// aggExtreme returns min (sign -1) or max (sign 1) over non-null values
func aggExtreme(sign int) func([]result.Value) (result.Value, error) {
	return func(values []result.Value) (result.Value, error) {
		best := result.Null()
		for _, v := range values {
			if v.IsNull() {
				continue
			}
			if best.IsNull() {
				best = v
				continue
			}
			c, err := result.Compare(v, best)
			if err != nil {
				return result.Value{}, err
			}
			if c*sign > 0 {
				best = v
			}
		}
		return best, nil
	}
}

// aggArray collects every value of the group. An empty group yields null
// rather than an array of unknown element type.
func aggArray(values []result.Value) (result.Value, error) {
	if len(values) == 0 {
		return result.Null(), nil
	}
	return arrayOf(values)
}

// arrayOf builds an array typed by its elements: a single concrete kind
// when every element shares it, Dynamic otherwise.
func arrayOf(values []result.Value) (result.Value, error) {
	elem := result.DynamicType
	if len(values) > 0 && !values[0].IsNull() {
		elem = values[0].Type()
		for _, v := range values[1:] {
			if v.Kind() != values[0].Kind() {
				elem = result.DynamicType
				break
			}
		}
	}
	return result.NewArray(elem, values)
}
