package query

import (
	"testing"

	"github.com/vegasq/pqview/result"
)

func TestSignatureArity(t *testing.T) {
	tests := []struct {
		name     string
		sig      Signature
		min, max int
	}{
		{"no params", Signature{}, 0, 0},
		{"fixed", Signature{Params: []result.DataType{result.TextType, result.IntegerType}}, 2, 2},
		{"optional", Signature{Params: []result.DataType{result.FloatType, result.OptionalOf(result.IntegerType)}}, 1, 2},
		{"varargs", Signature{Params: []result.DataType{result.AnyType, result.VarargsOf(result.AnyType)}}, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sig.MinArity(); got != tt.min {
				t.Errorf("MinArity() = %d, want %d", got, tt.min)
			}
			if got := tt.sig.MaxArity(); got != tt.max {
				t.Errorf("MaxArity() = %d, want %d", got, tt.max)
			}
		})
	}
}

func TestFunctionRegistryCaseInsensitive(t *testing.T) {
	r := StandardFunctions()
	for _, name := range []string{"lower", "LOWER", "Lower"} {
		if _, ok := r.Get(name); !ok {
			t.Errorf("Get(%q) not found", name)
		}
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) found a function")
	}
}

func TestStandardFunctions(t *testing.T) {
	r := StandardFunctions()
	arr := result.MustArray(result.IntegerType, []result.Value{result.Integer(1), result.Integer(2)})

	tests := []struct {
		fn   string
		args []result.Value
		want string
	}{
		{"lower", []result.Value{result.Text("MiXed")}, "mixed"},
		{"upper", []result.Value{result.Text("MiXed")}, "MIXED"},
		{"trim", []result.Value{result.Text("  pad  ")}, "pad"},
		{"len", []result.Value{result.Text("héllo")}, "5"},
		{"len", []result.Value{arr}, "2"},
		{"concat", []result.Value{result.Text("a"), result.Null(), result.Integer(1)}, "a1"},
		{"abs", []result.Value{result.Float(-2.5)}, "2.5"},
		{"round", []result.Value{result.Float(2.5)}, "3"},
		{"round", []result.Value{result.Float(1.236), result.Integer(2)}, "1.24"},
		{"lower", []result.Value{result.Null()}, "NULL"},
		{"coalesce", []result.Value{result.Null(), result.Null()}, "NULL"},
		{"year", []result.Value{result.DateTime(1704067200)}, "2024"},
		{"range", []result.Value{result.Integer(1), result.Integer(1)}, "1..1"},
	}
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			fn, ok := r.Get(tt.fn)
			if !ok {
				t.Fatalf("function %s not registered", tt.fn)
			}
			got, err := fn.Eval(tt.args)
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("%s(%v) = %s, want %s", tt.fn, tt.args, got, tt.want)
			}
		})
	}
}

func TestStandardAggregations(t *testing.T) {
	r := StandardAggregations()
	i, f, n := result.Integer, result.Float, result.Null()

	tests := []struct {
		agg    string
		values []result.Value
		want   string
	}{
		{"count", []result.Value{i(1), n, i(3)}, "2"},
		{"count", nil, "0"},
		{"sum", []result.Value{i(1), i(2), n}, "3"},
		{"sum", []result.Value{i(1), f(0.5)}, "1.5"},
		{"sum", []result.Value{n}, "NULL"},
		{"avg", []result.Value{i(1), i(2)}, "1.5"},
		{"min", []result.Value{i(3), n, f(1.5)}, "1.5"},
		{"max", []result.Value{result.Text("a"), result.Text("c"), result.Text("b")}, "c"},
		{"array_agg", []result.Value{i(1), i(2)}, "[1, 2]"},
		{"array_agg", []result.Value{i(1), n}, "[1, NULL]"},
		{"array_agg", nil, "NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.agg, func(t *testing.T) {
			agg, ok := r.Get(tt.agg)
			if !ok {
				t.Fatalf("aggregation %s not registered", tt.agg)
			}
			got, err := agg.Eval(tt.values)
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("%s(%v) = %s, want %s", tt.agg, tt.values, got, tt.want)
			}
		})
	}
}

func TestArrayAggElementType(t *testing.T) {
	agg, _ := StandardAggregations().Get("array_agg")

	v, err := agg.Eval([]result.Value{result.Integer(1), result.Integer(2)})
	if err != nil {
		t.Fatal(err)
	}
	if elem, _ := v.AsArray(); elem.Kind != result.TypeInteger {
		t.Errorf("element type = %v, want Integer", elem)
	}

	v, err = agg.Eval([]result.Value{result.Integer(1), result.Text("x")})
	if err != nil {
		t.Fatal(err)
	}
	if elem, _ := v.AsArray(); elem.Kind != result.TypeDynamic {
		t.Errorf("mixed element type = %v, want Dynamic", elem)
	}
}

func TestAggregationErrors(t *testing.T) {
	r := StandardAggregations()
	for _, name := range []string{"sum", "avg"} {
		agg, _ := r.Get(name)
		if _, err := agg.Eval([]result.Value{result.Text("x")}); err == nil {
			t.Errorf("%s over Text expected an error", name)
		}
	}
	agg, _ := r.Get("min")
	if _, err := agg.Eval([]result.Value{result.Text("x"), result.Integer(1)}); err == nil {
		t.Error("min over mixed kinds expected an error")
	}
}
