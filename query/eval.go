package query

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/vegasq/pqview/result"
)

// ErrDivisionByZero is returned when dividing by zero
var ErrDivisionByZero = errors.New("division by zero")

// ErrIntegerOverflow is returned when Integer arithmetic leaves the int64 range
var ErrIntegerOverflow = errors.New("integer overflow")

// scope is the evaluation context of one expression. group is set while
// producing an aggregated row and holds every row of the group.
type scope struct {
	env     *Environment
	columns map[string]int
	row     []result.Value
	group   [][]result.Value
}

func (s *scope) withRow(row []result.Value) *scope {
	return &scope{env: s.env, columns: s.columns, row: row}
}

// eval evaluates expr with SQL three-valued logic: null operands propagate
// except where AND, OR, IS NULL and IN can decide without them
func (s *scope) eval(expr Expression) (result.Value, error) {
	switch e := expr.(type) {
	case *Literal:
		return e.Value, nil
	case *ColumnRef:
		idx, ok := s.columns[e.Name]
		if !ok || idx >= len(s.row) {
			return result.Null(), nil
		}
		return s.row[idx], nil
	case *GlobalRef:
		v, ok := s.env.Global(e.Name)
		if !ok {
			return result.Value{}, fmt.Errorf("undefined global variable %s", e.Name)
		}
		return v, nil
	case *UnaryExpr:
		return s.evalUnary(e)
	case *BinaryExpr:
		return s.evalBinary(e)
	case *LikeExpr:
		return s.evalLike(e)
	case *InExpr:
		return s.evalIn(e)
	case *BetweenExpr:
		return s.evalBetween(e)
	case *IsNullExpr:
		v, err := s.eval(e.Expr)
		if err != nil {
			return result.Value{}, err
		}
		return result.Boolean(v.IsNull() != e.Not), nil
	case *CallExpr:
		fn, ok := s.env.Functions.Get(e.Name)
		if !ok {
			return result.Value{}, fmt.Errorf("unknown function %s", e.Name)
		}
		args := make([]result.Value, len(e.Args))
		for i, a := range e.Args {
			v, err := s.eval(a)
			if err != nil {
				return result.Value{}, err
			}
			args[i] = v
		}
		v, err := fn.Eval(args)
		if err != nil {
			return result.Value{}, fmt.Errorf("%s: %w", e.Name, err)
		}
		return v, nil
	case *AggregateExpr:
		return s.evalAggregate(e)
	case *ArrayExpr:
		elems := make([]result.Value, len(e.Elements))
		for i, el := range e.Elements {
			v, err := s.eval(el)
			if err != nil {
				return result.Value{}, err
			}
			elems[i] = v
		}
		return arrayOf(elems)
	default:
		return result.Value{}, fmt.Errorf("unsupported expression %T", expr)
	}
}

func (s *scope) evalAggregate(e *AggregateExpr) (result.Value, error) {
	if s.group == nil {
		return result.Value{}, fmt.Errorf("aggregate function %s used outside an aggregated query", e.Name)
	}
	agg, ok := s.env.Aggregations.Get(e.Name)
	if !ok {
		return result.Value{}, fmt.Errorf("unknown aggregate function %s", e.Name)
	}
	values := make([]result.Value, len(s.group))
	for i, row := range s.group {
		if e.Arg == nil {
			values[i] = result.Boolean(true)
			continue
		}
		v, err := s.withRow(row).eval(e.Arg)
		if err != nil {
			return result.Value{}, err
		}
		values[i] = v
	}
	v, err := agg.Eval(values)
	if err != nil {
		return result.Value{}, fmt.Errorf("%s: %w", e.Name, err)
	}
	return v, nil
}

func (s *scope) evalUnary(e *UnaryExpr) (result.Value, error) {
	v, err := s.eval(e.Operand)
	if err != nil || v.IsNull() {
		return v, err
	}
	switch e.Operator {
	case TokenNot:
		if v.Kind() != result.KindBoolean {
			return result.Value{}, fmt.Errorf("NOT expects Boolean, got %s", v.Kind())
		}
		return result.Boolean(!v.AsBool()), nil
	case TokenMinus:
		switch v.Kind() {
		case result.KindInteger:
			if v.AsInt() == math.MinInt64 {
				return result.Value{}, fmt.Errorf("%w: -(%d)", ErrIntegerOverflow, v.AsInt())
			}
			return result.Integer(-v.AsInt()), nil
		case result.KindFloat:
			return result.Float(-v.AsFloat()), nil
		}
		return result.Value{}, fmt.Errorf("cannot negate %s", v.Kind())
	}
	return result.Value{}, fmt.Errorf("unsupported unary operator %s", e.Operator)
}

func (s *scope) evalBinary(e *BinaryExpr) (result.Value, error) {
	if e.Operator == TokenAnd || e.Operator == TokenOr {
		return s.evalLogical(e)
	}

	left, err := s.eval(e.Left)
	if err != nil {
		return result.Value{}, err
	}
	right, err := s.eval(e.Right)
	if err != nil {
		return result.Value{}, err
	}
	if left.IsNull() || right.IsNull() {
		return result.Null(), nil
	}

	if comparisonOps[e.Operator] {
		if e.Operator == TokenEqual || e.Operator == TokenNotEqual {
			eq, err := equalValues(left, right)
			if err != nil {
				return result.Value{}, err
			}
			return result.Boolean(eq == (e.Operator == TokenEqual)), nil
		}
		c, err := result.Compare(left, right)
		if err != nil {
			return result.Value{}, err
		}
		switch e.Operator {
		case TokenLess:
			return result.Boolean(c < 0), nil
		case TokenLessEqual:
			return result.Boolean(c <= 0), nil
		case TokenGreater:
			return result.Boolean(c > 0), nil
		default:
			return result.Boolean(c >= 0), nil
		}
	}
	return arithmetic(e.Operator, left, right)
}

// equalValues is = for non-null operands. Arrays and ranges compare
// element-wise; other kinds must be comparable.
func equalValues(a, b result.Value) (bool, error) {
	switch {
	case a.Kind() == result.KindArray || a.Kind() == result.KindRange:
		if a.Kind() != b.Kind() {
			return false, fmt.Errorf("cannot compare %s with %s", a.Kind(), b.Kind())
		}
		return result.Equal(a, b), nil
	}
	c, err := result.Compare(a, b)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

func (s *scope) evalLogical(e *BinaryExpr) (result.Value, error) {
	left, err := s.evalBool(e.Left)
	if err != nil {
		return result.Value{}, err
	}
	// Short circuit when the left side decides the result
	if !left.IsNull() {
		if e.Operator == TokenAnd && !left.AsBool() {
			return result.Boolean(false), nil
		}
		if e.Operator == TokenOr && left.AsBool() {
			return result.Boolean(true), nil
		}
	}
	right, err := s.evalBool(e.Right)
	if err != nil {
		return result.Value{}, err
	}
	switch {
	case right.IsNull():
		return result.Null(), nil
	case left.IsNull():
		if e.Operator == TokenAnd && !right.AsBool() {
			return result.Boolean(false), nil
		}
		if e.Operator == TokenOr && right.AsBool() {
			return result.Boolean(true), nil
		}
		return result.Null(), nil
	default:
		return right, nil
	}
}

func (s *scope) evalBool(expr Expression) (result.Value, error) {
	v, err := s.eval(expr)
	if err != nil {
		return result.Value{}, err
	}
	if !v.IsNull() && v.Kind() != result.KindBoolean {
		return result.Value{}, fmt.Errorf("expected Boolean operand, got %s", v.Kind())
	}
	return v, nil
}

// arithmetic applies + - * / % to non-null operands. Integer operands stay
// Integer; any Float operand makes the result Float.
func arithmetic(op TokenType, a, b result.Value) (result.Value, error) {
	if !isNumericKind(a.Kind()) || !isNumericKind(b.Kind()) {
		return result.Value{}, fmt.Errorf("operator %s expects numbers, got %s and %s", op, a.Kind(), b.Kind())
	}

	if a.Kind() == result.KindInteger && b.Kind() == result.KindInteger {
		return integerArithmetic(op, a.AsInt(), b.AsInt())
	}

	x, y := a.AsFloat(), b.AsFloat()
	switch op {
	case TokenPlus:
		return result.Float(x + y), nil
	case TokenMinus:
		return result.Float(x - y), nil
	case TokenStar:
		return result.Float(x * y), nil
	case TokenSlash:
		if y == 0 {
			return result.Value{}, ErrDivisionByZero
		}
		return result.Float(x / y), nil
	case TokenPercent:
		if y == 0 {
			return result.Value{}, ErrDivisionByZero
		}
		return result.Float(math.Mod(x, y)), nil
	}
	return result.Value{}, fmt.Errorf("unsupported operator %s", op)
}

// integerArithmetic is arithmetic over two Integers. Results outside the
// int64 range are errors, never wrapped values.
func integerArithmetic(op TokenType, x, y int64) (result.Value, error) {
	overflow := func() (result.Value, error) {
		return result.Value{}, fmt.Errorf("%w: %d %s %d", ErrIntegerOverflow, x, op, y)
	}
	switch op {
	case TokenPlus:
		sum := x + y
		if (y > 0 && sum < x) || (y < 0 && sum > x) {
			return overflow()
		}
		return result.Integer(sum), nil
	case TokenMinus:
		diff := x - y
		if (y < 0 && diff < x) || (y > 0 && diff > x) {
			return overflow()
		}
		return result.Integer(diff), nil
	case TokenStar:
		if x == 0 || y == 0 {
			return result.Integer(0), nil
		}
		product := x * y
		if product/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
			return overflow()
		}
		return result.Integer(product), nil
	case TokenSlash:
		if y == 0 {
			return result.Value{}, ErrDivisionByZero
		}
		if x == math.MinInt64 && y == -1 {
			return overflow()
		}
		return result.Integer(x / y), nil
	case TokenPercent:
		if y == 0 {
			return result.Value{}, ErrDivisionByZero
		}
		if y == -1 {
			return result.Integer(0), nil
		}
		return result.Integer(x % y), nil
	}
	return result.Value{}, fmt.Errorf("unsupported operator %s", op)
}

func isNumericKind(k result.Kind) bool {
	return k == result.KindInteger || k == result.KindFloat
}

func (s *scope) evalLike(e *LikeExpr) (result.Value, error) {
	v, err := s.eval(e.Expr)
	if err != nil {
		return result.Value{}, err
	}
	pattern, err := s.eval(e.Pattern)
	if err != nil {
		return result.Value{}, err
	}
	if v.IsNull() || pattern.IsNull() {
		return result.Null(), nil
	}
	if v.Kind() != result.KindText || pattern.Kind() != result.KindText {
		return result.Value{}, fmt.Errorf("LIKE expects Text operands, got %s and %s", v.Kind(), pattern.Kind())
	}
	return result.Boolean(matchLikePattern(v.AsText(), pattern.AsText()) != e.Not), nil
}

// matchLikePattern matches str against a LIKE pattern where % matches any
// run of characters and _ matches exactly one
func matchLikePattern(str, pattern string) bool {
	s, p := 0, 0
	// Position of the last % seen and the string offset it was tried at
	star, mark := -1, 0
	for s < len(str) {
		r, rsize := utf8.DecodeRuneInString(str[s:])
		if p < len(pattern) {
			pr, psize := utf8.DecodeRuneInString(pattern[p:])
			switch {
			case pr == '%':
				star, mark = p, s
				p += psize
				continue
			case pr == '_' || pr == r:
				s += rsize
				p += psize
				continue
			}
		}
		if star < 0 {
			return false
		}
		// Let the last % absorb one more character and retry
		_, msize := utf8.DecodeRuneInString(str[mark:])
		mark += msize
		s = mark
		p = star + 1
	}
	for p < len(pattern) && pattern[p] == '%' {
		p++
	}
	return p == len(pattern)
}

func (s *scope) evalIn(e *InExpr) (result.Value, error) {
	v, err := s.eval(e.Expr)
	if err != nil || v.IsNull() {
		return v, err
	}
	sawNull := false
	for _, candidate := range e.Values {
		c, err := s.eval(candidate)
		if err != nil {
			return result.Value{}, err
		}
		if c.IsNull() {
			sawNull = true
			continue
		}
		eq, err := equalValues(v, c)
		if err != nil {
			return result.Value{}, err
		}
		if eq {
			return result.Boolean(!e.Not), nil
		}
	}
	if sawNull {
		return result.Null(), nil
	}
	return result.Boolean(e.Not), nil
}

func (s *scope) evalBetween(e *BetweenExpr) (result.Value, error) {
	v, err := s.eval(e.Expr)
	if err != nil {
		return result.Value{}, err
	}
	lo, err := s.eval(e.Lower)
	if err != nil {
		return result.Value{}, err
	}
	hi, err := s.eval(e.Upper)
	if err != nil {
		return result.Value{}, err
	}
	if v.IsNull() || lo.IsNull() || hi.IsNull() {
		return result.Null(), nil
	}
	c1, err := result.Compare(v, lo)
	if err != nil {
		return result.Value{}, err
	}
	c2, err := result.Compare(v, hi)
	if err != nil {
		return result.Value{}, err
	}
	return result.Boolean((c1 >= 0 && c2 <= 0) != e.Not), nil
}

// truthy reports whether a filter condition keeps its row. Null rejects.
func truthy(v result.Value, clause string) (bool, error) {
	switch v.Kind() {
	case result.KindNull:
		return false, nil
	case result.KindBoolean:
		return v.AsBool(), nil
	default:
		return false, fmt.Errorf("%s condition must be Boolean, got %s", clause, v.Kind())
	}
}
