package query

import (
	"fmt"
	"strings"

	"github.com/vegasq/pqview/result"
)

// Statement is a parsed query statement
type Statement interface {
	statement()
}

// Selection is one output column of a SELECT
type Selection struct {
	Title string
	Expr  Expression
}

// OrderItem is one ORDER BY key. Column indexes the row value the key is
// read from: a visible selection or a hidden one.
type OrderItem struct {
	Expr   Expression
	Desc   bool
	Column int
}

// SelectStatement represents a SELECT query
type SelectStatement struct {
	Distinct bool
	Table    string   // "" for SELECT without FROM
	Fields   []string // columns requested from the data provider

	// Hidden selections are evaluated ahead of the visible ones and lead
	// every result row. They carry ORDER BY keys that are not selected.
	Hidden     []Selection
	Selections []Selection

	Where   Expression
	GroupBy []Expression
	Having  Expression
	OrderBy []OrderItem
	Limit   *int64
	Offset  int64

	// Aggregated is set when any selection, HAVING or ORDER BY key calls an
	// aggregation function.
	Aggregated bool
}

// ShowTablesStatement represents SHOW TABLES
type ShowTablesStatement struct{}

// DescribeStatement represents DESCRIBE table
type DescribeStatement struct {
	Table string
}

// SetStatement represents SET @name = expr
type SetStatement struct {
	Name  string
	Value Expression
}

func (*SelectStatement) statement()     {}
func (*ShowTablesStatement) statement() {}
func (*DescribeStatement) statement()   {}
func (*SetStatement) statement()        {}

// Expression is a node of an expression tree
type Expression interface {
	String() string
	expression()
}

// Literal is a constant value
type Literal struct {
	Value result.Value
}

// span is the token range an expression was parsed from
type span struct {
	start, end int
}

// ColumnRef references a column of the queried table
type ColumnRef struct {
	Name string
	span span
}

// GlobalRef references a global variable
type GlobalRef struct {
	Name string
	span span
}

// UnaryExpr is NOT x or -x
type UnaryExpr struct {
	Operator TokenType
	Operand  Expression
}

// BinaryExpr is an arithmetic, comparison or logical operation
type BinaryExpr struct {
	Operator TokenType
	Left     Expression
	Right    Expression
}

// LikeExpr is x [NOT] LIKE pattern
type LikeExpr struct {
	Expr    Expression
	Pattern Expression
	Not     bool
}

// InExpr is x [NOT] IN (a, b, ...)
type InExpr struct {
	Expr   Expression
	Values []Expression
	Not    bool
}

// BetweenExpr is x [NOT] BETWEEN lo AND hi
type BetweenExpr struct {
	Expr  Expression
	Lower Expression
	Upper Expression
	Not   bool
}

// IsNullExpr is x IS [NOT] NULL
type IsNullExpr struct {
	Expr Expression
	Not  bool
}

// CallExpr is a scalar function call
type CallExpr struct {
	Name string
	Args []Expression
	span span
}

// AggregateExpr is an aggregation call; Arg is nil for count(*)
type AggregateExpr struct {
	Name string
	Arg  Expression
	span span
}

// ArrayExpr is an array literal [a, b, ...]
type ArrayExpr struct {
	Elements []Expression
}

func (*Literal) expression()       {}
func (*ColumnRef) expression()     {}
func (*GlobalRef) expression()     {}
func (*UnaryExpr) expression()     {}
func (*BinaryExpr) expression()    {}
func (*LikeExpr) expression()      {}
func (*InExpr) expression()        {}
func (*BetweenExpr) expression()   {}
func (*IsNullExpr) expression()    {}
func (*CallExpr) expression()      {}
func (*AggregateExpr) expression() {}
func (*ArrayExpr) expression()     {}

func (e *Literal) String() string {
	if e.Value.Kind() == result.KindText {
		return "'" + e.Value.AsText() + "'"
	}
	return e.Value.String()
}

func (e *ColumnRef) String() string { return e.Name }
func (e *GlobalRef) String() string { return e.Name }

func (e *UnaryExpr) String() string {
	operand := e.Operand.String()
	if _, ok := e.Operand.(*BinaryExpr); ok {
		operand = "(" + operand + ")"
	}
	if e.Operator == TokenNot {
		return "NOT " + operand
	}
	return e.Operator.String() + operand
}

// precedence of binary operators, higher binds tighter
var precedence = map[TokenType]int{
	TokenOr:           1,
	TokenAnd:          2,
	TokenEqual:        3,
	TokenNotEqual:     3,
	TokenLess:         3,
	TokenLessEqual:    3,
	TokenGreater:      3,
	TokenGreaterEqual: 3,
	TokenPlus:         4,
	TokenMinus:        4,
	TokenStar:         5,
	TokenSlash:        5,
	TokenPercent:      5,
}

func (e *BinaryExpr) String() string {
	prec := precedence[e.Operator]
	left, right := e.Left.String(), e.Right.String()
	if b, ok := e.Left.(*BinaryExpr); ok && precedence[b.Operator] < prec {
		left = "(" + left + ")"
	}
	if b, ok := e.Right.(*BinaryExpr); ok && precedence[b.Operator] <= prec {
		right = "(" + right + ")"
	}
	return fmt.Sprintf("%s %s %s", left, e.Operator, right)
}

func (e *LikeExpr) String() string {
	return fmt.Sprintf("%s %sLIKE %s", e.Expr, not(e.Not), e.Pattern)
}

func (e *InExpr) String() string {
	return fmt.Sprintf("%s %sIN (%s)", e.Expr, not(e.Not), joinExprs(e.Values))
}

func (e *BetweenExpr) String() string {
	return fmt.Sprintf("%s %sBETWEEN %s AND %s", e.Expr, not(e.Not), e.Lower, e.Upper)
}

func (e *IsNullExpr) String() string {
	return fmt.Sprintf("%s IS %sNULL", e.Expr, not(e.Not))
}

func (e *CallExpr) String() string {
	return fmt.Sprintf("%s(%s)", e.Name, joinExprs(e.Args))
}

func (e *AggregateExpr) String() string {
	if e.Arg == nil {
		return e.Name + "(*)"
	}
	return fmt.Sprintf("%s(%s)", e.Name, e.Arg)
}

func (e *ArrayExpr) String() string {
	return "[" + joinExprs(e.Elements) + "]"
}

func not(negated bool) string {
	if negated {
		return "NOT "
	}
	return ""
}

func joinExprs(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// hasAggregate reports whether expr contains an aggregation call
func hasAggregate(expr Expression) bool {
	found := false
	walk(expr, func(e Expression) {
		if _, ok := e.(*AggregateExpr); ok {
			found = true
		}
	})
	return found
}

// walk visits expr and every sub-expression
func walk(expr Expression, visit func(Expression)) {
	if expr == nil {
		return
	}
	visit(expr)
	for _, child := range children(expr) {
		walk(child, visit)
	}
}

// children returns the direct sub-expressions of expr
func children(expr Expression) []Expression {
	switch e := expr.(type) {
	case *UnaryExpr:
		return []Expression{e.Operand}
	case *BinaryExpr:
		return []Expression{e.Left, e.Right}
	case *LikeExpr:
		return []Expression{e.Expr, e.Pattern}
	case *InExpr:
		return append([]Expression{e.Expr}, e.Values...)
	case *BetweenExpr:
		return []Expression{e.Expr, e.Lower, e.Upper}
	case *IsNullExpr:
		return []Expression{e.Expr}
	case *CallExpr:
		return e.Args
	case *AggregateExpr:
		if e.Arg == nil {
			return nil
		}
		return []Expression{e.Arg}
	case *ArrayExpr:
		return e.Elements
	default:
		return nil
	}
}
