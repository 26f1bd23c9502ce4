package query

import (
	"math"
	"strconv"
	"strings"

	"github.com/vegasq/pqview/diagnostic"
	"github.com/vegasq/pqview/result"
)

// Parser builds statements from tokens and validates them against an
// Environment
type Parser struct {
	tokens []Token
	pos    int
	env    *Environment
	table  string
	depth  *nesting
}

// Parse parses one statement. An optional trailing semicolon is accepted.
func Parse(tokens []Token, env *Environment) (Statement, *diagnostic.Diagnostic) {
	p := &Parser{tokens: tokens, env: env, depth: newNesting(MaxExpressionDepth)}
	if len(tokens) == 0 {
		return nil, diagnostic.Error("empty query")
	}

	var (
		stmt Statement
		diag *diagnostic.Diagnostic
	)
	switch tok := p.current(); tok.Type {
	case TokenSelect:
		stmt, diag = p.parseSelect()
	case TokenShow:
		stmt, diag = p.parseShowTables()
	case TokenDescribe:
		stmt, diag = p.parseDescribe()
	case TokenSet:
		stmt, diag = p.parseSet()
	default:
		return nil, p.errorAt(tok, "unexpected statement start "+quote(tok)).
			AddHelp("statements start with SELECT, SHOW, DESCRIBE or SET")
	}
	if diag != nil {
		return nil, diag
	}

	if p.is(TokenSemicolon) {
		p.advance()
	}
	if !p.done() {
		return nil, p.errorAt(p.current(), "unexpected token "+quote(p.current()))
	}
	return stmt, nil
}

func (p *Parser) done() bool { return p.pos >= len(p.tokens) }

func (p *Parser) current() Token {
	if p.done() {
		end := 0
		if n := len(p.tokens); n > 0 {
			end = p.tokens[n-1].End
		}
		return Token{Type: -1, Start: end, End: end}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: -1}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() Token {
	tok := p.current()
	if !p.done() {
		p.pos++
	}
	return tok
}

func (p *Parser) is(t TokenType) bool {
	return !p.done() && p.tokens[p.pos].Type == t
}

// expect consumes a token of type t or reports what was found instead
func (p *Parser) expect(t TokenType, what string) (Token, *diagnostic.Diagnostic) {
	if !p.is(t) {
		return Token{}, p.errorAt(p.current(), "expected "+what+", found "+quote(p.current()))
	}
	return p.advance(), nil
}

func (p *Parser) errorAt(tok Token, msg string) *diagnostic.Diagnostic {
	return diagnostic.Error(msg).WithLocation(tok.Start, tok.End)
}

func (p *Parser) errorSpan(s span, msg string) *diagnostic.Diagnostic {
	return diagnostic.Error(msg).WithLocation(s.start, s.end)
}

func quote(tok Token) string {
	if tok.Type < 0 {
		return "end of query"
	}
	return "'" + tok.Value + "'"
}

func (p *Parser) parseShowTables() (Statement, *diagnostic.Diagnostic) {
	p.advance()
	if _, diag := p.expect(TokenTables, "TABLES after SHOW"); diag != nil {
		return nil, diag
	}
	return &ShowTablesStatement{}, nil
}

func (p *Parser) parseDescribe() (Statement, *diagnostic.Diagnostic) {
	p.advance()
	tok, diag := p.expect(TokenIdent, "table name after DESCRIBE")
	if diag != nil {
		return nil, diag
	}
	if !p.env.Schema.HasTable(tok.Value) {
		return nil, p.unknownTable(tok)
	}
	return &DescribeStatement{Table: tok.Value}, nil
}

func (p *Parser) parseSet() (Statement, *diagnostic.Diagnostic) {
	p.advance()
	name, diag := p.expect(TokenGlobal, "global variable name such as @limit after SET")
	if diag != nil {
		return nil, diag
	}
	if !p.is(TokenEqual) && !p.is(TokenColonEqual) {
		return nil, p.errorAt(p.current(), "expected '=' or ':=' after "+name.Value)
	}
	p.advance()

	value, diag := p.parseExpression()
	if diag != nil {
		return nil, diag
	}
	if diag := p.checkNoColumns(value, "SET"); diag != nil {
		return nil, diag
	}
	if _, diag := p.resolve(value, false); diag != nil {
		return nil, diag
	}
	return &SetStatement{Name: name.Value, Value: value}, nil
}

func (p *Parser) unknownTable(tok Token) *diagnostic.Diagnostic {
	d := p.errorAt(tok, "unknown table '"+tok.Value+"'")
	if names := p.env.Schema.TableNames(); len(names) > 0 {
		d.AddNote("available tables: " + strings.Join(names, ", "))
	}
	return d
}

// parseSelect parses a SELECT statement
func (p *Parser) parseSelect() (Statement, *diagnostic.Diagnostic) {
	p.advance()
	stmt := &SelectStatement{}

	if p.is(TokenDistinct) {
		p.advance()
		stmt.Distinct = true
	}

	star, starTok := false, Token{}
	var aliases []*Token
	if p.is(TokenStar) {
		starTok = p.advance()
		star = true
	} else {
		for {
			expr, diag := p.parseExpression()
			if diag != nil {
				return nil, diag
			}
			var alias *Token
			if p.is(TokenAs) {
				p.advance()
				tok, diag := p.expect(TokenIdent, "alias after AS")
				if diag != nil {
					return nil, diag
				}
				alias = &tok
			}
			stmt.Selections = append(stmt.Selections, Selection{Expr: expr})
			aliases = append(aliases, alias)
			if !p.is(TokenComma) {
				break
			}
			p.advance()
		}
	}

	if p.is(TokenFrom) {
		p.advance()
		tok, diag := p.expect(TokenIdent, "table name after FROM")
		if diag != nil {
			return nil, diag
		}
		if !p.env.Schema.HasTable(tok.Value) {
			return nil, p.unknownTable(tok)
		}
		stmt.Table = tok.Value
		p.table = tok.Value
	}

	if star {
		if stmt.Table == "" {
			return nil, p.errorAt(starTok, "SELECT * requires a FROM clause")
		}
		for _, col := range p.env.Schema.Tables[stmt.Table] {
			stmt.Selections = append(stmt.Selections, Selection{Title: col, Expr: &ColumnRef{Name: col}})
			aliases = append(aliases, nil)
		}
	}

	if diag := p.parseSelectClauses(stmt); diag != nil {
		return nil, diag
	}

	for i := range stmt.Selections {
		if stmt.Selections[i].Title != "" {
			continue
		}
		if aliases[i] != nil {
			stmt.Selections[i].Title = aliases[i].Value
		} else {
			stmt.Selections[i].Title = stmt.Selections[i].Expr.String()
		}
	}
	seen := make(map[string]bool, len(stmt.Selections))
	for i, sel := range stmt.Selections {
		if seen[sel.Title] {
			d := diagnostic.Errorf("duplicate column title '%s'", sel.Title)
			if aliases[i] != nil {
				d.WithLocation(aliases[i].Start, aliases[i].End)
			}
			return nil, d.AddHelp("use AS to give the column a distinct name")
		}
		seen[sel.Title] = true
	}

	return stmt, p.analyzeSelect(stmt)
}

// parseSelectClauses parses everything after FROM
func (p *Parser) parseSelectClauses(stmt *SelectStatement) *diagnostic.Diagnostic {
	var diag *diagnostic.Diagnostic
	if p.is(TokenWhere) {
		p.advance()
		if stmt.Where, diag = p.parseExpression(); diag != nil {
			return diag
		}
	}

	if p.is(TokenGroup) {
		p.advance()
		if _, diag = p.expect(TokenBy, "BY after GROUP"); diag != nil {
			return diag
		}
		for {
			expr, diag := p.parseExpression()
			if diag != nil {
				return diag
			}
			stmt.GroupBy = append(stmt.GroupBy, expr)
			if !p.is(TokenComma) {
				break
			}
			p.advance()
		}
	}

	if p.is(TokenHaving) {
		p.advance()
		if stmt.Having, diag = p.parseExpression(); diag != nil {
			return diag
		}
	}

	if p.is(TokenOrder) {
		p.advance()
		if _, diag = p.expect(TokenBy, "BY after ORDER"); diag != nil {
			return diag
		}
		for {
			expr, diag := p.parseExpression()
			if diag != nil {
				return diag
			}
			item := OrderItem{Expr: expr}
			if p.is(TokenAsc) {
				p.advance()
			} else if p.is(TokenDesc) {
				p.advance()
				item.Desc = true
			}
			stmt.OrderBy = append(stmt.OrderBy, item)
			if !p.is(TokenComma) {
				break
			}
			p.advance()
		}
	}

	for p.is(TokenLimit) || p.is(TokenOffset) {
		kw := p.advance()
		n, diag := p.parseCount(kw)
		if diag != nil {
			return diag
		}
		if kw.Type == TokenLimit {
			if stmt.Limit != nil {
				return p.errorAt(kw, "duplicate LIMIT clause")
			}
			stmt.Limit = &n
		} else {
			stmt.Offset = n
		}
	}
	return nil
}

// parseCount parses the non-negative integer after LIMIT or OFFSET. A
// global variable holding an Integer is accepted too.
func (p *Parser) parseCount(kw Token) (int64, *diagnostic.Diagnostic) {
	clause := strings.ToUpper(kw.Value)
	tok := p.current()
	switch tok.Type {
	case TokenInteger:
		p.advance()
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return 0, p.errorAt(tok, "invalid "+clause+" value "+quote(tok))
		}
		return n, nil
	case TokenGlobal:
		p.advance()
		v, ok := p.env.Global(tok.Value)
		if !ok {
			return 0, p.errorAt(tok, "undefined global variable "+tok.Value)
		}
		if v.Kind() != result.KindInteger || v.AsInt() < 0 {
			return 0, p.errorAt(tok, clause+" expects a non-negative Integer, "+tok.Value+" is "+v.Kind().String())
		}
		return v.AsInt(), nil
	default:
		return 0, p.errorAt(tok, "expected a number after "+clause+", found "+quote(tok))
	}
}

// analyzeSelect resolves names and types, enforces aggregate placement and
// assigns ORDER BY keys to visible or hidden columns
func (p *Parser) analyzeSelect(stmt *SelectStatement) *diagnostic.Diagnostic {
	if stmt.Where != nil {
		if diag := p.rejectAggregate(stmt.Where, "WHERE"); diag != nil {
			return diag
		}
	}
	for _, g := range stmt.GroupBy {
		if diag := p.rejectAggregate(g, "GROUP BY"); diag != nil {
			return diag
		}
	}

	for _, sel := range stmt.Selections {
		stmt.Aggregated = stmt.Aggregated || hasAggregate(sel.Expr)
	}
	if stmt.Having != nil {
		stmt.Aggregated = stmt.Aggregated || hasAggregate(stmt.Having)
	}

	for i := range stmt.OrderBy {
		item := &stmt.OrderBy[i]
		visible := -1
		for j, sel := range stmt.Selections {
			if ref, ok := item.Expr.(*ColumnRef); ok && ref.Name == sel.Title {
				visible = j
				break
			}
			if item.Expr.String() == sel.Expr.String() {
				visible = j
				break
			}
		}
		if visible >= 0 {
			item.Column = -1 - visible
			continue
		}
		stmt.Aggregated = stmt.Aggregated || hasAggregate(item.Expr)
		item.Column = len(stmt.Hidden)
		stmt.Hidden = append(stmt.Hidden, Selection{Title: item.Expr.String(), Expr: item.Expr})
	}
	for i := range stmt.OrderBy {
		if c := stmt.OrderBy[i].Column; c < 0 {
			stmt.OrderBy[i].Column = len(stmt.Hidden) + (-1 - c)
		}
	}

	exprs := []Expression{stmt.Where, stmt.Having}
	exprs = append(exprs, stmt.GroupBy...)
	for _, s := range stmt.Hidden {
		exprs = append(exprs, s.Expr)
	}
	for _, s := range stmt.Selections {
		exprs = append(exprs, s.Expr)
	}
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if _, diag := p.resolve(e, false); diag != nil {
			return diag
		}
	}

	if stmt.Aggregated || len(stmt.GroupBy) > 0 {
		keys := make(map[string]bool, len(stmt.GroupBy))
		for _, g := range stmt.GroupBy {
			keys[g.String()] = true
		}
		check := append([]Selection{}, stmt.Hidden...)
		check = append(check, stmt.Selections...)
		for _, sel := range check {
			if diag := p.checkGrouped(sel.Expr, keys); diag != nil {
				return diag
			}
		}
	}

	stmt.Fields = p.collectFields(exprs)
	return nil
}

// checkGrouped rejects column references outside aggregates that are not
// GROUP BY keys
func (p *Parser) checkGrouped(expr Expression, keys map[string]bool) *diagnostic.Diagnostic {
	if keys[expr.String()] {
		return nil
	}
	switch e := expr.(type) {
	case *AggregateExpr:
		return nil
	case *ColumnRef:
		return p.errorSpan(e.span, "column '"+e.Name+"' must appear in GROUP BY or be used in an aggregate function")
	}
	for _, child := range children(expr) {
		if diag := p.checkGrouped(child, keys); diag != nil {
			return diag
		}
	}
	return nil
}

func (p *Parser) rejectAggregate(expr Expression, clause string) *diagnostic.Diagnostic {
	var found *AggregateExpr
	walk(expr, func(e Expression) {
		if agg, ok := e.(*AggregateExpr); ok && found == nil {
			found = agg
		}
	})
	if found != nil {
		return p.errorSpan(found.span, "aggregate function "+found.Name+" is not allowed in "+clause).
			AddHelp("filter aggregated values with HAVING")
	}
	return nil
}

func (p *Parser) checkNoColumns(expr Expression, clause string) *diagnostic.Diagnostic {
	var found *ColumnRef
	walk(expr, func(e Expression) {
		if ref, ok := e.(*ColumnRef); ok && found == nil {
			found = ref
		}
	})
	if found != nil {
		return p.errorSpan(found.span, "column '"+found.Name+"' cannot be used in "+clause)
	}
	return nil
}

// collectFields returns the distinct columns referenced by exprs in table
// declaration order
func (p *Parser) collectFields(exprs []Expression) []string {
	used := make(map[string]bool)
	for _, e := range exprs {
		walk(e, func(e Expression) {
			if ref, ok := e.(*ColumnRef); ok {
				used[ref.Name] = true
			}
		})
	}
	var fields []string
	for _, col := range p.env.Schema.Tables[p.table] {
		if used[col] {
			fields = append(fields, col)
		}
	}
	return fields
}

// parseExpression parses an expression
func (p *Parser) parseExpression() (Expression, *diagnostic.Diagnostic) {
	if err := p.depth.push(); err != nil {
		return nil, p.errorAt(p.current(), err.Error())
	}
	defer p.depth.pop()
	return p.parseOr()
}

func (p *Parser) parseOr() (Expression, *diagnostic.Diagnostic) {
	left, diag := p.parseAnd()
	if diag != nil {
		return nil, diag
	}
	for p.is(TokenOr) {
		p.advance()
		right, diag := p.parseAnd()
		if diag != nil {
			return nil, diag
		}
		left = &BinaryExpr{Operator: TokenOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expression, *diagnostic.Diagnostic) {
	left, diag := p.parseNot()
	if diag != nil {
		return nil, diag
	}
	for p.is(TokenAnd) {
		p.advance()
		right, diag := p.parseNot()
		if diag != nil {
			return nil, diag
		}
		left = &BinaryExpr{Operator: TokenAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expression, *diagnostic.Diagnostic) {
	if !p.is(TokenNot) {
		return p.parseComparison()
	}
	p.advance()
	if err := p.depth.push(); err != nil {
		return nil, p.errorAt(p.current(), err.Error())
	}
	defer p.depth.pop()
	operand, diag := p.parseNot()
	if diag != nil {
		return nil, diag
	}
	return &UnaryExpr{Operator: TokenNot, Operand: operand}, nil
}

var comparisonOps = map[TokenType]bool{
	TokenEqual: true, TokenNotEqual: true,
	TokenLess: true, TokenLessEqual: true,
	TokenGreater: true, TokenGreaterEqual: true,
}

func (p *Parser) parseComparison() (Expression, *diagnostic.Diagnostic) {
	left, diag := p.parseAdditive()
	if diag != nil {
		return nil, diag
	}

	tok := p.current()
	if !p.done() && comparisonOps[tok.Type] {
		p.advance()
		right, diag := p.parseAdditive()
		if diag != nil {
			return nil, diag
		}
		return &BinaryExpr{Operator: tok.Type, Left: left, Right: right}, nil
	}

	negated := false
	if p.is(TokenNot) && (p.peek().Type == TokenLike || p.peek().Type == TokenIn || p.peek().Type == TokenBetween) {
		p.advance()
		negated = true
	}

	switch {
	case p.is(TokenLike):
		p.advance()
		pattern, diag := p.parseAdditive()
		if diag != nil {
			return nil, diag
		}
		return &LikeExpr{Expr: left, Pattern: pattern, Not: negated}, nil
	case p.is(TokenIn):
		p.advance()
		if _, diag := p.expect(TokenLeftParen, "'(' after IN"); diag != nil {
			return nil, diag
		}
		values, diag := p.parseList(TokenRightParen, "')'")
		if diag != nil {
			return nil, diag
		}
		return &InExpr{Expr: left, Values: values, Not: negated}, nil
	case p.is(TokenBetween):
		p.advance()
		lower, diag := p.parseAdditive()
		if diag != nil {
			return nil, diag
		}
		if _, diag := p.expect(TokenAnd, "AND in BETWEEN"); diag != nil {
			return nil, diag
		}
		upper, diag := p.parseAdditive()
		if diag != nil {
			return nil, diag
		}
		return &BetweenExpr{Expr: left, Lower: lower, Upper: upper, Not: negated}, nil
	case p.is(TokenIs):
		p.advance()
		isNot := false
		if p.is(TokenNot) {
			p.advance()
			isNot = true
		}
		if _, diag := p.expect(TokenNull, "NULL after IS"); diag != nil {
			return nil, diag
		}
		return &IsNullExpr{Expr: left, Not: isNot}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (Expression, *diagnostic.Diagnostic) {
	left, diag := p.parseMultiplicative()
	if diag != nil {
		return nil, diag
	}
	for p.is(TokenPlus) || p.is(TokenMinus) {
		op := p.advance().Type
		right, diag := p.parseMultiplicative()
		if diag != nil {
			return nil, diag
		}
		left = &BinaryExpr{Operator: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expression, *diagnostic.Diagnostic) {
	left, diag := p.parseUnary()
	if diag != nil {
		return nil, diag
	}
	for p.is(TokenStar) || p.is(TokenSlash) || p.is(TokenPercent) {
		op := p.advance().Type
		right, diag := p.parseUnary()
		if diag != nil {
			return nil, diag
		}
		left = &BinaryExpr{Operator: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expression, *diagnostic.Diagnostic) {
	if !p.is(TokenMinus) {
		return p.parsePrimary()
	}
	minus := p.advance()
	// The magnitude of the smallest Integer does not fit int64 on its own
	if p.is(TokenInteger) {
		tok := p.advance()
		n, err := strconv.ParseInt("-"+tok.Value, 10, 64)
		if err != nil {
			return nil, p.errorSpan(span{start: minus.Start, end: tok.End}, "integer literal -"+tok.Value+" is out of range")
		}
		return &Literal{Value: result.Integer(n)}, nil
	}
	if err := p.depth.push(); err != nil {
		return nil, p.errorAt(p.current(), err.Error())
	}
	defer p.depth.pop()
	operand, diag := p.parseUnary()
	if diag != nil {
		return nil, diag
	}
	// Fold negative literals so titles read "-1" and not "- 1"
	if lit, ok := operand.(*Literal); ok {
		switch lit.Value.Kind() {
		case result.KindInteger:
			if lit.Value.AsInt() != math.MinInt64 {
				return &Literal{Value: result.Integer(-lit.Value.AsInt())}, nil
			}
		case result.KindFloat:
			return &Literal{Value: result.Float(-lit.Value.AsFloat())}, nil
		}
	}
	return &UnaryExpr{Operator: TokenMinus, Operand: operand}, nil
}

func (p *Parser) parsePrimary() (Expression, *diagnostic.Diagnostic) {
	tok := p.current()
	switch tok.Type {
	case TokenInteger:
		p.advance()
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, p.errorAt(tok, "integer literal "+tok.Value+" is out of range")
		}
		return &Literal{Value: result.Integer(n)}, nil
	case TokenFloat:
		p.advance()
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid number "+tok.Value)
		}
		return &Literal{Value: result.Float(f)}, nil
	case TokenString:
		p.advance()
		return &Literal{Value: result.Text(tok.Value)}, nil
	case TokenTrue, TokenFalse:
		p.advance()
		return &Literal{Value: result.Boolean(tok.Type == TokenTrue)}, nil
	case TokenNull:
		p.advance()
		return &Literal{Value: result.Null()}, nil
	case TokenGlobal:
		p.advance()
		return &GlobalRef{Name: tok.Value, span: span{tok.Start, tok.End}}, nil
	case TokenIdent:
		p.advance()
		if p.is(TokenLeftParen) {
			return p.parseCall(tok)
		}
		return &ColumnRef{Name: tok.Value, span: span{tok.Start, tok.End}}, nil
	case TokenLeftParen:
		p.advance()
		expr, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		if _, diag := p.expect(TokenRightParen, "')'"); diag != nil {
			return nil, diag
		}
		return expr, nil
	case TokenLeftBracket:
		p.advance()
		elems, diag := p.parseList(TokenRightBracket, "']'")
		if diag != nil {
			return nil, diag
		}
		return &ArrayExpr{Elements: elems}, nil
	default:
		return nil, p.errorAt(tok, "expected an expression, found "+quote(tok))
	}
}

// parseList parses comma separated expressions up to and including the
// closing token
func (p *Parser) parseList(closing TokenType, what string) ([]Expression, *diagnostic.Diagnostic) {
	var list []Expression
	if p.is(closing) {
		p.advance()
		return list, nil
	}
	for {
		expr, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		list = append(list, expr)
		if !p.is(TokenComma) {
			break
		}
		p.advance()
	}
	if _, diag := p.expect(closing, what); diag != nil {
		return nil, diag
	}
	return list, nil
}

// parseCall parses a function or aggregation call after its name
func (p *Parser) parseCall(name Token) (Expression, *diagnostic.Diagnostic) {
	p.advance() // (

	if agg, ok := p.env.Aggregations.Get(name.Value); ok {
		var arg Expression
		if p.is(TokenStar) && strings.EqualFold(agg.Name, "count") {
			p.advance()
		} else {
			expr, diag := p.parseExpression()
			if diag != nil {
				return nil, diag
			}
			arg = expr
		}
		closing, diag := p.expect(TokenRightParen, "')' after the aggregate argument")
		if diag != nil {
			return nil, diag
		}
		return &AggregateExpr{Name: agg.Name, Arg: arg, span: span{name.Start, closing.End}}, nil
	}

	fn, ok := p.env.Functions.Get(name.Value)
	if !ok {
		return nil, p.errorAt(name, "unknown function '"+name.Value+"'")
	}
	args, diag := p.parseList(TokenRightParen, "')'")
	if diag != nil {
		return nil, diag
	}
	call := &CallExpr{Name: fn.Name, Args: args, span: span{name.Start, p.tokens[p.pos-1].End}}

	least, most := fn.Signature.MinArity(), fn.Signature.MaxArity()
	if len(args) < least || (most >= 0 && len(args) > most) {
		return nil, p.errorSpan(call.span, arityMessage(fn.Name, least, most, len(args)))
	}
	return call, nil
}

func arityMessage(name string, least, most, got int) string {
	var want string
	switch {
	case most < 0:
		want = "at least " + strconv.Itoa(least)
	case least == most:
		want = strconv.Itoa(least)
	default:
		want = strconv.Itoa(least) + " to " + strconv.Itoa(most)
	}
	return "function " + name + " expects " + want + " arguments, got " + strconv.Itoa(got)
}

// resolve validates names inside expr and returns its static type.
// inAggregate is set while checking an aggregation argument.
func (p *Parser) resolve(expr Expression, inAggregate bool) (result.DataType, *diagnostic.Diagnostic) {
	switch e := expr.(type) {
	case *Literal:
		return e.Value.Type(), nil
	case *ColumnRef:
		if p.table == "" {
			return result.DataType{}, p.errorSpan(e.span, "column '"+e.Name+"' used without a FROM clause")
		}
		if !p.env.Schema.HasColumn(p.table, e.Name) {
			return result.DataType{}, p.errorSpan(e.span, "unknown column '"+e.Name+"' in table '"+p.table+"'").
				AddNote("columns: " + strings.Join(p.env.Schema.Tables[p.table], ", "))
		}
		return p.env.Schema.ColumnType(p.table, e.Name), nil
	case *GlobalRef:
		v, ok := p.env.Global(e.Name)
		if !ok {
			return result.DataType{}, p.errorSpan(e.span, "undefined global variable "+e.Name).
				AddHelp("define it first with SET " + e.Name + " = value")
		}
		return v.Type(), nil
	case *UnaryExpr:
		t, diag := p.resolve(e.Operand, inAggregate)
		if diag != nil {
			return result.DataType{}, diag
		}
		if e.Operator == TokenNot {
			return result.BooleanType, nil
		}
		return t, nil
	case *BinaryExpr:
		lt, diag := p.resolve(e.Left, inAggregate)
		if diag != nil {
			return result.DataType{}, diag
		}
		rt, diag := p.resolve(e.Right, inAggregate)
		if diag != nil {
			return result.DataType{}, diag
		}
		return binaryType(e.Operator, lt, rt), nil
	case *AggregateExpr:
		if inAggregate {
			return result.DataType{}, p.errorSpan(e.span, "aggregate function "+e.Name+" cannot be nested")
		}
		agg, _ := p.env.Aggregations.Get(e.Name)
		if e.Arg == nil {
			return agg.Signature.Return, nil
		}
		t, diag := p.resolve(e.Arg, true)
		if diag != nil {
			return result.DataType{}, diag
		}
		if !compatible(agg.Signature.Param(0), t) {
			return result.DataType{}, p.errorSpan(e.span, e.Name+" expects "+agg.Signature.Param(0).String()+", got "+t.String())
		}
		return agg.Signature.Return, nil
	case *CallExpr:
		fn, _ := p.env.Functions.Get(e.Name)
		for i, arg := range e.Args {
			t, diag := p.resolve(arg, inAggregate)
			if diag != nil {
				return result.DataType{}, diag
			}
			if want := fn.Signature.Param(i); !compatible(want, t) {
				return result.DataType{}, p.errorSpan(e.span, "argument "+strconv.Itoa(i+1)+" of "+e.Name+" expects "+want.String()+", got "+t.String())
			}
		}
		return fn.Signature.Return, nil
	default:
		for _, child := range children(expr) {
			if _, diag := p.resolve(child, inAggregate); diag != nil {
				return result.DataType{}, diag
			}
		}
		switch expr.(type) {
		case *ArrayExpr:
			return result.ArrayOf(result.DynamicType), nil
		default:
			return result.BooleanType, nil
		}
	}
}

// binaryType is the static result type of a binary operation
func binaryType(op TokenType, left, right result.DataType) result.DataType {
	switch op {
	case TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent:
		if left.Kind == result.TypeInteger && right.Kind == result.TypeInteger {
			return result.IntegerType
		}
		if isNumericType(left) && isNumericType(right) {
			return result.FloatType
		}
		return result.DynamicType
	default:
		return result.BooleanType
	}
}

func isNumericType(t result.DataType) bool {
	return t.Kind == result.TypeInteger || t.Kind == result.TypeFloat
}

// compatible reports whether a value of static type arg may be passed where
// param is declared. Statically unknown types are always accepted and
// checked at evaluation.
func compatible(param, arg result.DataType) bool {
	switch param.Kind {
	case result.TypeAny, result.TypeDynamic:
		return true
	case result.TypeOptional, result.TypeVarargs:
		return param.Elem == nil || compatible(*param.Elem, arg)
	case result.TypeVariant:
		for _, v := range param.Variants {
			if compatible(v, arg) {
				return true
			}
		}
		return false
	}

	switch arg.Kind {
	case result.TypeDynamic, result.TypeAny, result.TypeNull, result.TypeUndefined, result.TypeOptional:
		return true
	case result.TypeVariant:
		for _, v := range arg.Variants {
			if compatible(param, v) {
				return true
			}
		}
		return false
	}

	if param.Kind == result.TypeFloat && arg.Kind == result.TypeInteger {
		return true
	}
	return param.Kind == arg.Kind
}
