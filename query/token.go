// Package query implements the pqview query engine: a tokenizer, a parser
// that validates statements against an Environment, and an evaluator that
// produces grouped, typed result sets from a DataProvider.
//
// Example usage:
//
//	tokens, diag := query.Tokenize("SELECT name, age FROM users WHERE age > 30")
//	if diag != nil {
//	    reporter.ReportDiagnostic(q, diag)
//	    return
//	}
//	stmt, diag := query.Parse(tokens, env)
//	...
//	outcome, err := query.Evaluate(env, provider, stmt)
package query

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenDistinct
	TokenFrom
	TokenWhere
	TokenGroup
	TokenBy
	TokenHaving
	TokenOrder
	TokenAsc
	TokenDesc
	TokenLimit
	TokenOffset
	TokenAnd
	TokenOr
	TokenNot
	TokenIn
	TokenLike
	TokenBetween
	TokenIs
	TokenNull
	TokenTrue
	TokenFalse
	TokenAs
	TokenShow
	TokenTables
	TokenDescribe
	TokenSet

	// Operators
	TokenEqual        // = or ==
	TokenNotEqual     // != or <>
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /
	TokenPercent      // %
	TokenColonEqual   // :=

	// Literals
	TokenString
	TokenInteger
	TokenFloat
	TokenIdent
	TokenGlobal // @name

	// Delimiters
	TokenComma        // ,
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenSemicolon    // ;
)

var tokenNames = map[TokenType]string{
	TokenSelect: "SELECT", TokenDistinct: "DISTINCT", TokenFrom: "FROM", TokenWhere: "WHERE",
	TokenGroup: "GROUP", TokenBy: "BY", TokenHaving: "HAVING", TokenOrder: "ORDER",
	TokenAsc: "ASC", TokenDesc: "DESC", TokenLimit: "LIMIT", TokenOffset: "OFFSET",
	TokenAnd: "AND", TokenOr: "OR", TokenNot: "NOT", TokenIn: "IN", TokenLike: "LIKE",
	TokenBetween: "BETWEEN", TokenIs: "IS", TokenNull: "NULL", TokenTrue: "TRUE",
	TokenFalse: "FALSE", TokenAs: "AS", TokenShow: "SHOW", TokenTables: "TABLES",
	TokenDescribe: "DESCRIBE", TokenSet: "SET",
	TokenEqual: "=", TokenNotEqual: "!=", TokenLess: "<", TokenGreater: ">",
	TokenLessEqual: "<=", TokenGreaterEqual: ">=", TokenPlus: "+", TokenMinus: "-",
	TokenStar: "*", TokenSlash: "/", TokenPercent: "%", TokenColonEqual: ":=",
	TokenString: "string", TokenInteger: "integer", TokenFloat: "float",
	TokenIdent: "identifier", TokenGlobal: "global variable",
	TokenComma: ",", TokenLeftParen: "(", TokenRightParen: ")",
	TokenLeftBracket: "[", TokenRightBracket: "]", TokenSemicolon: ";",
}

// String returns a readable token type name for diagnostics
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// keywords maps upper-cased identifiers to keyword token types
var keywords = map[string]TokenType{
	"SELECT":   TokenSelect,
	"DISTINCT": TokenDistinct,
	"FROM":     TokenFrom,
	"WHERE":    TokenWhere,
	"GROUP":    TokenGroup,
	"BY":       TokenBy,
	"HAVING":   TokenHaving,
	"ORDER":    TokenOrder,
	"ASC":      TokenAsc,
	"DESC":     TokenDesc,
	"LIMIT":    TokenLimit,
	"OFFSET":   TokenOffset,
	"AND":      TokenAnd,
	"OR":       TokenOr,
	"NOT":      TokenNot,
	"IN":       TokenIn,
	"LIKE":     TokenLike,
	"BETWEEN":  TokenBetween,
	"IS":       TokenIs,
	"NULL":     TokenNull,
	"TRUE":     TokenTrue,
	"FALSE":    TokenFalse,
	"AS":       TokenAs,
	"SHOW":     TokenShow,
	"TABLES":   TokenTables,
	"DESCRIBE": TokenDescribe,
	"SET":      TokenSet,
}

// identifierType determines if an identifier is a keyword
func identifierType(ident string) TokenType {
	if tokType, ok := keywords[strings.ToUpper(ident)]; ok {
		return tokType
	}
	return TokenIdent
}

// Token represents a lexical token and the byte span it covers in the query
type Token struct {
	Type  TokenType
	Value string
	Start int
	End   int
}
