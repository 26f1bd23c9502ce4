package query

import (
	"errors"
	"fmt"
)

// Hard limits on query input. Tokenize and Parse turn a breach into an
// Error diagnostic.
const (
	MaxQueryLength     = 1 << 20 // bytes
	MaxTokens          = 1000
	MaxExpressionDepth = 100
)

// Sentinels wrapped by the limit diagnostics
var (
	ErrQueryTooLong      = errors.New("query too long")
	ErrTooManyTokens     = errors.New("too many tokens in query")
	ErrExpressionTooDeep = errors.New("expression nesting too deep")
)

func checkLength(query string) error {
	if n := len(query); n > MaxQueryLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrQueryTooLong, n, MaxQueryLength)
	}
	return nil
}

func checkTokenCount(tokens []Token) error {
	if n := len(tokens); n > MaxTokens {
		return fmt.Errorf("%w: %d tokens (max %d)", ErrTooManyTokens, n, MaxTokens)
	}
	return nil
}

// nesting is the parser's recursion depth into expressions
type nesting struct {
	level int
	limit int
}

func newNesting(limit int) *nesting {
	return &nesting{limit: limit}
}

func (n *nesting) push() error {
	n.level++
	if n.level > n.limit {
		return fmt.Errorf("%w: %d (max %d)", ErrExpressionTooDeep, n.level, n.limit)
	}
	return nil
}

func (n *nesting) pop() { n.level-- }
