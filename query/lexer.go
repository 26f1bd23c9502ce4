package query

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vegasq/pqview/diagnostic"
)

// Lexer tokenizes query strings
type Lexer struct {
	input string
	pos   int // byte offset of ch
	next  int // byte offset after ch
	ch    rune
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	l.pos = l.next
	if l.next >= len(l.input) {
		l.ch = 0
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.next:])
	l.ch = r
	l.next += size
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() rune {
	if l.next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.next:])
	return r
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.input) }

// skipWhitespace skips whitespace and "--" line comments
func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch {
		case unicode.IsSpace(l.ch):
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			for !l.atEnd() && l.ch != '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

// readString reads a quoted string. The second result is false when the
// closing quote is missing.
func (l *Lexer) readString(quote rune) (string, bool) {
	var result strings.Builder
	l.readChar() // skip opening quote

	for !l.atEnd() && l.ch != quote {
		if l.ch == '\\' {
			l.readChar()
			if l.atEnd() {
				break
			}
			switch l.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case '\\':
				result.WriteRune('\\')
			case quote:
				result.WriteRune(quote)
			default:
				result.WriteRune(l.ch)
			}
		} else {
			result.WriteRune(l.ch)
		}
		l.readChar()
	}

	if l.atEnd() {
		return result.String(), false
	}
	l.readChar() // skip closing quote
	return result.String(), true
}

// readNumber reads an integer, decimal or exponent literal such as 1.5e-3
func (l *Lexer) readNumber() (string, bool) {
	start := l.pos
	isFloat := false
	for unicode.IsDigit(l.ch) || (l.ch == '.' && !isFloat && unicode.IsDigit(l.peekChar())) {
		if l.ch == '.' {
			isFloat = true
		}
		l.readChar()
	}
	if (l.ch == 'e' || l.ch == 'E') && l.exponentFollows() {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.pos], isFloat
}

// exponentFollows reports whether the e at the current position starts an
// exponent: digits, optionally after a sign
func (l *Lexer) exponentFollows() bool {
	rest := l.input[l.pos+1:]
	if rest != "" && (rest[0] == '+' || rest[0] == '-') {
		rest = rest[1:]
	}
	return rest != "" && rest[0] >= '0' && rest[0] <= '9'
}

// readIdentifier reads an identifier or keyword. Dots are allowed so nested
// parquet fields such as address.city can be referenced.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' || l.ch == '.' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readQuotedIdentifier reads a `backtick quoted` identifier
func (l *Lexer) readQuotedIdentifier() (string, bool) {
	l.readChar() // skip opening backtick
	start := l.pos
	for !l.atEnd() && l.ch != '`' {
		l.readChar()
	}
	if l.atEnd() {
		return l.input[start:l.pos], false
	}
	ident := l.input[start:l.pos]
	l.readChar()
	return ident, true
}

// single maps one-character tokens
var single = map[rune]TokenType{
	'=': TokenEqual,
	'<': TokenLess,
	'>': TokenGreater,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'%': TokenPercent,
	',': TokenComma,
	'(': TokenLeftParen,
	')': TokenRightParen,
	'[': TokenLeftBracket,
	']': TokenRightBracket,
	';': TokenSemicolon,
}

// double maps two-character operators
var double = map[string]TokenType{
	"==": TokenEqual,
	"!=": TokenNotEqual,
	"<>": TokenNotEqual,
	"<=": TokenLessEqual,
	">=": TokenGreaterEqual,
	":=": TokenColonEqual,
}

// NextToken returns the next token. ok is false at the end of input; a
// non-nil diagnostic reports malformed input.
func (l *Lexer) NextToken() (tok Token, ok bool, diag *diagnostic.Diagnostic) {
	l.skipWhitespace()
	if l.atEnd() {
		return Token{Start: l.pos, End: l.pos}, false, nil
	}

	start := l.pos
	emit := func(t TokenType, value string) (Token, bool, *diagnostic.Diagnostic) {
		return Token{Type: t, Value: value, Start: start, End: l.pos}, true, nil
	}

	if l.peekChar() != 0 {
		pair := string([]rune{l.ch, l.peekChar()})
		if t, found := double[pair]; found {
			l.readChar()
			l.readChar()
			return emit(t, pair)
		}
	}

	switch {
	case l.ch == '\'' || l.ch == '"':
		s, closed := l.readString(l.ch)
		if !closed {
			return Token{}, false, diagnostic.Error("unterminated string literal").
				WithLocation(start, l.pos).
				AddHelp("add the closing quote")
		}
		return emit(TokenString, s)
	case l.ch == '`':
		s, closed := l.readQuotedIdentifier()
		if !closed {
			return Token{}, false, diagnostic.Error("unterminated quoted identifier").
				WithLocation(start, l.pos).
				AddHelp("add the closing backtick")
		}
		return emit(TokenIdent, s)
	case l.ch == '@':
		l.readChar()
		name := l.readIdentifier()
		if name == "" {
			return Token{}, false, diagnostic.Error("expected a variable name after @").
				WithLocation(start, l.pos)
		}
		return emit(TokenGlobal, "@"+name)
	case unicode.IsDigit(l.ch):
		num, isFloat := l.readNumber()
		if isFloat {
			return emit(TokenFloat, num)
		}
		return emit(TokenInteger, num)
	case unicode.IsLetter(l.ch) || l.ch == '_':
		ident := l.readIdentifier()
		return emit(identifierType(ident), ident)
	}

	if t, found := single[l.ch]; found {
		ch := l.ch
		l.readChar()
		return emit(t, string(ch))
	}

	ch := l.ch
	l.readChar()
	return Token{}, false, diagnostic.Errorf("unexpected character %q", ch).
		WithLocation(start, l.pos)
}

// Tokenize returns every token in the query. An empty slice means the query
// held nothing but whitespace and comments.
func Tokenize(query string) ([]Token, *diagnostic.Diagnostic) {
	if err := checkLength(query); err != nil {
		return nil, diagnostic.Error(err.Error())
	}

	lexer := NewLexer(query)
	var tokens []Token
	for {
		tok, ok, diag := lexer.NextToken()
		if diag != nil {
			return nil, diag
		}
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}

	if err := checkTokenCount(tokens); err != nil {
		return nil, diagnostic.Error(err.Error())
	}
	return tokens, nil
}
