package lang

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// lexer splits Lua source text into tokens on demand.
//
// The first error encountered is kept in err and every later call to next
// returns a tokInvalid token, which the parser reports as that error.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
	err  *Error
}

func newLexer(src string) *lexer {
	l := &lexer{src: src, line: 1, col: 1}

	// UTF-8 byte order mark
	if strings.HasPrefix(src, "\ufeff") {
		l.pos = len("\ufeff")
	}

	// Shebang line
	if l.peekAt(0) == '#' {
		for !l.eof() && l.peek() != '\n' {
			l.advance()
		}
	}

	return l
}

// next scans and returns the next token.
func (l *lexer) next() token {
	if l.err != nil {
		return token{kind: tokInvalid, pos: l.position(), end: l.pos}
	}

	if !l.skipWhitespaceAndComments() {
		return token{kind: tokInvalid, pos: l.position(), end: l.pos}
	}

	start := l.position()

	if l.eof() {
		return token{kind: tokEOF, pos: start, end: l.pos}
	}

	var kind tokenKind

	r := l.peek()

	switch {
	case isIdentifierStart(r):
		for !l.eof() && isIdentifierContinue(l.peek()) {
			l.advance()
		}

		kind = tokName
		if kw, ok := keywords[l.src[start.Offset:l.pos]]; ok {
			kind = kw
		}

	case isDigit(l.peekAt(0)) || (r == '.' && isDigit(l.peekAt(1))):
		if !l.scanNumber() {
			return l.fail(start, "malformed number")
		}

		kind = tokNumber

	case r == '"' || r == '\'':
		if !l.scanString(r) {
			return l.fail(start, "unfinished string")
		}

		kind = tokString

	case r == '[' && l.longBracketLevel() >= 0:
		if !l.scanLongBracket(l.longBracketLevel()) {
			return l.fail(start, "unfinished long string")
		}

		kind = tokString

	default:
		kind = l.scanOperator()
		if kind == tokInvalid {
			return l.fail(start, "unexpected symbol")
		}
	}

	return token{kind: kind, pos: start, end: l.pos}
}

// fail records a syntax error at pos and returns an invalid token.
func (l *lexer) fail(pos Position, reason string) token {
	l.err = ErrSyntax.WithPosition(pos).
		With(slog.String("reason", reason)).
		With(slog.String("near", clip(l.src[pos.Offset:l.pos])))

	return token{kind: tokInvalid, pos: pos, end: l.pos}
}

func (l *lexer) scanNumber() bool {
	start := l.pos
	expo := "Ee"

	if l.peekAt(0) == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		expo = "Pp"

		l.advance()
		l.advance()
	}

	for {
		c := l.peekAt(0)

		if c != 0 && strings.IndexByte(expo, c) >= 0 {
			l.advance()

			if s := l.peekAt(0); s == '+' || s == '-' {
				l.advance()
			}

			continue
		}

		if isHexDigit(c) || c == '.' {
			l.advance()

			continue
		}

		break
	}

	// A numeral running into a name is malformed, as in "3x".
	for !l.eof() && isIdentifierContinue(l.peek()) {
		l.advance()
	}

	text := l.src[start:l.pos]

	return decimalNumeral.MatchString(text) || hexNumeral.MatchString(text)
}

func (l *lexer) scanString(quote rune) bool {
	l.advance() // opening quote

	for !l.eof() {
		switch r := l.peek(); r {
		case quote:
			l.advance()

			return true

		case '\n', '\r':
			return false

		case '\\':
			l.advance()

			switch l.peek() {
			case '\r':
				l.advance()

				if l.peek() == '\n' {
					l.advance()
				}

			case '\n':
				l.advance()

				if l.peek() == '\r' {
					l.advance()
				}

			case 'z':
				l.advance()
				l.skipWhitespace()

			default:
				l.advance()
			}

		default:
			l.advance()
		}
	}

	return false
}

// longBracketLevel returns the number of '=' in a long bracket opening at the
// current position, or -1 if there is none.
func (l *lexer) longBracketLevel() int {
	if l.peekAt(0) != '[' {
		return -1
	}

	n := 1
	for l.peekAt(n) == '=' {
		n++
	}

	if l.peekAt(n) != '[' {
		return -1
	}

	return n - 1
}

func (l *lexer) scanLongBracket(level int) bool {
	closer := "]" + strings.Repeat("=", level) + "]"

	for range level + 2 {
		l.advance()
	}

	n := strings.Index(l.src[l.pos:], closer)
	if n < 0 {
		for !l.eof() {
			l.advance()
		}

		return false
	}

	stop := l.pos + n + len(closer)
	for l.pos < stop {
		l.advance()
	}

	return true
}

func (l *lexer) scanOperator() tokenKind {
	c0, c1, c2 := l.peekAt(0), l.peekAt(1), l.peekAt(2)

	take := func(n int, k tokenKind) tokenKind {
		for range n {
			l.advance()
		}

		return k
	}

	switch c0 {
	case '+':
		return take(1, tokPlus)
	case '-':
		return take(1, tokMinus)
	case '*':
		return take(1, tokStar)
	case '/':
		if c1 == '/' {
			return take(2, tokDoubleSlash)
		}

		return take(1, tokSlash)
	case '%':
		return take(1, tokPercent)
	case '^':
		return take(1, tokCaret)
	case '#':
		return take(1, tokHash)
	case '&':
		return take(1, tokAmp)
	case '~':
		if c1 == '=' {
			return take(2, tokNe)
		}

		return take(1, tokTilde)
	case '|':
		return take(1, tokPipe)
	case '<':
		switch c1 {
		case '<':
			return take(2, tokShl)
		case '=':
			return take(2, tokLe)
		}

		return take(1, tokLt)
	case '>':
		switch c1 {
		case '>':
			return take(2, tokShr)
		case '=':
			return take(2, tokGe)
		}

		return take(1, tokGt)
	case '=':
		if c1 == '=' {
			return take(2, tokEq)
		}

		return take(1, tokAssign)
	case '(':
		return take(1, tokLParen)
	case ')':
		return take(1, tokRParen)
	case '{':
		return take(1, tokLBrace)
	case '}':
		return take(1, tokRBrace)
	case '[':
		return take(1, tokLBracket)
	case ']':
		return take(1, tokRBracket)
	case ':':
		if c1 == ':' {
			return take(2, tokDoubleColon)
		}

		return take(1, tokColon)
	case ';':
		return take(1, tokSemi)
	case ',':
		return take(1, tokComma)
	case '.':
		if c1 == '.' {
			if c2 == '.' {
				return take(3, tokEllipsis)
			}

			return take(2, tokConcat)
		}

		return take(1, tokDot)
	}

	l.advance()

	return tokInvalid
}

// skipWhitespaceAndComments reports false if an unfinished long comment was
// found.
func (l *lexer) skipWhitespaceAndComments() bool {
	for {
		l.skipWhitespace()

		if l.eof() || l.peekAt(0) != '-' || l.peekAt(1) != '-' {
			return true
		}

		start := l.position()

		l.advance()
		l.advance()

		if level := l.longBracketLevel(); level >= 0 {
			if !l.scanLongBracket(level) {
				l.fail(start, "unfinished long comment")

				return false
			}

			continue
		}

		for !l.eof() && l.peek() != '\n' {
			l.advance()
		}
	}
}

func (l *lexer) skipWhitespace() {
	for !l.eof() {
		switch l.peekAt(0) {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			l.advance()
		default:
			return
		}
	}
}

// Helper methods

func (l *lexer) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])

	return r
}

func (l *lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}

	return l.src[l.pos+n]
}

func (l *lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.src)
}

func (l *lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

// Character classification

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return isIdentifierStart(r) || unicode.In(r,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}
