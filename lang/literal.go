package lang

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	decimalNumeral = regexp.MustCompile(
		`^(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)
	hexNumeral = regexp.MustCompile(
		`^0[xX](?:[0-9a-fA-F]+\.?[0-9a-fA-F]*|\.[0-9a-fA-F]+)(?:[pP][+-]?[0-9]+)?$`)
	decimalInteger = regexp.MustCompile(`^[0-9]+$`)
)

// DecodeNumber converts a numeric literal lexeme into a [Value].
//
// A lexeme with a decimal point or an exponent decodes to a Float; a plain
// digit sequence decodes to an Integer, or to a Float if it does not fit in 64
// bits. Hexadecimal and malformed lexemes fail with [ErrUnsupportedLiteral].
func DecodeNumber(lit string) (Value, error) {
	switch {
	case decimalInteger.MatchString(lit):
		i, err := strconv.ParseInt(lit, 10, 64)
		if err == nil {
			return Int(i), nil
		}

		if !errors.Is(err, strconv.ErrRange) {
			return Value{}, ErrUnsupportedLiteral.Wrap(err).
				With(slog.String("literal", clip(lit)))
		}

		fallthrough

	case decimalNumeral.MatchString(lit):
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Value{}, ErrUnsupportedLiteral.Wrap(err).
				With(slog.String("literal", clip(lit)))
		}

		return Float(f), nil

	default:
		return Value{}, ErrUnsupportedLiteral.
			With(slog.String("literal", clip(lit)))
	}
}

// escapes maps the character following a backslash to its replacement.
// Any other escaped character is kept together with its backslash.
var escapes = map[rune]rune{
	'a':  '\a',
	'b':  '\b',
	'n':  '\n',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
	'\n': '\n',
}

// DecodeString converts a quoted string literal lexeme into its content.
//
// The delimiting quotes are removed and the escapes \a \b \n \\ \" \' and a
// backslash before a line break are replaced. A backslash followed by CR LF
// counts as a single line break. Every other escape is kept verbatim,
// backslash included. Long bracket strings fail with [ErrUnsupportedLiteral].
func DecodeString(lit string) (string, error) {
	if len(lit) < 2 || (lit[0] != '"' && lit[0] != '\'') ||
		lit[len(lit)-1] != lit[0] {
		return "", ErrUnsupportedLiteral.With(slog.String("literal", clip(lit)))
	}

	body := lit[1 : len(lit)-1]

	var sb strings.Builder

	sb.Grow(len(body))

	escaped := false

	for i := 0; i < len(body); {
		r, size := utf8.DecodeRuneInString(body[i:])

		switch {
		case escaped:
			escaped = false

			if r == '\r' && strings.HasPrefix(body[i+size:], "\n") {
				sb.WriteByte('\n')

				i += size + 1

				continue
			}

			if d, ok := escapes[r]; ok {
				sb.WriteRune(d)
			} else {
				sb.WriteByte('\\')
				sb.WriteString(body[i : i+size])
			}

		case r == '\\':
			escaped = true

		default:
			sb.WriteString(body[i : i+size])
		}

		i += size
	}

	if escaped {
		return "", ErrUnsupportedLiteral.
			With(slog.String("literal", clip(lit))).
			With(slog.String("reason", "unterminated escape"))
	}

	return sb.String(), nil
}

// EncodeString quotes s as a string literal that [DecodeString] maps back to
// s. Carriage returns cannot be represented and are written as line breaks.
func EncodeString(s string) string {
	var sb strings.Builder

	sb.Grow(len(s) + 2)
	sb.WriteByte('"')

	for i := range len(s) {
		switch c := s[i]; c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n', '\r':
			sb.WriteString(`\n`)
		case '\a':
			sb.WriteString(`\a`)
		case '\b':
			sb.WriteString(`\b`)
		default:
			sb.WriteByte(c)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}
