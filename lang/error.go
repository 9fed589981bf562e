package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Error kinds (sentinel values). Errors returned by this package derive from
// one of these and match it with [errors.Is].
var (
	ErrSyntax                = NewError("syntax error")
	ErrUnsupportedLiteral    = NewError("unsupported literal")
	ErrUnsupportedExpression = NewError("unsupported expression")
	ErrUnsupportedOperator   = NewError("unsupported operator")
	ErrUnsupportedTableField = NewError("unsupported table field")
	ErrUndefinedVariable     = NewError("undefined variable")
	ErrTypeMismatch          = NewError("type mismatch")
	ErrDivisionByZero        = NewError("division by zero")
	ErrDepthExceeded         = NewError("maximum nesting depth exceeded")
	ErrInvalidTableKey       = NewError("invalid table key")
	ErrReadInput             = NewError("failed to read input")
	ErrQuery                 = NewError("query failed")
)

// Position identifies a location in source text.
// Line and Column are 1-based; Column counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	kind  *Error      // Sentinel this error was derived from
	pos   Position    // Source location, valid when pos.Line > 0
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// The message has the form "<msg> at <line>:<col>: <err>", omitting any part
// that is not set.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		msg := e.msg
		if e.pos.Line > 0 {
			msg += " at " + e.pos.String()
		}

		part = append(part, msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.kind != nil && e.kind == t)
}

// Kind returns the sentinel e was derived from, or e itself.
func (e *Error) Kind() *Error {
	if e.kind != nil {
		return e.kind
	}

	return e
}

// Position returns the source location attached to e, if any.
func (e *Error) Position() (Position, bool) {
	return e.pos, e.pos.Line > 0
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.pos.Line > 0 {
		attrs = append(attrs, slog.String("position", e.pos.String()))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns a copy of the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr {
	return append([]slog.Attr(nil), e.attrs...)
}

// derive copies e, remembering the sentinel it came from.
func (e *Error) derive() *Error {
	d := *e
	if d.kind == nil {
		d.kind = e
	}

	d.attrs = append([]slog.Attr(nil), e.attrs...)

	return &d
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.err = err

	return d
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	d := e.derive()
	d.attrs = append(d.attrs, attrs...)

	return d
}

// WithPosition attaches a source location to the error.
func (e *Error) WithPosition(pos Position) *Error {
	d := e.derive()
	d.pos = pos

	return d
}

// Snippet renders the source line containing the error position with a caret
// under the offending column. It returns "" if e has no position or the
// position is outside source.
//
//	3 | x = 1 +
//	          ^
func (e *Error) Snippet(source string) string {
	if e.pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if e.pos.Line > len(lines) {
		return ""
	}

	line := strings.TrimRight(lines[e.pos.Line-1], "\r")
	num := strconv.Itoa(e.pos.Line)

	var buf strings.Builder

	buf.WriteString("  ")
	buf.WriteString(num)
	buf.WriteString(" | ")
	buf.WriteString(line)
	buf.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	buf.WriteString(strings.Repeat(" ", len(num)+5))

	if e.pos.Column > 1 {
		buf.WriteString(strings.Repeat(" ", e.pos.Column-1))
	}

	buf.WriteString("^\n")

	return buf.String()
}

// clip shortens source text attached to error attributes.
func clip(s string) string {
	const limit = 64

	if len(s) <= limit {
		return s
	}

	return s[:limit] + "..."
}
