package lang

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the runtime type of a [Value].
type Kind uint8

const (
	KindNil Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindTable
)

var kindNames = [...]string{
	KindNil:     "nil",
	KindBoolean: "boolean",
	KindInteger: "integer",
	KindFloat:   "float",
	KindString:  "string",
	KindTable:   "table",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is the result of evaluating an expression. The zero Value is nil.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	t    *Table
}

// Nil returns the nil value.
func Nil() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInteger, i: i} }

// Float returns a float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// TableOf returns a table value. A nil t is replaced by an empty table.
func TableOf(t *Table) Value {
	if t == nil {
		t = NewTable()
	}

	return Value{kind: KindTable, t: t}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool { return v.kind == KindNil }

// IsNumber reports whether v is an integer or a float.
func (v Value) IsNumber() bool {
	return v.kind == KindInteger || v.kind == KindFloat
}

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBoolean }

func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInteger }

func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

func (v Value) AsTable() (*Table, bool) { return v.t, v.kind == KindTable }

// AsNumber returns an integer or float value converted to float64.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Equal reports whether v and w have the same kind and content. Tables are
// compared by content, without regard to key order.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}

	switch v.kind {
	case KindNil:
		return true
	case KindBoolean:
		return v.b == w.b
	case KindInteger:
		return v.i == w.i
	case KindFloat:
		return v.f == w.f
	case KindString:
		return v.s == w.s
	case KindTable:
		return v.t.Equal(w.t)
	default:
		return false
	}
}

// Native converts v to a plain Go value: nil, bool, int64, float64, string or
// map[any]any for tables, whose keys are themselves native.
func (v Value) Native() any {
	switch v.kind {
	case KindBoolean:
		return v.b
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindTable:
		m := make(map[any]any, v.t.Len())
		for k, e := range v.t.All() {
			m[k.Value().Native()] = e.Native()
		}

		return m
	default:
		return nil
	}
}

// String renders v as a literal in the supported Lua subset, on one line.
func (v Value) String() string {
	var sb strings.Builder

	writeValue(&sb, v, "", 0)

	return sb.String()
}

// formatFloat renders f so that it decodes back to the same float.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "1e9999"
	case math.IsInf(f, -1):
		return "-1e9999"
	case math.IsNaN(f):
		return "(0/0)"
	}

	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}

	return s
}
