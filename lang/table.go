package lang

import (
	"iter"
	"log/slog"
	"math"
	"slices"
)

// Key is a table key: a boolean, integer, float or string value.
//
// Floats with an exact integer value are stored as integers, so 1 and 1.0
// address the same entry.
type Key struct{ v Value }

// KeyOf converts v to a table key. It fails with [ErrInvalidTableKey] for nil,
// NaN and table values.
func KeyOf(v Value) (Key, error) {
	switch v.kind {
	case KindBoolean, KindInteger, KindString:
		return Key{v}, nil

	case KindFloat:
		if math.IsNaN(v.f) {
			return Key{}, ErrInvalidTableKey.With(slog.String("key", "NaN"))
		}

		if i, ok := floatToInt(v.f); ok {
			return Key{Int(i)}, nil
		}

		return Key{v}, nil

	default:
		return Key{}, ErrInvalidTableKey.With(slog.String("kind", v.kind.String()))
	}
}

// IntKey returns the key for integer i.
func IntKey(i int64) Key { return Key{Int(i)} }

// StringKey returns the key for string s.
func StringKey(s string) Key { return Key{String(s)} }

// Value returns the key as a value.
func (k Key) Value() Value { return k.v }

// AsInt returns the key's integer value, if it is an integer key.
func (k Key) AsInt() (int64, bool) { return k.v.AsInt() }

// AsString returns the key's string value, if it is a string key.
func (k Key) AsString() (string, bool) { return k.v.AsString() }

func (k Key) String() string { return k.v.String() }

// floatToInt returns the integer equal to f, if there is one.
func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}

	return int64(f), true
}

// Table is an insertion-ordered mapping from keys to values.
// Overwriting an entry keeps its original position.
type Table struct {
	keys    []Key
	entries map[Key]Value
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[Key]Value)}
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.keys)
}

// Get returns the value stored at k.
func (t *Table) Get(k Key) (Value, bool) {
	if t == nil {
		return Value{}, false
	}

	v, ok := t.entries[k]

	return v, ok
}

// Field returns the value stored at string key name.
func (t *Table) Field(name string) (Value, bool) {
	return t.Get(StringKey(name))
}

// Index returns the value stored at integer key i.
func (t *Table) Index(i int64) (Value, bool) {
	return t.Get(IntKey(i))
}

// Set stores v at k.
func (t *Table) Set(k Key, v Value) {
	if t.entries == nil {
		t.entries = make(map[Key]Value)
	}

	if _, ok := t.entries[k]; !ok {
		t.keys = append(t.keys, k)
	}

	t.entries[k] = v
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []Key {
	if t == nil {
		return nil
	}

	return slices.Clone(t.keys)
}

// All returns an iterator over the entries in insertion order.
func (t *Table) All() iter.Seq2[Key, Value] {
	return func(yield func(Key, Value) bool) {
		if t == nil {
			return
		}

		for _, k := range t.keys {
			if !yield(k, t.entries[k]) {
				return
			}
		}
	}
}

// Sequence returns the values of t in key order if its keys are exactly the
// integers 1 through Len.
func (t *Table) Sequence() ([]Value, bool) {
	n := t.Len()
	if n == 0 {
		return nil, false
	}

	seq := make([]Value, n)

	for k, v := range t.All() {
		i, ok := k.AsInt()
		if !ok || i < 1 || i > int64(n) {
			return nil, false
		}

		seq[i-1] = v
	}

	return seq, true
}

// Equal reports whether t and o hold the same entries.
func (t *Table) Equal(o *Table) bool {
	if t == o {
		return true
	}

	if t.Len() != o.Len() {
		return false
	}

	for k, v := range t.All() {
		w, ok := o.Get(k)
		if !ok || !v.Equal(w) {
			return false
		}
	}

	return true
}
