package lang

import (
	"iter"
	"slices"
)

// Namespace holds the variables bound by evaluating a chunk, in the order
// they were first bound. It is read-only once returned.
type Namespace struct {
	names  []string
	values map[string]Value
}

func newNamespace() *Namespace {
	return &Namespace{values: make(map[string]Value)}
}

func (ns *Namespace) set(name string, v Value) {
	if _, ok := ns.values[name]; !ok {
		ns.names = append(ns.names, name)
	}

	ns.values[name] = v
}

// Get returns the value bound to name.
func (ns *Namespace) Get(name string) (Value, bool) {
	if ns == nil {
		return Value{}, false
	}

	v, ok := ns.values[name]

	return v, ok
}

// Len returns the number of bound names.
func (ns *Namespace) Len() int {
	if ns == nil {
		return 0
	}

	return len(ns.names)
}

// Names returns the bound names in binding order.
func (ns *Namespace) Names() []string {
	if ns == nil {
		return nil
	}

	return slices.Clone(ns.names)
}

// All returns an iterator over the bindings in binding order.
func (ns *Namespace) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if ns == nil {
			return
		}

		for _, name := range ns.names {
			if !yield(name, ns.values[name]) {
				return
			}
		}
	}
}

// Table returns the bindings as a table with string keys.
func (ns *Namespace) Table() *Table {
	t := NewTable()

	for name, v := range ns.All() {
		t.Set(StringKey(name), v)
	}

	return t
}

// Equal reports whether ns and o bind the same names to equal values.
func (ns *Namespace) Equal(o *Namespace) bool {
	if ns.Len() != o.Len() {
		return false
	}

	for name, v := range ns.All() {
		w, ok := o.Get(name)
		if !ok || !v.Equal(w) {
			return false
		}
	}

	return true
}

// NewNamespace returns a namespace binding the string keys of t in table
// order. Entries with other keys are ignored.
func NewNamespace(t *Table) *Namespace {
	ns := newNamespace()

	if t == nil {
		return ns
	}

	for k, v := range t.All() {
		if name, ok := k.AsString(); ok {
			ns.set(name, v)
		}
	}

	return ns
}
