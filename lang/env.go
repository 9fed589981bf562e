package lang

// This file defines the builtin helpers available to every query expression.
// The helper map is lazily initialized once per process and cloned on every
// access so callers may add bindings without affecting the shared copy.
//
// Builtin names can be shadowed by namespace variables.

import (
	"maps"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Private singleton cache.
//
//nolint:gochecknoglobals
var (
	envCacheOnce sync.Once
	envCache     map[string]any
)

// makeEnvCache returns a clone of the lazily-initialized builtin helpers.
func makeEnvCache() map[string]any {
	envCacheOnce.Do(func() {
		envCache = map[string]any{
			// seq returns the values at keys 1, 2, ... up to the first gap.
			"seq": querySeq,
			// has reports whether a table holds a key.
			"has": queryHas,
			// fields returns the string keys of a table, sorted.
			"fields": queryFields,
		}
	})

	return maps.Clone(envCache)
}

// BuiltinEnvKeys returns the names of the builtin query helpers.
func BuiltinEnvKeys() []string {
	return sortedKeys(makeEnvCache())
}

// Lookup returns the string keys of the table reached by following the
// dot-separated path from the namespace, sorted. An empty path lists the
// variable names and builtin helpers. It returns nil if the path does not
// lead to a table.
func (ns *Namespace) Lookup(path string) []string {
	if path == "" {
		names := append(ns.Names(), BuiltinEnvKeys()...)
		slices.Sort(names)

		return slices.Compact(names)
	}

	segments := strings.Split(path, ".")

	v, ok := ns.Get(segments[0])
	if !ok {
		return nil
	}

	for _, seg := range segments[1:] {
		t, ok := v.AsTable()
		if !ok {
			return nil
		}

		if v, ok = t.Field(seg); !ok {
			return nil
		}
	}

	t, ok := v.AsTable()
	if !ok {
		return nil
	}

	var keys []string

	for k := range t.All() {
		if s, ok := k.AsString(); ok {
			keys = append(keys, s)
		}
	}

	slices.Sort(keys)

	return keys
}

func querySeq(t map[any]any) []any {
	var out []any

	for i := 1; ; i++ {
		v, ok := t[i]
		if !ok {
			return out
		}

		out = append(out, v)
	}
}

func queryHas(t map[any]any, key any) bool {
	_, ok := t[key]

	return ok
}

func queryFields(t map[any]any) []string {
	keys := make([]string, 0, len(t))

	for k := range t {
		if s, ok := k.(string); ok {
			keys = append(keys, s)
		}
	}

	sort.Strings(keys)

	return keys
}

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func resultTypeName(value any) string {
	if value == nil {
		return "nil"
	}

	return reflect.TypeOf(value).String()
}
