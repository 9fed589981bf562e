package lang

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

// Query evaluates an expr-lang expression against the namespace.
//
// Variables are visible by name and tables are maps, so fields are reached
// with member or index syntax ("mission.theatre", "t[1]"). The helpers
// listed by [BuiltinEnvKeys] are also available; variables shadow them.
func (ns *Namespace) Query(ctx context.Context, src string, opts ...Option) (any, error) {
	o := makeOptions(opts...)
	env := ns.Env()

	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, ErrQuery.Wrap(err).With(slog.String("query", clip(src)))
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrQuery.Wrap(err).With(slog.String("query", clip(src)))
	}

	o.logger.TraceContext(ctx, "query complete",
		slog.String("query", clip(src)),
		slog.String("result_type", resultTypeName(out)))

	return out, nil
}

// Env returns the expr-lang environment of the namespace: the builtin helpers
// overlaid with every binding converted by [QueryValue].
func (ns *Namespace) Env() map[string]any {
	env := makeEnvCache()

	for name, v := range ns.All() {
		env[name] = QueryValue(v)
	}

	return env
}

// QueryValue converts v for use in query expressions. It differs from
// [Value.Native] in using int for integers, so that integer literals in
// expressions index tables directly.
func QueryValue(v Value) any {
	switch v.kind {
	case KindInteger:
		return int(v.i)

	case KindTable:
		m := make(map[any]any, v.t.Len())
		for k, e := range v.t.All() {
			m[QueryValue(k.Value())] = QueryValue(e)
		}

		return m

	default:
		return v.Native()
	}
}

// FormatResult formats a query result for output in Lua literal syntax.
// Map entries are sorted by key.
func FormatResult(result any) string {
	var sb strings.Builder

	formatResultValue(&sb, result)

	return sb.String()
}

func formatResultValue(sb *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		sb.WriteString("nil")

	case bool:
		sb.WriteString(strconv.FormatBool(val))

	case int:
		sb.WriteString(strconv.Itoa(val))

	case int64:
		sb.WriteString(strconv.FormatInt(val, 10))

	case float64:
		sb.WriteString(formatFloat(val))

	case string:
		sb.WriteString(EncodeString(val))

	case []any:
		sb.WriteByte('{')

		for i, e := range val {
			if i > 0 {
				sb.WriteString(", ")
			}

			formatResultValue(sb, e)
		}

		sb.WriteByte('}')

	case map[any]any:
		sb.WriteByte('{')

		for i, k := range sortedAnyKeys(val) {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteByte('[')
			formatResultValue(sb, k)
			sb.WriteString("] = ")
			formatResultValue(sb, val[k])
		}

		sb.WriteByte('}')

	case map[string]any:
		sb.WriteByte('{')

		for i, k := range sortedKeys(val) {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString("[" + EncodeString(k) + "] = ")
			formatResultValue(sb, val[k])
		}

		sb.WriteByte('}')

	default:
		fmt.Fprintf(sb, "%v", val)
	}
}

// sortedAnyKeys orders numbers first (numerically), then strings, then
// anything else by its printed form.
func sortedAnyKeys(m map[any]any) []any {
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	rank := func(k any) (int, float64, string) {
		switch k := k.(type) {
		case int:
			return 0, float64(k), ""
		case int64:
			return 0, float64(k), ""
		case float64:
			return 0, k, ""
		case string:
			return 1, 0, k
		default:
			return 2, 0, fmt.Sprint(k)
		}
	}

	slices.SortFunc(keys, func(a, b any) int {
		ra, na, sa := rank(a)
		rb, nb, sb := rank(b)

		return cmp.Or(cmp.Compare(ra, rb), cmp.Compare(na, nb), strings.Compare(sa, sb))
	})

	return keys
}
