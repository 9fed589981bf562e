package lang

import (
	"context"
	"log/slog"
)

// Evaluate walks the top-level statements of chunk and returns the namespace
// they build.
//
// Only assignments whose targets are all plain names are evaluated: every
// right-hand expression is evaluated left to right against the namespace as
// it stood before the statement, then names and values are paired in order.
// Targets without a value stay unbound and extra values are dropped. Every
// other statement is skipped. The first error aborts the walk and no
// namespace is returned.
func Evaluate(
	ctx context.Context,
	chunk *Chunk,
	opts ...Option,
) (*Namespace, error) {
	o := makeOptions(opts...)

	e := &evaluator{
		ctx:      ctx,
		chunk:    chunk,
		ns:       newNamespace(),
		maxDepth: o.maxDepth,
		logger:   o.logger,
	}

	if chunk == nil || chunk.Block == nil {
		return e.ns, nil
	}

	for _, st := range chunk.Block.Stmts {
		as, ok := st.(*AssignStmt)
		if !ok || !simpleAssignment(as) {
			o.logger.TraceContext(ctx, "statement skipped",
				slog.String("statement", nodeName(st)),
				slog.String("position", st.Pos().String()))

			continue
		}

		if err := e.assign(as); err != nil {
			o.logger.TraceContext(ctx, "evaluation failed", slog.Any("error", err))

			return nil, err
		}
	}

	if r := chunk.Block.Return; r != nil {
		o.logger.TraceContext(ctx, "statement skipped",
			slog.String("statement", nodeName(r)),
			slog.String("position", r.Pos().String()))
	}

	o.logger.TraceContext(ctx, "evaluation complete",
		slog.Int("names", e.ns.Len()))

	return e.ns, nil
}

// simpleAssignment reports whether every target of as is a plain name.
func simpleAssignment(as *AssignStmt) bool {
	for _, t := range as.Targets {
		if _, ok := t.(*NameExpr); !ok {
			return false
		}
	}

	return true
}

func (e *evaluator) assign(as *AssignStmt) error {
	values := make([]Value, 0, len(as.Values))

	for _, x := range as.Values {
		v, err := e.eval(x)
		if err != nil {
			return err
		}

		values = append(values, v)
	}

	for i, t := range as.Targets {
		if i >= len(values) {
			break
		}

		name := t.(*NameExpr).Name
		e.ns.set(name, values[i])

		e.logger.TraceContext(e.ctx, "assignment bound",
			slog.String("name", name),
			slog.String("kind", values[i].Kind().String()))
	}

	return nil
}
