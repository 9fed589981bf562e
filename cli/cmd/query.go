package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/dcsmiz/lang"
)

// Query evaluates an expression against the namespace of a chunk.
type Query struct {
	Expr string `arg:"" help:"Expression evaluated with the namespace as environment" name:"expr"`

	Input `embed:""`
}

// Run executes the query command.
func (q *Query) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	g := globalsFrom(ctx)

	src, err := q.read(ctx)
	if err != nil {
		return err
	}

	ns, err := lang.LoadString(ctx, src, g.langOptions()...)
	if err != nil {
		reportSnippet(g.Stderr, src, err)

		return lang.WrapError(err).With(
			slog.String("command", "query"),
			slog.String("input", q.name(ctx)),
		)
	}

	result, err := ns.Query(ctx, q.Expr, g.langOptions()...)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "query"),
			slog.String("expr", q.Expr),
		)
	}

	_, err = fmt.Fprintln(g.Stdout, lang.FormatResult(result))

	return wrapWrite(err)
}
