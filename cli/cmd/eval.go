package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/dcsmiz/lang"
)

// Output formats of the eval command.
const (
	FormatLua  = "lua"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatAST  = "ast"
	FormatText = "text"
)

// Eval parses and evaluates a chunk, then prints the resulting namespace.
type Eval struct {
	Input `embed:""`

	Format string `default:"lua" enum:"lua,json,yaml,ast" help:"Output format (${enum})" short:"F"`
	Indent int    `default:"2"                            help:"Spaces per indentation level"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	g := globalsFrom(ctx)

	src, err := e.read(ctx)
	if err != nil {
		return err
	}

	err = e.write(ctx, g.Stdout, src, g.langOptions()...)
	if err != nil {
		reportSnippet(g.Stderr, src, err)

		return lang.WrapError(err).With(
			slog.String("command", "eval"),
			slog.String("input", e.name(ctx)),
		)
	}

	return nil
}

func (e *Eval) write(ctx context.Context, w io.Writer, src string, opts ...lang.Option) error {
	if e.Format == FormatAST {
		chunk, err := lang.Parse(ctx, src, opts...)
		if err != nil {
			return err
		}

		return wrapWrite(chunk.Print(w))
	}

	ns, err := lang.LoadString(ctx, src, opts...)
	if err != nil {
		return err
	}

	switch e.Format {
	case FormatJSON:
		return wrapWrite(ns.FormatJSON(ctx, w, e.Indent))
	case FormatYAML:
		return wrapWrite(ns.FormatYAML(ctx, w, e.Indent))
	default:
		return wrapWrite(ns.Format(ctx, w, e.Indent))
	}
}

func wrapWrite(err error) error {
	if err == nil {
		return nil
	}

	return ErrWriteOutput.Wrap(err)
}

// reportSnippet prints the source line of the first positioned error in the
// chain of err to w.
func reportSnippet(w io.Writer, src string, err error) {
	for err != nil {
		var le *lang.Error
		if !errors.As(err, &le) {
			return
		}

		if _, ok := le.Position(); ok {
			_, _ = fmt.Fprint(w, le.Snippet(src))

			return
		}

		err = le.Unwrap()
	}
}
