package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"

	"github.com/ardnew/dcsmiz/log"
)

// DefaultMaxDepth is the default nesting limit for parsing and evaluation.
const DefaultMaxDepth = 200

// options configures parsing and evaluation.
type options struct {
	maxDepth int
	logger   log.Logger
}

// Option configures parsing or evaluation behavior.
type Option func(*options)

// WithMaxDepth sets the maximum nesting depth of statements and expressions.
// Values less than 1 select [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		o.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Parse parses src into a syntax tree.
func Parse(ctx context.Context, src string, opts ...Option) (*Chunk, error) {
	o := makeOptions(opts...)

	o.logger.TraceContext(ctx, "parse start",
		slog.Int("source_bytes", len(src)),
		slog.Int("max_depth", o.maxDepth))

	chunk, err := newParser(src, o.maxDepth).chunk()
	if err != nil {
		o.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("statements", len(chunk.Block.Stmts)))

	return chunk, nil
}

// LoadString parses and evaluates src.
func LoadString(
	ctx context.Context,
	src string,
	opts ...Option,
) (*Namespace, error) {
	chunk, err := Parse(ctx, src, opts...)
	if err != nil {
		return nil, err
	}

	return Evaluate(ctx, chunk, opts...)
}

// LoadReader reads all of r and evaluates it as with [LoadString].
func LoadReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Namespace, error) {
	src, err := readAll(r)
	if err != nil {
		return nil, err
	}

	makeOptions(opts...).logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(src)),
		slog.Bool("read_ahead", true))

	return LoadString(ctx, src, opts...)
}

// readAll reads r through an asynchronous read-ahead buffer.
func readAll(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return string(data), nil
}
