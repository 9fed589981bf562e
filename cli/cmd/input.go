package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/readahead"

	"github.com/ardnew/dcsmiz/mission"
)

// Input selects the chunk a command reads: a file, stdin ("-"), an entry of
// a mission archive, or the global --source files when no path is given.
type Input struct {
	Path  string `arg:"" help:"Input file, mission archive or '-' for stdin" name:"path" optional:""`
	Entry string `      help:"Read the named entry of a mission archive or directory" short:"e" placeholder:"NAME"`
}

// name returns a label for the input used in logs and errors.
func (in Input) name(ctx context.Context) string {
	switch {
	case in.Entry != "":
		return in.Path + "!" + in.Entry
	case in.Path != "":
		return in.Path
	}

	if src := sourceFilesFrom(ctx); src != nil && !src.IsZero() {
		names := src.Names()
		if len(names) == 1 {
			return names[0]
		}
	}

	return stdinSource
}

// read returns the full source text of the input.
func (in Input) read(ctx context.Context) (string, error) {
	fail := func(err error) (string, error) {
		return "", ErrReadSource.With(slog.String("input", in.name(ctx))).Wrap(err)
	}

	if in.Entry != "" {
		if in.Path == "" {
			return "", ErrNoSource.With(slog.String("entry", in.Entry))
		}

		m, err := mission.Open(ctx, in.Path)
		if err != nil {
			return fail(err)
		}
		defer m.Close()

		data, err := m.ReadEntry(in.Entry)
		if err != nil {
			return fail(err)
		}

		return string(data), nil
	}

	var r io.Reader

	switch in.Path {
	case "":
		src := sourceFilesFrom(ctx)
		if src == nil || src.IsZero() {
			return "", ErrNoSource
		}

		r = src

	case stdinSource:
		r = globalsFrom(ctx).Stdin

	default:
		f, err := os.Open(in.Path)
		if err != nil {
			return fail(err)
		}
		defer f.Close()

		r = f
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return fail(err)
	}

	return string(data), nil
}
