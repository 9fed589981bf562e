package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/dcsmiz/log"
	"github.com/ardnew/dcsmiz/mission"
	"github.com/ardnew/dcsmiz/report"
)

// Report renders the official missions of the installed aircraft as an HTML
// page.
type Report struct {
	Aircraft []string `arg:"" help:"Aircraft modules to include (default: all)" optional:""`

	Output string `help:"Write the report to this file ('-' for stdout, default: a temporary file)" short:"o"`
	Title  string `help:"Page title" default:"${reportTitle}"`
	Open   bool   `help:"Open the report in the default browser"`
}

// Run executes the report command.
func (r *Report) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	g := globalsFrom(ctx)

	in, err := mission.Installed()
	if err != nil {
		return err
	}

	w, path, err := r.create(g.Stdout)
	if err != nil {
		return err
	}

	err = report.WriteInstalled(ctx, w, in, r.Aircraft,
		report.WithTitle(r.Title),
		report.WithLogger(log.Default()),
	)

	if c, ok := w.(io.Closer); ok && path != stdinSource {
		if cerr := c.Close(); err == nil && cerr != nil {
			err = wrapWrite(cerr)
		}
	}

	if err != nil {
		return err
	}

	log.InfoContext(ctx, "report written", slog.String("path", path))

	if path == stdinSource {
		return nil
	}

	_, _ = io.WriteString(g.Stderr, path+"\n")

	if r.Open {
		return report.Open(ctx, path)
	}

	return nil
}

// create opens the report destination. Stdout is reported as "-".
func (r *Report) create(stdout io.Writer) (io.Writer, string, error) {
	switch r.Output {
	case stdinSource:
		return stdout, stdinSource, nil

	case "":
		f, err := os.CreateTemp("", "dcsmiz-report-*.html")
		if err != nil {
			return nil, "", wrapWrite(err)
		}

		return f, f.Name(), nil

	default:
		f, err := os.Create(r.Output)
		if err != nil {
			return nil, "", ErrWriteOutput.With(slog.String("file", r.Output)).Wrap(err)
		}

		return f, r.Output, nil
	}
}
