package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/dcsmiz/lang"
	"github.com/ardnew/dcsmiz/log"
	"github.com/ardnew/dcsmiz/mission"
)

// Mission prints the summary of a mission archive or directory.
type Mission struct {
	Path    string `arg:""                                  help:"Mission archive (.miz) or unpacked directory" name:"path" type:"path"`
	Format  string `default:"text" enum:"text,json,yaml"     help:"Output format (${enum})"                                     short:"F"`
	Extract string `                                        help:"Write the briefing images into this directory"              placeholder:"DIR" type:"path"`
}

// Run executes the mission command.
func (m *Mission) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	g := globalsFrom(ctx)

	miz, err := mission.Open(ctx, m.Path,
		mission.WithLogger(log.Default()),
		mission.WithLangOptions(g.langOptions()...),
	)
	if err != nil {
		return err
	}
	defer miz.Close()

	sum, err := miz.Summary(ctx)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "mission"))
	}

	switch m.Format {
	case FormatJSON:
		err = sum.WriteJSON(g.Stdout)
	case FormatYAML:
		err = sum.WriteYAML(g.Stdout)
	default:
		err = sum.WriteText(g.Stdout)
	}

	if err != nil {
		return wrapWrite(err)
	}

	if m.Extract == "" {
		return nil
	}

	paths, err := miz.ExtractImages(ctx, m.Extract)
	if err != nil {
		return lang.WrapError(err).With(slog.String("dir", m.Extract))
	}

	for _, p := range paths {
		if _, err := fmt.Fprintln(g.Stderr, p); err != nil {
			return wrapWrite(err)
		}
	}

	return nil
}
