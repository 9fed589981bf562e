package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/dcsmiz/log"
	"github.com/ardnew/dcsmiz/mission"
)

// List prints the contents of the DCS World installation.
type List struct {
	Aircraft ListAircraft `cmd:"" help:"List installed aircraft modules"`
	Missions ListMissions `cmd:"" help:"List official and additional mission files"`
}

// ListAircraft prints one installed aircraft module per line.
type ListAircraft struct{}

// Run executes the list aircraft command.
func (*ListAircraft) Run(ctx context.Context) error {
	g := globalsFrom(ctx)

	in, err := mission.Installed()
	if err != nil {
		return err
	}

	names, err := in.Aircraft()
	if err != nil {
		return err
	}

	for _, name := range names {
		if _, err := fmt.Fprintln(g.Stdout, name); err != nil {
			return wrapWrite(err)
		}
	}

	return nil
}

// ListMissions prints the mission files of an aircraft and of the
// directories named by --search, one "<type>\t<path>" pair per line.
// Missions outside the installation have type "-".
type ListMissions struct {
	Aircraft string `arg:"" help:"Aircraft module name" optional:""`

	Type   string   `enum:",single,training,quickstart" default:"" help:"Only list missions of this type"`
	Search string   `env:"DCSMIZ_PATH"                             help:"Additional mission directories, separated by the path list separator"`
	Dir    []string `                                              help:"Additional mission directory, searched before --search" type:"path"`
}

// Run executes the list missions command.
func (l *ListMissions) Run(ctx context.Context) error {
	g := globalsFrom(ctx)

	var filter mission.Type

	if l.Type != "" {
		t, err := mission.ParseType(l.Type)
		if err != nil {
			return err
		}

		filter = t
	}

	if l.Aircraft != "" {
		in, err := mission.Installed()
		if err != nil {
			return err
		}

		paths, err := in.MissionPaths(l.Aircraft)
		if err != nil {
			return err
		}

		for _, p := range paths {
			if filter != "" && p.Type != filter {
				continue
			}

			if _, err := fmt.Fprintf(g.Stdout, "%s\t%s\n", p.Type, p.Path); err != nil {
				return wrapWrite(err)
			}
		}
	}

	if filter != "" {
		return nil
	}

	for _, dir := range mission.SearchPath(l.Search, l.Dir...) {
		files, err := mission.ScanDir(dir)
		if err != nil {
			log.WarnContext(ctx, "directory skipped",
				slog.String("dir", dir),
				slog.Any("error", err))

			continue
		}

		for _, f := range files {
			if _, err := fmt.Fprintf(g.Stdout, "-\t%s\n", f); err != nil {
				return wrapWrite(err)
			}
		}
	}

	return nil
}
