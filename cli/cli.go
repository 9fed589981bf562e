package cli

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/dcsmiz/cli/cmd"
	"github.com/ardnew/dcsmiz/lang"
	"github.com/ardnew/dcsmiz/log"
	"github.com/ardnew/dcsmiz/mission"
	"github.com/ardnew/dcsmiz/pkg"
	"github.com/ardnew/dcsmiz/report"
)

// CLI is the top-level command-line interface for dcsmiz.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Source   []string `help:"Input source file(s) or '-' for stdin"  name:"source" short:"s"       type:"existingfile"`
	Root     string   `env:"DCS_ROOT"                                 help:"DCS World installation directory" type:"path"`
	MaxDepth int      `default:"${maxDepth}"                          help:"Maximum expression nesting depth"`

	Init    cmd.Init    `cmd:"" help:"Initialize configuration file"`
	Eval    cmd.Eval    `cmd:"" default:"withargs" help:"Evaluate a mission source"`
	Query   cmd.Query   `cmd:"" help:"Evaluate an expression against a mission source"`
	Mission cmd.Mission `cmd:"" help:"Summarize a mission archive"`
	List    cmd.List    `cmd:"" help:"List installed aircraft and missions"`
	Report  cmd.Report  `cmd:"" help:"Render an HTML report of installed missions"`
	Repl    cmd.Repl    `cmd:"" help:"Explore a mission source interactively"`
}

// Run executes the dcsmiz CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Version,
		"maxDepth":           strconv.Itoa(lang.DefaultMaxDepth),
		"reportTitle":        report.DefaultTitle,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that parse errors and the
	// configuration loader already log with the requested settings.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.DefaultEnvars(strings.TrimSuffix(pkg.EnvPrefix(), "_")),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx, baseConfig), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if cli.Root != "" {
		mission.SetRoot(cli.Root)
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithGlobals(ctx, cmd.Globals{
		CacheDir: cacheDir(),
		MaxDepth: cli.MaxDepth,
	})
	ctx = cmd.WithSourceFiles(ctx, cli.Source)

	// TimeLayout and Caller are only applied once parsing completes.
	cli.Log.start(ctx)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	log.DebugContext(ctx, "command selected", slog.String("command", ktx.Command()))

	return ktx.Run(ctx, &cli)
}
