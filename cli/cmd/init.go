package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/dcsmiz/lang"
	"github.com/ardnew/dcsmiz/log"
	"github.com/ardnew/dcsmiz/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	ns := lang.NewNamespace(buildConfig(ktx))

	err = ns.Format(ctx, file, defaultConfigIndent)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildConfig returns a table holding a single configuration table named
// [ConfigIdentifier] with the current value of every visible flag.
func buildConfig(ktx *kong.Context) *lang.Table {
	conf := lang.NewTable()

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := flagValue(ktx.FlagValue(flag)); ok {
			conf.Set(lang.StringKey(flag.Name), v)
		}
	}

	root := lang.NewTable()
	root.Set(lang.StringKey(ConfigIdentifier), lang.TableOf(conf))

	return root
}

// flagValue converts a parsed flag value to a [lang.Value]. Empty strings,
// empty slices and nil values report false.
func flagValue(val any) (lang.Value, bool) {
	if val == nil {
		return lang.Nil(), false
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Bool:
		return lang.Bool(rv.Bool()), true

	case reflect.String:
		if rv.Len() == 0 {
			return lang.Nil(), false
		}

		return lang.String(rv.String()), true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lang.Int(rv.Int()), true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lang.Int(int64(rv.Uint())), true //nolint:gosec

	case reflect.Float32, reflect.Float64:
		return lang.Float(rv.Float()), true

	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return lang.Nil(), false
		}

		seq := lang.NewTable()

		var n int64

		for i := range rv.Len() {
			v, ok := flagValue(rv.Index(i).Interface())
			if !ok {
				continue
			}

			n++
			seq.Set(lang.IntKey(n), v)
		}

		return lang.TableOf(seq), true

	default:
		return lang.String(fmt.Sprint(val)), true
	}
}
