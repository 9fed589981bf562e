package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/dcsmiz/lang"
	"github.com/ardnew/dcsmiz/log"
)

// configCache holds the evaluated configuration files, so a file named by
// more than one loader is evaluated once.
//
//nolint:gochecknoglobals
var configCache lang.Cache

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written in the same Lua subset as mission files.
//
// The file assigns a table to the global name, with one field per flag:
//
//	config = {
//	  ["log-level"] = "debug",
//	  ["log-format"] = "json",
//	  ["log_pretty"] = false,
//	}
//
// Flag names may spell hyphens as underscores. Numbers are passed to kong as
// strings and sequences as lists. A file that fails to evaluate, or has no
// such table, configures nothing. Command-line flags override the file.
func resolve(ctx context.Context, name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		ns, err := configCache.LoadReader(ctx, r, lang.WithLogger(log.Default()))
		if err != nil {
			log.WarnContext(ctx, "configuration ignored", slog.Any("error", err))

			return config{}, nil
		}

		v, ok := ns.Get(name)
		if !ok {
			return config{}, nil
		}

		t, ok := v.AsTable()
		if !ok {
			log.WarnContext(ctx, "configuration ignored",
				slog.String("name", name),
				slog.String("kind", v.Kind().String()))

			return config{}, nil
		}

		return tableConfig(t), nil
	}
}

// config implements [kong.Resolver] over a flat map of flag values.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. A flag absent from the map resolves to
// nil so that kong keeps its default.
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	if value, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil //nolint:nilnil
}

// tableConfig converts the string-keyed fields of t to flag values.
func tableConfig(t *lang.Table) config {
	c := make(config, t.Len())

	for k, v := range t.All() {
		name, ok := k.AsString()
		if !ok {
			continue
		}

		if value, ok := flagValue(v); ok {
			c[name] = value
		}
	}

	return c
}

// flagValue converts v to the form kong parses: strings and booleans as is,
// numbers as strings, and sequences as lists of those.
func flagValue(v lang.Value) (any, bool) {
	switch v.Kind() {
	case lang.KindString:
		s, _ := v.AsString()

		return s, true

	case lang.KindBoolean:
		b, _ := v.AsBool()

		return b, true

	case lang.KindInteger:
		i, _ := v.AsInt()

		return strconv.FormatInt(i, 10), true

	case lang.KindFloat:
		f, _ := v.AsFloat()

		return strconv.FormatFloat(f, 'f', -1, 64), true

	case lang.KindTable:
		t, _ := v.AsTable()

		seq, ok := t.Sequence()
		if !ok {
			return nil, false
		}

		list := make([]any, 0, len(seq))

		for _, e := range seq {
			if ev, ok := flagValue(e); ok {
				list = append(list, ev)
			}
		}

		return list, true

	default:
		return nil, false
	}
}
