// Package cli contains the command line interface for dcsmiz.
//
// # Usage
//
//	dcsmiz [flags] <command> [args]
//
// Eval is the default command, so a bare path evaluates that file:
//
//	dcsmiz ./mission
//	dcsmiz eval --format json -e mission Caucasus-Intro.miz
//	dcsmiz query 'len(fields(coalition.blue.country))' ./mission
//	dcsmiz mission --format yaml --extract ./images Caucasus-Intro.miz
//	dcsmiz list missions A-10C --type training
//	dcsmiz report --open A-10C F-16C
//	dcsmiz repl ./mission
//
// # Configuration
//
// Flag defaults are read from a configuration file written in the same Lua
// subset as mission files. The file must assign a table to the global
// "config" whose bracketed keys are flag names:
//
//	config = {
//	  ["log_level"] = "debug",
//	  ["max-depth"] = 64,
//	  ["source"] = { "base.lua" },
//	}
//
// `dcsmiz init` writes the current flag values to that file. A file that fails
// to evaluate is ignored with a warning.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
// The profiling flags are then:
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/dcsmiz/pprof)
//
// # Environment
//
// Every flag may be set from an environment variable named after the flag
// with the DCSMIZ_ prefix. DCS_ROOT locates the DCS World installation.
package cli
