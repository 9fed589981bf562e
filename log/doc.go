// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("mission opened", slog.String("path", path))
//
// A zero [Logger] discards everything, so packages accept one through an
// option and log unconditionally.
//
// # Configuration
//
// Loggers are configured with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("Kitchen"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with some settings changed, and [Config]
// does the same for the package-level logger used by [Info], [Warn] and the
// other package functions.
//
// # Levels
//
// In addition to the slog levels, [LevelTrace] sits below [LevelDebug] and
// is used for per-statement detail from the Lua reader.
//
// # Output
//
// [FormatText] writes key=value pairs and [FormatJSON] writes objects. With
// [WithPretty] enabled, text stays on one line and JSON is spread over
// indented lines; both are colored when written to a terminal. Attributes
// implementing [slog.LogValuer], such as reader errors, are expanded into
// dotted keys.
package log
