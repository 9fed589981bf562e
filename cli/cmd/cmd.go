package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/ardnew/dcsmiz/lang"
	"github.com/ardnew/dcsmiz/log"
)

type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Globals holds settings shared by every command.
type Globals struct {
	// CacheDir holds transient files such as the REPL history.
	CacheDir string
	// MaxDepth bounds the nesting of parsed data.
	MaxDepth int

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type globalsKey struct{}

// WithGlobals returns a new context.Context carrying g.
func WithGlobals(ctx context.Context, g Globals) context.Context {
	return context.WithValue(ctx, globalsKey{}, g)
}

// globalsFrom returns the Globals stored in ctx, with the standard streams
// filling any unset writer or reader.
func globalsFrom(ctx context.Context) Globals {
	g, _ := ctx.Value(globalsKey{}).(Globals)

	if g.Stdin == nil {
		g.Stdin = os.Stdin
	}

	if g.Stdout == nil {
		g.Stdout = os.Stdout
	}

	if g.Stderr == nil {
		g.Stderr = os.Stderr
	}

	return g
}

// langOptions returns the parser options selected by the global flags.
func (g Globals) langOptions() []lang.Option {
	return []lang.Option{
		lang.WithMaxDepth(g.MaxDepth),
		lang.WithLogger(log.Default()),
	}
}

type sourceFilesKey struct{}

// SourceFiles reads the input files named by the --source flag as one
// stream, with a newline between files so that each ends its last statement.
type SourceFiles interface {
	IsZero() bool
	Names() []string
	io.Reader
}

type sourceFiles struct {
	names  []string
	read   []io.Reader
	reader io.Reader
}

// IsZero reports whether there are no source files.
func (s *sourceFiles) IsZero() bool { return s == nil || len(s.read) == 0 }

// Names returns the source file names in reading order. Stdin is "-".
func (s *sourceFiles) Names() []string { return s.names }

// Read implements io.Reader by reading every source in order.
func (s *sourceFiles) Read(p []byte) (int, error) {
	if s.reader == nil {
		parts := make([]io.Reader, 0, 2*len(s.read))
		for i, r := range s.read {
			if i > 0 {
				parts = append(parts, newline{})
			}

			parts = append(parts, r)
		}

		s.reader = io.MultiReader(parts...)
	}

	return s.reader.Read(p)
}

// newline reads a single "\n".
type newline struct{}

func (newline) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	p[0] = '\n'

	return 1, io.EOF
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithSourceFiles returns a new context.Context containing a [SourceFiles]
// reading the given paths.
//
// Files that resolve to the same file (through symlinks, hard links or
// relative paths) are read once. Every "-" collapses into a single stdin
// reader placed last. Unreadable files are skipped.
func WithSourceFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourceFilesKey{}, buildSourceFiles(sources, os.Stdin))
}

func buildSourceFiles(sources []string, stdin io.Reader) SourceFiles {
	if len(sources) == 0 {
		return nil
	}

	var (
		srcs     sourceFiles
		seen     []os.FileInfo
		hasStdin bool
	)

	for _, src := range sources {
		if src == stdinSource {
			hasStdin = true

			continue
		}

		f, info, ok := openUniqueFile(src, seen)
		if !ok {
			log.Debug("source skipped", slog.String("path", src))

			continue
		}

		seen = append(seen, info)
		srcs.names = append(srcs.names, src)
		srcs.read = append(srcs.read, f)
	}

	if hasStdin {
		srcs.names = append(srcs.names, stdinSource)
		srcs.read = append(srcs.read, stdin)
	}

	if len(srcs.read) == 0 {
		return nil
	}

	return &srcs
}

// openUniqueFile opens path unless it is the same file as one in seen.
func openUniqueFile(path string, seen []os.FileInfo) (*os.File, os.FileInfo, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, nil, false
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		return nil, nil, false
	}

	for _, s := range seen {
		if os.SameFile(s, info) {
			return nil, nil, false
		}
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, nil, false
	}

	return f, info, true
}

// sourceFilesFrom retrieves the SourceFiles stored in ctx by WithSourceFiles.
func sourceFilesFrom(ctx context.Context) SourceFiles {
	r, _ := ctx.Value(sourceFilesKey{}).(SourceFiles)

	return r
}
