package mission

import (
	"context"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// Type is the kind of an official mission, named after the directory that
// holds it.
type Type string

// Official mission types.
const (
	TypeSingle     Type = "Single"
	TypeTraining   Type = "Training"
	TypeQuickStart Type = "QuickStart"
)

// Types lists the mission types searched for each aircraft.
func Types() []Type {
	return []Type{TypeSingle, TypeTraining, TypeQuickStart}
}

// ParseType returns the Type named s, ignoring case.
func ParseType(s string) (Type, error) {
	for _, t := range Types() {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}

	return "", ErrMissionType.With(slog.String("type", s))
}

//nolint:gochecknoglobals
var (
	rootMu   sync.Mutex
	rootPath string
	locate   = sync.OnceValues(locateRoot)
)

// Locate returns the root directory of the DCS World installation. The
// lookup runs once per process; [SetRoot] takes precedence over it.
func Locate() (string, error) {
	rootMu.Lock()
	root, find := rootPath, locate
	rootMu.Unlock()

	if root != "" {
		return root, nil
	}

	return find()
}

// SetRoot overrides the installation root returned by [Locate]. An empty
// path removes the override.
func SetRoot(path string) {
	rootMu.Lock()
	defer rootMu.Unlock()

	rootPath = path
}

// ResetLocate forgets the override and the memoized lookup.
func ResetLocate() {
	rootMu.Lock()
	defer rootMu.Unlock()

	rootPath = ""
	locate = sync.OnceValues(locateRoot)
}

// Installation is a DCS World install rooted at Root.
type Installation struct {
	Root string
}

// Installed returns the Installation found by [Locate].
func Installed() (Installation, error) {
	root, err := Locate()
	if err != nil {
		return Installation{}, err
	}

	return Installation{Root: root}, nil
}

func (in Installation) aircraftDir(elem ...string) string {
	return filepath.Join(append([]string{in.Root, "Mods", "aircraft"}, elem...)...)
}

// Aircraft returns the names of the installed aircraft modules, sorted.
func (in Installation) Aircraft() ([]string, error) {
	dir := in.aircraftDir()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ErrAircraft.Wrap(err).With(slog.String("dir", dir))
	}

	var names []string

	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}

	slices.Sort(names)

	return names, nil
}

// MissionPath locates one official mission file.
type MissionPath struct {
	Path string
	Type Type
}

// MissionPaths returns the official missions of aircraft, grouped by type in
// the order of [Types]. Missing type directories are skipped.
func (in Installation) MissionPaths(aircraft string) ([]MissionPath, error) {
	var paths []MissionPath

	for _, t := range Types() {
		dir := in.aircraftDir(aircraft, "Missions", string(t))

		files, err := ScanDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}

			return nil, ErrAircraft.Wrap(err).With(
				slog.String("aircraft", aircraft),
				slog.String("dir", dir))
		}

		for _, f := range files {
			paths = append(paths, MissionPath{Path: f, Type: t})
		}
	}

	return paths, nil
}

// Missions opens each official mission of aircraft in turn. The caller owns
// each yielded Mission and must close it. Iteration stops at the first error
// the caller does not continue past.
func (in Installation) Missions(
	ctx context.Context,
	aircraft string,
	opts ...Option,
) iter.Seq2[*Mission, error] {
	return func(yield func(*Mission, error) bool) {
		paths, err := in.MissionPaths(aircraft)
		if err != nil {
			yield(nil, err)

			return
		}

		for _, p := range paths {
			m, err := Open(ctx, p.Path, append(slices.Clip(opts), WithType(p.Type))...)
			if !yield(m, err) {
				return
			}
		}
	}
}

// Mission opens the official mission base of the given aircraft and type.
func (in Installation) Mission(
	ctx context.Context,
	aircraft string,
	kind Type,
	base string,
	opts ...Option,
) (*Mission, error) {
	path := in.aircraftDir(aircraft, "Missions", string(kind), base)

	return Open(ctx, path, append(slices.Clip(opts), WithType(kind))...)
}

// ScanDir returns the .miz files in dir, sorted.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string

	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".miz") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	return files, nil
}

// SearchPath prepends dirs to the path list (separated by
// [os.PathListSeparator]) and returns the directories that exist.
func SearchPath(list string, dirs ...string) []string {
	joined := mung.Make(
		mung.WithSubjectItems(filepath.SplitList(list)...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(isDir),
	).String()

	var out []string

	for _, dir := range filepath.SplitList(joined) {
		if dir != "" && isDir(dir) && !slices.Contains(out, dir) {
			out = append(out, dir)
		}
	}

	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
