package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/dcsmiz/pkg"
)

// baseConfig is the base name of the configuration file and of the table it
// must define.
const baseConfig = "config"

//nolint:gochecknoglobals
var defaultDirMode os.FileMode = 0o700

// debugBinary matches the executable names produced by dlv.
var debugBinary = regexp.MustCompile(`^__debug_bin\d*$`)

// appName returns the directory name used under the user config and cache
// directories: the executable base name without extension or leading dots,
// or [pkg.Name] when running under a debugger or when nothing remains.
//
//nolint:gochecknoglobals
var appName = sync.OnceValue(func() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	name := filepath.Base(exe)
	name = strings.TrimLeft(strings.TrimSuffix(name, filepath.Ext(name)), ".")

	if name == "" || debugBinary.MatchString(name) {
		return pkg.Name
	}

	return name
})

// userDir returns the application subdirectory of the directory reported by
// base. Without one it falls back to hidden under the home directory, and
// then to the working directory.
func userDir(base func() (string, error), hidden string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, hidden)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, appName())
}

//nolint:gochecknoglobals
var (
	configDir = sync.OnceValue(func() string { return userDir(os.UserConfigDir, ".config") })
	cacheDir  = sync.OnceValue(func() string { return userDir(os.UserCacheDir, ".cache") })
)

// configPath joins elem to the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
