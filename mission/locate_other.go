//go:build !windows

package mission

import (
	"log/slog"
	"runtime"
)

func locateRoot() (string, error) {
	return "", ErrNotInstalled.With(slog.String("os", runtime.GOOS))
}
