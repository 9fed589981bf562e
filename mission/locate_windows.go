//go:build windows

package mission

import (
	"log/slog"

	"golang.org/x/sys/windows/registry"
)

// registryKeys are searched in order under HKEY_CURRENT_USER.
var registryKeys = []string{
	`SOFTWARE\Eagle Dynamics\DCS World OpenBeta`,
	`SOFTWARE\Eagle Dynamics\DCS World`,
}

func locateRoot() (string, error) {
	for _, name := range registryKeys {
		k, err := registry.OpenKey(registry.CURRENT_USER, name, registry.QUERY_VALUE)
		if err != nil {
			continue
		}

		path, _, err := k.GetStringValue("Path")
		_ = k.Close()

		if err == nil && path != "" {
			return path, nil
		}
	}

	return "", ErrNotInstalled.With(slog.Any("registry", registryKeys))
}
