//go:build pprof

package profile

import (
	"maps"
	"slices"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Enabled reports whether profiling was compiled in.
const Enabled = true

var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Modes returns the supported profiling modes, sorted.
func Modes() []string {
	return slices.Sorted(maps.Keys(mode))
}

// Option adds a setting to a profiling session.
type Option func([]func(*profile.Profile)) []func(*profile.Profile)

func start(p Profiler) Stopper {
	settings := apply(nil, withMode(p.Mode))
	if len(settings) == 0 {
		return ignore{}
	}

	return profile.Start(apply(settings, withPath(p.Path), withQuiet(p.Quiet))...)
}

func apply(s []func(*profile.Profile), opts ...Option) []func(*profile.Profile) {
	for _, opt := range opts {
		s = opt(s)
	}

	return s
}

func withMode(m string) Option {
	return func(s []func(*profile.Profile)) []func(*profile.Profile) {
		if fn, ok := mode[m]; ok {
			s = append(s, fn)
		}

		return s
	}
}

func withPath(path string) Option {
	return func(s []func(*profile.Profile)) []func(*profile.Profile) {
		if path != "" {
			s = append(s, profile.ProfilePath(path))
		}

		return s
	}
}

func withQuiet(quiet bool) Option {
	return func(s []func(*profile.Profile)) []func(*profile.Profile) {
		if quiet {
			s = append(s, profile.Quiet)
		}

		return s
	}
}
