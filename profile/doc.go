// Package profile starts optional runtime profiling of dcsmiz.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	dcsmiz --pprof-mode cpu --pprof-dir ./profiles eval mission
//
// Without the tag, [Profiler.Start] always returns a no-op [Stopper] and
// [Modes] is empty. With the tag, the package also registers the
// [net/http/pprof] handlers on the default HTTP mux.
//
// Profiles are written by [github.com/pkg/profile] into the configured
// directory as <mode>.pprof and can be inspected with:
//
//	go tool pprof -http=: ./profiles/cpu.pprof
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
