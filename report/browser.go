package report

import (
	"context"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/ardnew/dcsmiz/log"
)

// browserCommand returns the command that opens target in the default
// browser of the running platform.
func browserCommand(goos, target string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	case "darwin":
		return "open", []string{target}
	default:
		return "xdg-open", []string{target}
	}
}

// Open opens target, a file path or URL, in the default browser. It does not
// wait for the browser, which outlives ctx.
func Open(ctx context.Context, target string) error {
	name, args := browserCommand(runtime.GOOS, target)

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return ErrBrowser.Wrap(err).With(
			slog.String("command", name),
			slog.String("target", target))
	}

	log.DebugContext(ctx, "browser started",
		slog.String("command", name),
		slog.Int("pid", cmd.Process.Pid))

	go func() { _ = cmd.Wait() }()

	return nil
}
