package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_UsesDefaultLogger(t *testing.T) {
	var buf bytes.Buffer

	prev := SetDefault(Make(&buf, WithLevel(LevelTrace), WithPretty(false)))
	defer SetDefault(prev)

	ctx := context.Background()

	tests := []struct {
		name  string
		log   func()
		level string
	}{
		{"TraceContext", func() { TraceContext(ctx, "message") }, "TRACE"},
		{"Debug", func() { Debug("message") }, "DEBUG"},
		{"DebugContext", func() { DebugContext(ctx, "message") }, "DEBUG"},
		{"Info", func() { Info("message") }, "INFO"},
		{"InfoContext", func() { InfoContext(ctx, "message") }, "INFO"},
		{"Warn", func() { Warn("message") }, "WARN"},
		{"WarnContext", func() { WarnContext(ctx, "message") }, "WARN"},
		{"Error", func() { Error("message") }, "ERROR"},
		{"ErrorContext", func() { ErrorContext(ctx, "message") }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()

			out := buf.String()
			if !strings.Contains(out, "msg=message") || !strings.Contains(out, "level="+tt.level) {
				t.Errorf("output = %q, want level %s", out, tt.level)
			}
		})
	}
}

func TestPackage_Config(t *testing.T) {
	var buf bytes.Buffer

	prev := SetDefault(Make(&buf, WithPretty(false), WithLevel(LevelError)))
	defer SetDefault(prev)

	Info("hidden")

	Config(WithLevel(LevelInfo))
	With(slog.String("component", "mission")).Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("message below level written: %q", out)
	}

	if !strings.Contains(out, "component=mission") || !strings.Contains(out, "shown") {
		t.Errorf("output = %q", out)
	}

	if Default().Level() != LevelInfo {
		t.Errorf("Default().Level() = %v, want info", Default().Level())
	}
}
