package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

type groupValue []slog.Attr

func (g groupValue) LogValue() slog.Value { return slog.GroupValue(g...) }

func TestMake_Defaults(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("Format() = %v, want %v", logger.Format(), DefaultFormat)
	}

	if logger.caller || !logger.pretty {
		t.Errorf("caller = %v, pretty = %v", logger.caller, logger.pretty)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		log     func(Logger)
		written bool
	}{
		{"trace below debug", LevelDebug, func(l Logger) { l.Trace("m") }, false},
		{"trace at trace", LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{"debug at debug", LevelDebug, func(l Logger) { l.Debug("m") }, true},
		{"info below warn", LevelWarn, func(l Logger) { l.Info("m") }, false},
		{"warn at warn", LevelWarn, func(l Logger) { l.Warn("m") }, true},
		{"error above warn", LevelWarn, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.level)))

			if got := buf.Len() > 0; got != tt.written {
				t.Errorf("written = %v, want %v: %q", got, tt.written, buf.String())
			}
		})
	}
}

func TestLogger_Enabled(t *testing.T) {
	logger := Make(nil, WithLevel(LevelInfo))

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug enabled at info level")
	}

	if !logger.Enabled(context.Background(), LevelError) {
		t.Error("error disabled at info level")
	}

	var zero Logger
	if zero.Enabled(context.Background(), LevelError) {
		t.Error("zero logger reports enabled")
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var zero Logger

	// None of these may panic.
	zero.Info("ignored")
	zero.TraceContext(context.Background(), "ignored", slog.Int("n", 1))
	zero = zero.With(slog.String("k", "v"))

	if zero.Level() != DefaultLevel || zero.Format() != DefaultFormat {
		t.Errorf("zero logger Level() = %v, Format() = %v", zero.Level(), zero.Format())
	}

	wrapped := zero.Wrap(WithLevel(LevelError))
	if wrapped.Level() != LevelError {
		t.Errorf("Wrap of zero logger Level() = %v, want error", wrapped.Level())
	}
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false),
		WithLevel(LevelTrace), WithTimeLayout("none"))

	logger.With(slog.String("file", "mission")).
		Trace("statement skipped", slog.Int("line", 3),
			slog.Any("error", groupValue{slog.String("error", "boom")}))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}

	want := map[string]any{
		"level": "TRACE",
		"msg":   "statement skipped",
		"file":  "mission",
		"line":  float64(3),
		"error": map[string]any{"error": "boom"},
	}

	for k, v := range want {
		if got, ok := rec[k]; !ok || !equalJSON(got, v) {
			t.Errorf("%s = %v, want %v", k, got, v)
		}
	}

	if _, ok := rec["time"]; ok {
		t.Errorf("time present with layout none: %v", rec)
	}
}

func equalJSON(a, b any) bool {
	x, _ := json.Marshal(a)
	y, _ := json.Marshal(b)

	return bytes.Equal(x, y)
}

func TestLogger_PrettyText(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout(""), WithLevel(LevelDebug)).
		With(slog.String("archive", "a.miz"))

	logger.Debug("parse failed",
		slog.Any("error", groupValue{slog.String("error", "syntax error"), slog.String("position", "3:7")}),
		slog.Bool("cached", false))

	want := "level=DEBUG msg=parse failed archive=a.miz " +
		"error.error=syntax error error.position=3:7 cached=false\n"

	if got := buf.String(); got != want {
		t.Errorf("pretty text =\n%q\nwant\n%q", got, want)
	}
}

func TestLogger_PrettyJSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none"))
	logger.Warn("slow", slog.Int("ms", 1200))

	want := "{\n  level: WARN,\n  msg: slow,\n  ms: 1200\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("pretty JSON =\n%q\nwant\n%q", got, want)
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithPretty(false), WithTimeLayout("none")).
		Warn("here")

	if !strings.Contains(buf.String(), "log_test.go:") {
		t.Errorf("caller not reported: %s", buf.String())
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelError))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelError || wrapped.Level() != LevelDebug {
		t.Errorf("base = %v, wrapped = %v", base.Level(), wrapped.Level())
	}

	wrapped.Debug("from wrapped")

	if !strings.Contains(buf.String(), "from wrapped") {
		t.Errorf("wrapped logger did not keep output: %q", buf.String())
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var (
		buf syncBuffer
		wg  sync.WaitGroup
	)

	logger := Make(&buf, WithPretty(false), WithLevel(LevelInfo))

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			l := logger.With(slog.Int("worker", i))
			for range 50 {
				l.Info("tick")
			}

			_ = logger.Wrap(WithLevel(LevelDebug))
		}()
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "tick"); n != 400 {
		t.Errorf("got %d lines, want 400", n)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
