package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// writeFile writes content to name under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

// testContext returns a context whose Globals write to the returned buffers.
func testContext(t *testing.T, stdin string) (context.Context, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	ctx := WithGlobals(context.Background(), Globals{
		CacheDir: t.TempDir(),
		Stdin:    strings.NewReader(stdin),
		Stdout:   &stdout,
		Stderr:   &stderr,
	})

	return ctx, &stdout, &stderr
}

func TestWithSourceFiles_Empty(t *testing.T) {
	for _, sources := range [][]string{nil, {}, {"/does/not/exist"}} {
		ctx := WithSourceFiles(context.Background(), sources)
		if r := sourceFilesFrom(ctx); r != nil {
			t.Errorf("WithSourceFiles(%v) = %v, want nil", sources, r)
		}
	}
}

func TestBuildSourceFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.lua", "a = 1")
	second := writeFile(t, dir, "second.lua", "b = 2")

	link := filepath.Join(dir, "link.lua")
	if err := os.Symlink(first, link); err != nil {
		t.Logf("symlink unsupported: %v", err)

		link = first
	}

	tests := []struct {
		name      string
		sources   []string
		stdin     string
		want      string
		wantNames []string
	}{
		{"single", []string{first}, "", "a = 1", []string{first}},
		{"joined_by_newline", []string{first, second}, "", "a = 1\nb = 2", []string{first, second}},
		{"duplicate_path", []string{first, first}, "", "a = 1", []string{first}},
		{"same_file_via_link", []string{first, link}, "", "a = 1", []string{first}},
		{"relative_duplicate", []string{first, filepath.Join(dir, ".", "first.lua")}, "", "a = 1", []string{first}},
		{"stdin_last", []string{"-", first, "-"}, "c = 3", "a = 1\nc = 3", []string{first, "-"}},
		{"directory_skipped", []string{dir, second}, "", "b = 2", []string{second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := buildSourceFiles(tt.sources, strings.NewReader(tt.stdin))
			if src == nil || src.IsZero() {
				t.Fatal("buildSourceFiles returned no sources")
			}

			if got := src.Names(); !slices.Equal(got, tt.wantNames) {
				t.Errorf("Names() = %v, want %v", got, tt.wantNames)
			}

			data, err := io.ReadAll(src)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}

			if string(data) != tt.want {
				t.Errorf("read %q, want %q", data, tt.want)
			}
		})
	}
}

func TestInput_Read(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "data.lua", "x = 1\n")
	miz := writeFile(t, dir, "unpacked/mission", "mission = {}\n")
	miz = filepath.Dir(miz)

	tests := []struct {
		name    string
		input   Input
		sources []string
		stdin   string
		want    string
		wantErr error
	}{
		{"file", Input{Path: file}, nil, "", "x = 1\n", nil},
		{"stdin", Input{Path: "-"}, nil, "y = 2", "y = 2", nil},
		{"global_sources", Input{}, []string{file}, "", "x = 1\n", nil},
		{"entry", Input{Path: miz, Entry: "mission"}, nil, "", "mission = {}\n", nil},
		{"missing_entry", Input{Path: miz, Entry: "theatre"}, nil, "", "", ErrReadSource},
		{"entry_without_path", Input{Entry: "mission"}, nil, "", "", ErrNoSource},
		{"missing_file", Input{Path: filepath.Join(dir, "nope.lua")}, nil, "", "", ErrReadSource},
		{"nothing", Input{}, nil, "", "", ErrNoSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, _ := testContext(t, tt.stdin)
			ctx = WithSourceFiles(ctx, tt.sources)

			got, err := tt.input.read(ctx)

			if tt.wantErr != nil {
				if !isErr(err, tt.wantErr) {
					t.Fatalf("read() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("read() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("read() = %q, want %q", got, tt.want)
			}
		})
	}
}
