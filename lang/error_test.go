package lang

import (
	"errors"
	"io/fs"
	"log/slog"
	"testing"
)

func TestError_Is(t *testing.T) {
	derived := ErrSyntax.WithPosition(Position{Line: 2, Column: 4}).
		With(slog.String("near", "x"))

	if !errors.Is(derived, ErrSyntax) {
		t.Error("derived error does not match its kind")
	}

	if errors.Is(derived, ErrUnsupportedLiteral) {
		t.Error("derived error matches an unrelated kind")
	}

	if derived.Kind() != ErrSyntax {
		t.Errorf("Kind() = %v, want ErrSyntax", derived.Kind())
	}

	if ErrSyntax.Kind() != ErrSyntax {
		t.Error("sentinel Kind() is not itself")
	}

	wrapped := ErrReadInput.Wrap(fs.ErrNotExist)
	if !errors.Is(wrapped, ErrReadInput) || !errors.Is(wrapped, fs.ErrNotExist) {
		t.Errorf("wrapped error %v lost its kind or cause", wrapped)
	}

	if len(ErrSyntax.Attrs()) != 0 {
		t.Error("With modified the sentinel")
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"bare", ErrSyntax, "syntax error"},
		{
			"positioned",
			ErrSyntax.WithPosition(Position{Line: 3, Column: 7}),
			"syntax error at 3:7",
		},
		{
			"wrapped",
			ErrReadInput.Wrap(errors.New("disk on fire")),
			"failed to read input: disk on fire",
		},
		{"cause only", WrapError(errors.New("plain")), "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Snippet(t *testing.T) {
	src := "a = 1\nb = a +\r\n  @"

	err := ErrSyntax.WithPosition(Position{Offset: 17, Line: 3, Column: 3})

	want := "  3 |   @\n" +
		"        ^\n"

	if got := err.Snippet(src); got != want {
		t.Errorf("Snippet() =\n%q\nwant\n%q", got, want)
	}

	if got := ErrSyntax.Snippet(src); got != "" {
		t.Errorf("Snippet() without position = %q, want empty", got)
	}

	if got := ErrSyntax.WithPosition(Position{Line: 9, Column: 1}).Snippet(src); got != "" {
		t.Errorf("Snippet() past the end = %q, want empty", got)
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrTypeMismatch.WithPosition(Position{Line: 1, Column: 5}).
		With(slog.String("operator", "+"))

	got := map[string]string{}
	for _, a := range err.LogValue().Group() {
		got[a.Key] = a.Value.String()
	}

	want := map[string]string{
		"error":    "type mismatch",
		"position": "1:5",
		"operator": "+",
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("LogValue()[%s] = %q, want %q", k, got[k], v)
		}
	}
}
