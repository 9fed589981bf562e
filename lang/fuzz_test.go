package lang

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

// FuzzLexer tests the lexer with random inputs to find edge cases.
func FuzzLexer(f *testing.F) {
	f.Add("x = 1")
	f.Add(`s = "a\"b\\c"`)
	f.Add("[==[long]==] --[[ comment ]]")
	f.Add("0x1p4 1e10 .5 5.")
	f.Add("\ufeff#!shebang\nx")
	f.Add("'unterminated")

	f.Fuzz(func(t *testing.T, input string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("lexer panicked on input %q: %v", input, r)
			}
		}()

		l := newLexer(input)
		last := -1

		for range len(input) + 2 {
			tok := l.next()

			if tok.end < tok.pos.Offset || tok.end > len(input) {
				t.Fatalf("token %v has span %d..%d outside input", tok.kind, tok.pos.Offset, tok.end)
			}

			if tok.pos.Offset < last {
				t.Fatalf("token %v at %d precedes previous token at %d", tok.kind, tok.pos.Offset, last)
			}

			last = tok.pos.Offset

			if tok.kind == tokEOF {
				return
			}

			if tok.kind == tokInvalid {
				if !errors.Is(l.err, ErrSyntax) {
					t.Fatalf("invalid token without syntax error: %v", l.err)
				}

				return
			}
		}

		t.Fatalf("lexer did not terminate on %q", input)
	})
}

// FuzzParse tests that parsing and evaluation fail cleanly.
func FuzzParse(f *testing.F) {
	f.Add(`mission = {["theatre"] = "Caucasus", [1] = {2, 3}}`)
	f.Add(`a, b = 1, 2; c = a * b / 3 + -4.5`)
	f.Add(`function f(a, ...) return a end x = {[0]="ape", "banana", [1]="bat"}`)
	f.Add(`for i = 1, 10 do if i then break end end`)
	f.Add(`x = {{{{`)
	f.Add(`x = 1 // 2 % 3 .. "s"`)

	f.Fuzz(func(t *testing.T, input string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("panicked on input %q: %v", input, r)
			}
		}()

		ns, err := LoadString(context.Background(), input)
		if err != nil {
			var le *Error
			if !errors.As(err, &le) {
				t.Fatalf("error %T is not *Error: %v", err, err)
			}

			if ns != nil {
				t.Fatal("namespace returned alongside error")
			}

			return
		}

		// Carriage returns in strings and NaN have no literal form.
		if strings.ContainsRune(input, '\r') {
			return
		}

		var buf bytes.Buffer
		if err := ns.Format(context.Background(), &buf, 0); err != nil {
			t.Fatalf("Format: %v", err)
		}

		if strings.Contains(buf.String(), "(0/0)") {
			return
		}

		again, err := LoadString(context.Background(), buf.String())
		if err != nil {
			t.Fatalf("reloading formatted output %q: %v", buf.String(), err)
		}

		if !ns.Equal(again) {
			t.Fatalf("round trip changed %q into %q", input, buf.String())
		}
	})
}

// FuzzDecodeString tests string literal decoding against the encoder.
func FuzzDecodeString(f *testing.F) {
	f.Add(`"plain"`)
	f.Add(`'\'quoted\''`)
	f.Add("\"line\\\r\nbreak\"")
	f.Add(`"\q\65\x41"`)
	f.Add(`"dangling\"`)

	f.Fuzz(func(t *testing.T, input string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("DecodeString panicked on %q: %v", input, r)
			}
		}()

		s, err := DecodeString(input)
		if err != nil {
			if !errors.Is(err, ErrUnsupportedLiteral) {
				t.Fatalf("DecodeString(%q) error = %v, want ErrUnsupportedLiteral", input, err)
			}

			return
		}

		if strings.ContainsRune(s, '\r') {
			return
		}

		got, err := DecodeString(EncodeString(s))
		if err != nil || got != s {
			t.Fatalf("re-encoding %q gave (%q, %v)", s, got, err)
		}
	})
}
