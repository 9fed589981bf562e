package lang

import (
	"errors"
	"math"
	"testing"
)

func TestDecodeNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Value
		wantErr error
	}{
		{name: "integer", input: "12", want: Int(12)},
		{name: "zero", input: "0", want: Int(0)},
		{name: "float", input: "9.8", want: Float(9.8)},
		{name: "leading dot", input: ".5", want: Float(0.5)},
		{name: "trailing dot", input: "5.", want: Float(5)},
		{name: "exponent without dot", input: "1e3", want: Float(1000)},
		{name: "signed exponent", input: "2.5E-3", want: Float(0.0025)},
		{name: "integral float stays float", input: "3.0", want: Float(3)},
		{
			name:  "integer overflow becomes float",
			input: "9223372036854775808",
			want:  Float(9223372036854775808),
		},
		{name: "float overflow is infinite", input: "1e9999", want: Float(math.Inf(1))},
		{name: "hex integer", input: "0xFF", wantErr: ErrUnsupportedLiteral},
		{name: "hex float", input: "0x1p4", wantErr: ErrUnsupportedLiteral},
		{name: "empty", input: "", wantErr: ErrUnsupportedLiteral},
		{name: "garbage", input: "1..2", wantErr: ErrUnsupportedLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeNumber(tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeNumber(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("DecodeNumber(%q) unexpected error: %v", tt.input, err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("DecodeNumber(%q) = %v (%v), want %v (%v)",
					tt.input, got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestDecodeString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: `"Brian"`, want: "Brian"},
		{name: "single quoted", input: `'Brian'`, want: "Brian"},
		{name: "empty", input: `""`, want: ""},
		{
			name:  "escaped double quotes",
			input: `"\"Hello World\""`,
			want:  `"Hello World"`,
		},
		{
			name:  "escaped single quotes",
			input: `'\'Hello World\''`,
			want:  `'Hello World'`,
		},
		{name: "bell and backspace", input: `"\a\b"`, want: "\a\b"},
		{name: "newline escape", input: `"a\nb"`, want: "a\nb"},
		{name: "escaped backslash", input: `"a\\b"`, want: `a\b`},
		{name: "line continuation LF", input: "\"one\\\ntwo\"", want: "one\ntwo"},
		{name: "line continuation CR LF", input: "\"one\\\r\ntwo\"", want: "one\ntwo"},
		{name: "lone CR is not a continuation", input: "\"one\\\rtwo\"", want: "one\\\rtwo"},
		{name: "unknown escape passes through", input: `"\q"`, want: `\q`},
		{name: "tab escape is not decoded", input: `"a\tb"`, want: `a\tb`},
		{name: "decimal escape is not decoded", input: `"\65"`, want: `\65`},
		{name: "multibyte escape", input: `"\é"`, want: `\é`},
		{name: "utf-8 content", input: `"Тбилиси"`, want: "Тбилиси"},
		{name: "long bracket", input: `[[text]]`, wantErr: ErrUnsupportedLiteral},
		{name: "leveled long bracket", input: `[==[text]==]`, wantErr: ErrUnsupportedLiteral},
		{name: "mismatched quotes", input: `"text'`, wantErr: ErrUnsupportedLiteral},
		{name: "lone quote", input: `"`, wantErr: ErrUnsupportedLiteral},
		{name: "dangling escape", input: `"abc\"`, wantErr: ErrUnsupportedLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeString(tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeString(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("DecodeString(%q) unexpected error: %v", tt.input, err)
			}

			if got != tt.want {
				t.Errorf("DecodeString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEncodeString(t *testing.T) {
	inputs := []string{
		"",
		"Brian",
		`"quoted"`,
		`back\slash`,
		"line\nbreak",
		"bell\a and backspace\b",
		"tab\tstays raw",
		`\q`,
		"Тбилиси",
		"invalid \xff utf-8",
	}

	for _, s := range inputs {
		t.Run(s, func(t *testing.T) {
			lit := EncodeString(s)

			got, err := DecodeString(lit)
			if err != nil {
				t.Fatalf("DecodeString(%s) unexpected error: %v", lit, err)
			}

			if got != s {
				t.Errorf("DecodeString(EncodeString(%q)) = %q", s, got)
			}

			// The literal must also survive the lexer.
			toks, _ := scanAll(t, lit)
			if toks[0].kind != tokString || toks[0].end != len(lit) {
				t.Errorf("lexer split %s into %v", lit, toks)
			}
		})
	}
}
