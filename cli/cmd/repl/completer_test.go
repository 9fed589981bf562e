package repl

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/dcsmiz/lang"
	"github.com/ardnew/dcsmiz/log"
)

const testSource = `
mission = {
  ["theatre"] = "Caucasus",
  ["sortie"] = "DictKey_sortie_5",
  ["weather"] = { ["clouds"] = { ["base"] = 2500 }, ["season"] = 2 },
  ["goals"] = { "destroy", "survive" },
}
maxDictId = 12
`

func loadTestNamespace(t *testing.T) *lang.Namespace {
	t.Helper()

	ns, err := lang.LoadString(context.Background(), testSource)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	return ns
}

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "mission.the", 11, "the", 8, 11},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_minus", "a-fo", 4, "fo", 2, 4},
		{"after_paren", "len(mi", 6, "mi", 4, 6},
		{"after_bracket", "goals[ma", 8, "ma", 6, 8},
		{"after_comma", "has(a, fo", 9, "fo", 7, 9},
		{"in_ternary", "x ? fo", 6, "fo", 4, 6},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"cursor_past_end", "foo", 9, "foo", 0, 3},
		{"empty_after_dot", "mission.", 8, "", 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "bar.baz.", 8, "bar.baz"},
		{"after_operator", "foo + bar.baz.", 14, "bar.baz"},
		{"after_paren", "(bar.baz.", 9, "bar.baz"},
		{"no_chain", "a + ", 4, ""},
		{"deep_chain", "a.b.c.", 6, "a.b.c"},
		{"after_equals", "x == a.b.", 9, "a.b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parentPath(tt.input, tt.wordStart)
			if got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	ns := loadTestNamespace(t)

	tests := []struct {
		name    string
		parent  string
		want    []string
		exclude []string
	}{
		{"top_level", "", []string{"mission", "maxDictId", "seq", "fields", "len", "filter"}, nil},
		{"table", "mission", []string{"goals", "sortie", "theatre", "weather"}, []string{"len"}},
		{"nested", "mission.weather", []string{"clouds", "season"}, nil},
		{"scalar", "maxDictId", nil, nil},
		{"unknown", "nothing.here", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := candidates(ns, tt.parent)

			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("candidates(%q) = %v, missing %q", tt.parent, got, w)
				}
			}

			for _, x := range tt.exclude {
				if slices.Contains(got, x) {
					t.Errorf("candidates(%q) = %v, unexpected %q", tt.parent, got, x)
				}
			}

			if tt.want == nil && len(got) != 0 {
				t.Errorf("candidates(%q) = %v, want none", tt.parent, got)
			}
		})
	}
}

func testModel(t *testing.T) model {
	t.Helper()

	return newModel(context.Background(), loadTestNamespace(t), testSource,
		NewHistory(""), log.Logger{}, nil)
}

func TestComputeMatches(t *testing.T) {
	tests := []struct {
		name  string
		mode  inputMode
		input string
		first string
		none  bool
	}{
		{"top_level_word", modeEval, "missi", "mission", false},
		{"empty_top_level", modeEval, "", "", true},
		{"after_dot_lists_all", modeEval, "mission.", "goals", false},
		{"member", modeEval, "mission.weather.clo", "clouds", false},
		{"no_candidates", modeEval, "maxDictId.x", "", true},
		{"ctrl", modeCtrl, "qu", "quit", false},
		{"ctrl_empty", modeCtrl, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(t)
			m.mode = tt.mode
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, end := m.computeMatches()

			if end != len(tt.input) {
				t.Errorf("word end = %d, want %d", end, len(tt.input))
			}

			if tt.none {
				if len(matches) != 0 {
					t.Errorf("matches = %v, want none", matches)
				}

				return
			}

			if len(matches) == 0 || matches[0].Str != tt.first {
				t.Errorf("matches = %v, want %q first", matches, tt.first)
			}
		})
	}
}

func TestIsFunction(t *testing.T) {
	for name, want := range map[string]bool{
		"len":     true,
		"filter":  true,
		"seq":     true,
		"fields":  true,
		"mission": false,
	} {
		if got := isFunction(name); got != want {
			t.Errorf("isFunction(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestPreview(t *testing.T) {
	tbl := lang.NewTable()
	tbl.Set(lang.IntKey(1), lang.String("a"))
	tbl.Set(lang.IntKey(2), lang.String("b"))

	one := lang.NewTable()
	one.Set(lang.StringKey("x"), lang.Int(1))

	tests := []struct {
		name  string
		value lang.Value
		width int
		want  string
	}{
		{"string", lang.String("Caucasus"), 20, `"Caucasus"`},
		{"integer", lang.Int(12), 20, "12"},
		{"table", lang.TableOf(tbl), 20, "{ 2 entries }"},
		{"single", lang.TableOf(one), 20, "{ 1 entry }"},
		{"clipped", lang.String(strings.Repeat("x", 30)), 10, `"xxxxxx...`},
		{"folded", lang.String("a\nb"), 20, `"a\nb"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preview(tt.value, tt.width); got != tt.want {
				t.Errorf("preview() = %q, want %q", got, tt.want)
			}
		})
	}
}
