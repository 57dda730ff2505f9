package repl

import (
	"context"
	"io"
	"slices"
	"testing"

	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/store"
)

func TestWordBounds_ExprOperators(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "bar.baz", 7, "baz", 4, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "double(fo", 9, "fo", 7, 9},
		{"after_comma", "add(a, fo", 9, "fo", 7, 9},
		{"after_comparison", "a > fo", 6, "fo", 4, 6},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"underscore", "log_level", 9, "log_level", 0, 9},
		// Hyphens are subtraction.
		{"hyphen", "a-bc", 4, "bc", 2, 4},
		{"after_modifier", "len:fo", 6, "fo", 4, 6},
		{"command", ":fra", 4, "fra", 1, 4},
		{"empty_after_dot", "config.", 7, "", 7, 7},
		{"cursor_past_end", "ab", 9, "ab", 0, 2},
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

func TestParentPath_WithOperators(t *testing.T) {
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
		{"partial_word", "a.b.ti", 4, "a.b"},
		{"numeric_step", "pages.0.", 8, "pages.0"},
		{"root", ".", 1, "."},
		{"root_after_operator", "1 + .", 5, "."},
		{"absolute_chain", ".site.", 6, ".site"},
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

func testSession(t *testing.T, root any) *session {
	t.Helper()

	logger := log.Make(io.Discard)

	return newSession(context.Background(), store.New(root, store.WithLogger(logger)), logger)
}

func TestCandidates(t *testing.T) {
	s := testSession(t, map[string]any{
		"site": map[string]any{"title": "home", "tags": []any{"a"}},
		"user": "ann",
	})

	tests := []struct {
		name      string
		input     string
		wordStart int
		want      []string
		absent    []string
	}{
		{"top_level", "si", 0, []string{"site", "user", "True", "None"}, nil},
		{"members", "site.", 5, []string{"tags", "title"}, []string{"user", "True"}},
		{"root_members", ".", 1, []string{"site", "user"}, []string{"True"}},
		{"missing_parent", "nope.", 5, nil, []string{"site"}},
		{"command_names", ":", 1, []string{"frame", "keys", "quit"}, []string{"site"}},
		{"command_path", ":frame site.", 12, []string{"title"}, []string{"frame"}},
		{"command_sub", ":sub ", 5, nil, []string{"site", "frame"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.candidates(tt.input, tt.wordStart)

			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("candidates(%q) = %v, missing %q", tt.input, got, w)
				}
			}

			for _, a := range tt.absent {
				if slices.Contains(got, a) {
					t.Errorf("candidates(%q) = %v, unexpected %q", tt.input, got, a)
				}
			}
		})
	}
}

func TestCandidatesFrame(t *testing.T) {
	s := testSession(t, map[string]any{
		"site": map[string]any{"title": "home"},
		"user": "ann",
	})

	if err := s.c.PushFrame("site"); err != nil {
		t.Fatalf("PushFrame: %v", err)
	}

	got := s.candidates("ti", 0)
	if !slices.Contains(got, "title") {
		t.Errorf("candidates in frame = %v, missing title", got)
	}

	if slices.Contains(got, "user") {
		t.Errorf("candidates in frame = %v, unexpected user", got)
	}
}

func BenchmarkCandidates(b *testing.B) {
	root := map[string]any{}
	for _, k := range []string{"alpha", "beta", "gamma", "delta", "epsilon"} {
		root[k] = map[string]any{"x": 1, "y": 2}
	}

	logger := log.Make(io.Discard)
	s := newSession(context.Background(), store.New(root, store.WithLogger(logger)), logger)

	for b.Loop() {
		_ = s.candidates("1 + gam", 4)
	}
}
