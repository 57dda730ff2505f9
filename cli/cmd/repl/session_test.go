package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/store"
)

func TestSessionExec(t *testing.T) {
	s := testSession(t, map[string]any{
		"site": map[string]any{"title": "home", "port": 8080},
	})

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"blank", "   ", "", nil},
		{"arithmetic", "1 + 2", "3", nil},
		{"member", "site.title", "'home'", nil},
		{"set", ":set site.port 9090", "site.port = 9090", nil},
		{"after_set", "site.port", "9090", nil},
		{"keys_path", ":keys site", "port\ntitle", nil},
		{"sub", ":sub at ${site.title}", "at home", nil},
		{"unknown", ":bogus", "", ErrUnknownCommand},
		{"frame_no_arg", ":frame", "", ErrMissingArgument},
		{"set_no_expr", ":set x", "", ErrMissingArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := s.exec(tt.input)

			if tt.wantErr != nil {
				if !errors.Is(r.err, tt.wantErr) {
					t.Fatalf("exec(%q) error = %v, want %v", tt.input, r.err, tt.wantErr)
				}

				return
			}

			if r.err != nil {
				t.Fatalf("exec(%q) error = %v", tt.input, r.err)
			}

			if r.text != tt.want {
				t.Errorf("exec(%q) = %q, want %q", tt.input, r.text, tt.want)
			}
		})
	}
}

func TestSessionFlags(t *testing.T) {
	s := testSession(t, map[string]any{})

	tests := []struct {
		input string
		check func(reply) bool
	}{
		{":quit", func(r reply) bool { return r.quit }},
		{":q", func(r reply) bool { return r.quit }},
		{":clear", func(r reply) bool { return r.clear }},
		{":edit", func(r reply) bool { return r.edit }},
		{":help", func(r reply) bool { return strings.Contains(r.text, ":frame") }},
	}

	for _, tt := range tests {
		if r := s.exec(tt.input); !tt.check(r) {
			t.Errorf("exec(%q) = %+v", tt.input, r)
		}
	}
}

func TestSessionFrames(t *testing.T) {
	s := testSession(t, map[string]any{
		"site": map[string]any{
			"title": "home",
			"pages": map[string]any{"index": "idx"},
		},
	})

	if got := s.prompt(); got != "." {
		t.Fatalf("prompt() = %q, want %q", got, ".")
	}

	if r := s.exec(":frame site"); r.err != nil {
		t.Fatalf(":frame error = %v", r.err)
	}

	if got := s.prompt(); !strings.Contains(got, "site") {
		t.Errorf("prompt() = %q, want it to name site", got)
	}

	if r := s.exec("title"); r.text != "'home'" {
		t.Errorf("title in frame = %+v", r)
	}

	if r := s.exec(":scope pages"); r.err != nil {
		t.Fatalf(":scope error = %v", r.err)
	}

	if r := s.exec("index + title"); r.text != "'idxhome'" {
		t.Errorf("index + title in scope = %+v", r)
	}

	if depth := s.c.CurrentFrame().Len(); depth != 2 {
		t.Fatalf("scopes = %d, want 2", depth)
	}

	// The first pop drops the scope, the second the frame.
	for range 2 {
		if r := s.exec(":pop"); r.err != nil {
			t.Fatalf(":pop error = %v", r.err)
		}
	}

	if got := s.prompt(); got != "." {
		t.Errorf("prompt() after pops = %q, want %q", got, ".")
	}

	if r := s.exec(":pop"); r.err == nil {
		t.Error(":pop at base frame succeeded")
	}
}

func TestSessionReplaceRoot(t *testing.T) {
	s := testSession(t, map[string]any{"a": 1})

	if r := s.exec(":frame ."); r.err != nil {
		t.Fatalf(":frame error = %v", r.err)
	}

	s.replaceRoot(map[string]any{"b": 2})

	if s.c.Depth() != 1 {
		t.Errorf("Depth() = %d after replaceRoot, want 1", s.c.Depth())
	}

	if r := s.exec("b"); r.text != "2" {
		t.Errorf("b = %+v, want 2", r)
	}
}

func TestRunLines(t *testing.T) {
	logger := log.Make(io.Discard)
	c := store.New(map[string]any{"x": 2}, store.WithLogger(logger))

	in := strings.NewReader("x * 3\n:bogus\n\n:set y x + 1\ny\n:quit\nx\n")

	var out bytes.Buffer

	if err := Run(context.Background(), c, in, &out, "", logger); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")

	want := []string{"6", "error: ", "y = 3", "3"}
	if len(lines) != len(want) {
		t.Fatalf("Run() output = %q, want %d lines", out.String(), len(want))
	}

	for i, w := range want {
		if !strings.HasPrefix(lines[i], w) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], w)
		}
	}
}
