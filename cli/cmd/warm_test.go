package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/scopex/lang"
)

func TestWarmRun(t *testing.T) {
	lang.ClearCache()

	out := filepath.Join(t.TempDir(), "nested", "expcache.bin")

	var stdout bytes.Buffer

	ctx := WithStdout(context.Background(), &stdout)

	w := Warm{Out: out, Jobs: 2, Exprs: []string{"a + 1", "b * 2", "a + 1", "a +"}}
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.HasPrefix(stdout.String(), "compiled 3 expressions (2 new, 1 failed)") {
		t.Errorf("Run() output = %q", stdout.String())
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("cache not written: %v", err)
	}
	defer f.Close()

	lang.ClearCache()

	n, err := lang.Load(f)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if n != 2 {
		t.Errorf("Load() = %d, want 2", n)
	}

	before := lang.ParseCount()

	if _, err := lang.Compile("b * 2"); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if lang.ParseCount() != before {
		t.Error("Compile() parsed an expression loaded from the cache")
	}

	entries, err := os.ReadDir(filepath.Dir(out))
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 {
		t.Errorf("cache directory holds %d files, want 1", len(entries))
	}
}

func TestWarmStrict(t *testing.T) {
	w := Warm{
		Out:    filepath.Join(t.TempDir(), "expcache.bin"),
		Strict: true,
		Exprs:  []string{"1 + 1", "(("},
	}

	ctx := WithStdout(context.Background(), &bytes.Buffer{})

	if err := w.Run(ctx); !errors.Is(err, ErrCompile) {
		t.Fatalf("Run() error = %v, want %v", err, ErrCompile)
	}

	if _, err := os.Stat(w.Out); err == nil {
		t.Error("Run() wrote a cache despite failing")
	}
}

func TestWarmSources(t *testing.T) {
	dir := t.TempDir()
	lines := writeFile(t, dir, "exprs.txt", "# comment\nx + 1\n\n  y  \nx + 1\n")
	tmpl := writeFile(t, dir, "page.tmpl", "<p>${title}</p>${len:items} ${title}")

	tests := []struct {
		name string
		warm Warm
		want []string
	}{
		{"lines", Warm{From: []string{lines}, Exprs: []string{"z"}}, []string{"x + 1", "y", "z"}},
		{"extract", Warm{From: []string{tmpl}, Extract: true}, []string{"len:items", "title"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.warm.sources(context.Background())
			if err != nil {
				t.Fatalf("sources() error = %v", err)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("sources() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWarmSourcesStdin(t *testing.T) {
	ctx := WithStdin(context.Background(), strings.NewReader("b\na\n"))

	w := Warm{From: []string{stdinSource}}

	got, err := w.sources(ctx)
	if err != nil {
		t.Fatalf("sources() error = %v", err)
	}

	if want := []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("sources() = %q, want %q", got, want)
	}
}
