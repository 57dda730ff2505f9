package cli

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/scopex/store"
)

func flag(name string) *kong.Flag {
	return &kong.Flag{Value: &kong.Value{Name: name}}
}

func mustResolver(t *testing.T, doc string) kong.Resolver {
	t.Helper()

	r, err := resolve(baseConfig)(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	return r
}

func TestResolve(t *testing.T) {
	r := mustResolver(t, `
paths:
  cache: /var/tmp/scopex
config:
  log_level: debug
  log-pretty: false
  expr-cache: ${.paths.cache}/expcache.bin
  root-frame: ${log_level}
  jobs: 4
  data: [a.yaml, "${.paths.cache}/b.json"]
`)

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log-pretty", false},
		{"expr-cache", "/var/tmp/scopex/expcache.bin"},
		{"root-frame", "debug"},
		{"jobs", "4"},
		{"data", []any{"a.yaml", "/var/tmp/scopex/b.json"}},
		{"log-format", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := r.Resolve(nil, nil, flag(tt.flag))
			if err != nil {
				t.Fatalf("Resolve(%s): %v", tt.flag, err)
			}

			if l, ok := tt.want.([]any); ok {
				if g, ok := got.([]any); !ok || !slices.Equal(g, l) {
					t.Errorf("Resolve(%s) = %#v, want %#v", tt.flag, got, tt.want)
				}

				return
			}

			if got != tt.want {
				t.Errorf("Resolve(%s) = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestResolveBadExpression(t *testing.T) {
	r := mustResolver(t, "config:\n  root-frame: ${1 +}\n")

	if _, err := r.Resolve(nil, nil, flag("root-frame")); !errors.Is(err, store.ErrSubstitution) {
		t.Errorf("Resolve() error = %v, want %v", err, store.ErrSubstitution)
	}
}

func TestResolveMissingPath(t *testing.T) {
	r := mustResolver(t, "config:\n  root-frame: x${.nope.nope}\n")

	got, err := r.Resolve(nil, nil, flag("root-frame"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if got != "x" {
		t.Errorf("Resolve() = %#v, want %q", got, "x")
	}
}

func TestResolveEmpty(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":      "",
		"no section": "other:\n  log-level: debug\n",
		"not a map":  "config: [1, 2]\n",
		"invalid":    "config: {\n",
	} {
		t.Run(name, func(t *testing.T) {
			r := mustResolver(t, doc)

			got, err := r.Resolve(nil, nil, flag("log-level"))
			if err != nil || got != nil {
				t.Errorf("Resolve = %v, %v; want nil, nil", got, err)
			}

			if err := r.Validate(nil); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}
