package pkg

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "scopex"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Fatal("Expected embedded Version to be non-empty")
	}

	if strings.TrimSpace(Version) != Version {
		t.Errorf("Expected Version to be trimmed, got %q", Version)
	}
}

func TestAuthor(t *testing.T) {
	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Expected Author to contain ardnew")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}

	if got, want := Author[0].String(), "ardnew <andrew@ardnew.com>"; got != want {
		t.Errorf("Author[0].String() = %q, want %q", got, want)
	}
}

func TestErrorIs(t *testing.T) {
	sentinel := NewError("sentinel")
	other := NewError("other")
	cause := errors.New("cause")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"self", sentinel, true},
		{"with", sentinel.With(slog.Int("n", 1)), true},
		{"wrap", sentinel.Wrap(cause), true},
		{"with wrap", sentinel.With(slog.String("k", "v")).Wrap(cause), true},
		{"fmt wrapped", fmt.Errorf("outer: %w", sentinel.Wrap(cause)), true},
		{"other", other.Wrap(cause), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, sentinel); got != tt.want {
				t.Errorf("errors.Is(%v, sentinel) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	if !errors.Is(sentinel.Wrap(cause), cause) {
		t.Error("Expected wrapped cause to be reachable")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{NewError("a"), "a"},
		{NewError("a").Wrap(errors.New("b")), "a: b"},
		{WrapError(errors.New("b")), "b"},
		{&Error{}, ""},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestErrorLogValue(t *testing.T) {
	err := NewError("boom").Wrap(errors.New("why")).With(slog.String("expr", "1/0"))

	v := err.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("Expected group value, got %v", v.Kind())
	}

	keys := []string{}
	for _, a := range v.Group() {
		keys = append(keys, a.Key)
	}

	if !slices.Equal(keys, []string{"error", "cause", "expr"}) {
		t.Errorf("Unexpected attribute keys %v", keys)
	}
}

func TestPaths(t *testing.T) {
	if Prefix() == "" {
		t.Fatal("Expected non-empty Prefix")
	}

	for name, dir := range map[string]string{
		"config": ConfigDir(),
		"cache":  CacheDir(),
	} {
		if filepath.Base(dir) != Prefix() {
			t.Errorf("%s dir %q does not end in %q", name, dir, Prefix())
		}
	}

	if got, want := CachePath("a", "b"), filepath.Join(CacheDir(), "a", "b"); got != want {
		t.Errorf("CachePath = %q, want %q", got, want)
	}

	if got := ConfigPath(); got != ConfigDir() {
		t.Errorf("ConfigPath() = %q, want %q", got, ConfigDir())
	}
}
