package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
)

func TestHistoryWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, e := range []string{"a", "b", "b", "  ", "c", "a"} {
		if err := h.Write(e); err != nil {
			t.Fatalf("Write(%q) error = %v", e, err)
		}
	}

	want := []string{"b", "c", "a"}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %q, want %q", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}

	if got := strings.Fields(string(data)); !slices.Equal(got, want) {
		t.Errorf("file = %q, want %q", got, want)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded Entries() = %q, want %q", got, want)
	}
}

func TestHistoryLoadDedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	if err := os.WriteFile(path, []byte("x\ny\nx\n\nz\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"y", "x", "z"}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %q, want %q", got, want)
	}
}

func TestHistoryMissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "none", baseHistory))
	if err := h.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestHistoryInMemory(t *testing.T) {
	h := NewHistory("")

	if err := h.Write("1 + 1"); err != nil {
		t.Fatalf("Write error = %v", err)
	}

	got, err := h.Get(0)
	if err != nil || got != "1 + 1" {
		t.Errorf("Get(0) = %q, %v", got, err)
	}

	if _, err := h.Get(1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Get(1) error = %v, want %v", err, ErrOutOfBounds)
	}
}

func TestHistoryTrim(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for i := range maxHistory + 5 {
		if err := h.Write(strconv.Itoa(i)); err != nil {
			t.Fatalf("Write error = %v", err)
		}
	}

	if h.Len() != maxHistory {
		t.Fatalf("Len() = %d, want %d", h.Len(), maxHistory)
	}

	if first, _ := h.Get(0); first != "5" {
		t.Errorf("Get(0) = %q, want %q", first, "5")
	}

	// A trimmed entry is new again.
	if err := h.Write("0"); err != nil {
		t.Fatalf("Write error = %v", err)
	}

	if last, _ := h.Get(h.Len() - 1); last != "0" {
		t.Errorf("last entry = %q, want %q", last, "0")
	}
}
