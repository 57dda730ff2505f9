package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
)

const (
	baseHistory = "history.utf8"

	// maxHistory bounds the number of entries kept on disk.
	maxHistory = 1000
)

// History is the REPL input history, persisted one entry per line. Each
// entry appears once, at the position it was last entered.
type History struct {
	path    string
	entries []string
	seen    map[uint64]struct{} // xxh3 of each entry
	mu      sync.RWMutex
}

// NewHistory creates a History persisted at path. An empty path keeps the
// history in memory only.
func NewHistory(path string) *History {
	return &History{path: path, seen: map[uint64]struct{}{}}
}

// Load replaces the entries with those in the history file. A missing file
// is an empty history.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil
	clear(h.seen)

	if h.path == "" {
		return nil
	}

	file, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		h.add(strings.TrimSpace(scanner.Text()))
	}

	if len(h.entries) > maxHistory {
		h.entries = slices.Clone(h.entries[len(h.entries)-maxHistory:])
	}

	return scanner.Err()
}

// add appends entry, removing an earlier copy. It reports whether a copy
// was removed. Must be called with h.mu held.
func (h *History) add(entry string) (moved bool) {
	if entry == "" {
		return false
	}

	key := xxh3.HashString(entry)
	if _, ok := h.seen[key]; ok {
		if i := slices.Index(h.entries, entry); i >= 0 {
			h.entries = slices.Delete(h.entries, i, i+1)
			moved = true
		}
	}

	h.seen[key] = struct{}{}
	h.entries = append(h.entries, entry)

	return moved
}

// Write appends entry to the history and the history file.
func (h *History) Write(entry string) error {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	moved := h.add(entry)

	trimmed := len(h.entries) > maxHistory
	if trimmed {
		for _, e := range h.entries[:len(h.entries)-maxHistory] {
			delete(h.seen, xxh3.HashString(e))
		}

		h.entries = slices.Clone(h.entries[len(h.entries)-maxHistory:])
	}

	if h.path == "" {
		return nil
	}

	if moved || trimmed {
		return h.rewriteFile()
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(entry + "\n")

	return err
}

// Get returns entry i. Index 0 is the oldest entry.
func (h *History) Get(i int) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return "", ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all history entries, oldest first.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// rewriteFile rewrites the entire history file with current entries.
// Must be called with h.mu held.
func (h *History) rewriteFile() error {
	file, err := os.OpenFile(h.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(file)
	for _, entry := range h.entries {
		_, _ = w.WriteString(entry + "\n")
	}

	if err := w.Flush(); err != nil {
		_ = file.Close()

		return err
	}

	return file.Close()
}
