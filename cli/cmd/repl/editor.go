package repl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/scopex/lang"
	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/value"
)

const defaultEditor = "vi"

// editRootCommand implements [tea.ExecCommand] for the edit-parse-retry loop
// over the root data. It writes the root as YAML to a temp file, opens the
// user's editor, and decodes the result. On a decode error the user is
// prompted to re-edit; declining returns [ErrEditDeclined].
type editRootCommand struct {
	root    any
	ctxFunc func() context.Context
	newRoot any
	edited  bool
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func (c *editRootCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editRootCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editRootCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied file cancels the edit and leaves
// edited false.
func (c *editRootCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := yaml.Marshal(lang.Plain(c.root))
	if err != nil {
		return fmt.Errorf("encode root: %w", err)
	}

	f, err := os.CreateTemp(os.TempDir(), "scopex-repl-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		root, decodeErr := decodeRoot(data)

		c.logger.TraceContext(ctx, "editor decode attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", decodeErr == nil),
		)

		if decodeErr == nil {
			c.newRoot, c.edited = root, true

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDecode error: %s\n", decodeErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}

		content = data
	}
}

// decodeRoot decodes one YAML document into normalized root data.
func decodeRoot(data []byte) (any, error) {
	var root any

	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return value.Normalize(root), nil
}

// runEditor launches $EDITOR on path and returns the edited content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
