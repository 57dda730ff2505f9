package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable name, or def when ctx carries no kong
// context or the variable is unset.
func kongVar(ctx context.Context, name, def string) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		if v, ok := ktx.Model.Vars()[name]; ok {
			return v
		}
	}

	return def
}

type (
	sourceFilesKey struct{}
	rootFrameKey   struct{}
	stdinKey       struct{}
	stdoutKey      struct{}
)

// SourceFiles is the deduplicated list of data files named on the command
// line.
type SourceFiles struct {
	paths    []string
	hasStdin bool
}

// IsZero reports whether there are no source files.
func (s *SourceFiles) IsZero() bool {
	return s == nil || (len(s.paths) == 0 && !s.hasStdin)
}

// Paths returns the resolved file paths in command-line order, followed by
// [stdinSource] if stdin was named.
func (s *SourceFiles) Paths() []string {
	if s == nil {
		return nil
	}

	out := append([]string(nil), s.paths...)
	if s.hasStdin {
		out = append(out, stdinSource)
	}

	return out
}

func (s *SourceFiles) hasStdinSource() bool {
	return s != nil && s.hasStdin
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithSourceFiles returns a new context.Context carrying the given data
// files.
//
// Files are deduplicated by resolving symlinks and comparing device/inode
// pairs, and files that cannot be resolved are dropped. All occurrences of
// "-" (or of a path naming stdin) collapse into one stdin source read after
// every regular file.
func WithSourceFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourceFilesKey{}, buildSourceFiles(sources))
}

func buildSourceFiles(sources []string) *SourceFiles {
	if len(sources) == 0 {
		return nil
	}

	var srcs SourceFiles

	seen := make(map[fileKey]struct{})

	var (
		stdinID    fileKey
		stdinKnown bool
	)

	if info, err := os.Stdin.Stat(); err == nil {
		stdinID, stdinKnown = makeFileKey(info)
	}

	for _, src := range sources {
		if src == stdinSource {
			srcs.hasStdin = true

			continue
		}

		path, key, ok := resolveFile(src)
		if !ok {
			continue
		}

		if stdinKnown && key == stdinID {
			srcs.hasStdin = true

			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		srcs.paths = append(srcs.paths, path)
	}

	if srcs.IsZero() {
		return nil
	}

	return &srcs
}

// resolveFile returns the symlink-free absolute path of path and its
// device/inode key.
func resolveFile(path string) (string, fileKey, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		return "", fileKey{}, false
	}

	key, ok := makeFileKey(info)

	return resolved, key, ok
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

func sourceFilesFrom(ctx context.Context) *SourceFiles {
	s, _ := ctx.Value(sourceFilesKey{}).(*SourceFiles)

	return s
}

// WithRootFrame returns a new context.Context carrying the path of the frame
// every command pushes before it runs.
func WithRootFrame(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, rootFrameKey{}, path)
}

func rootFrameFrom(ctx context.Context) string {
	s, _ := ctx.Value(rootFrameKey{}).(string)

	return s
}

// WithStdin returns a new context.Context whose commands read standard input
// from r.
func WithStdin(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey{}, r)
}

func stdinFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey{}).(io.Reader); ok {
		return r
	}

	return os.Stdin
}

// WithStdout returns a new context.Context whose commands write results to w.
func WithStdout(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

func stdoutFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey{}).(io.Writer); ok {
		return w
	}

	return os.Stdout
}
