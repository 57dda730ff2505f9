package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/scopex/lang"
	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/pkg"
	"github.com/ardnew/scopex/store"
)

// Warm compiles expressions and writes the compiled expression cache.
type Warm struct {
	From    []string `help:"Read expressions from FILE, one per line ('-' for stdin)" placeholder:"FILE" type:"existingfile"`
	Extract bool     `help:"Take every $${...} in --from files instead of whole lines" short:"x"`
	Out     string   `default:"${exprCache}" help:"Cache file to write" placeholder:"FILE" short:"O" type:"path"`
	Jobs    int      `default:"0"            help:"Parallel compile jobs (0 for one per CPU)" short:"j"`
	Strict  bool     `help:"Fail when any expression does not compile"`

	Exprs []string `arg:"" help:"Expressions to compile" name:"expr" optional:""`
}

// Run executes the warm command.
func (w *Warm) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := w.sources(ctx)
	if err != nil {
		return err
	}

	start := time.Now()

	failed, err := w.compile(ctx, srcs)
	if err != nil {
		return err
	}

	fresh := lang.NewExpressions()

	out := w.Out
	if out == "" {
		out = kongVar(ctx, ExprCacheIdentifier, pkg.CachePath("expcache.bin"))
	}

	size, err := writeCache(out)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "warmed expression cache",
		slog.Int("sources", len(srcs)),
		slog.Int("new", len(fresh)),
		slog.Int64("failed", failed),
		slog.Duration("elapsed", time.Since(start)),
	)

	_, err = fmt.Fprintf(stdoutFrom(ctx),
		"compiled %s expressions (%s new, %s failed), wrote %s to %s\n",
		humanize.Comma(int64(len(srcs))),
		humanize.Comma(int64(len(fresh))),
		humanize.Comma(failed),
		humanize.Bytes(uint64(size)), //nolint:gosec
		out,
	)

	return err
}

// sources returns the distinct expressions named by the arguments and the
// --from files, sorted.
func (w *Warm) sources(ctx context.Context) ([]string, error) {
	srcs := slices.Clone(w.Exprs)

	for _, path := range w.From {
		got, err := w.readSources(ctx, path)
		if err != nil {
			return nil, ErrDataFile.Wrap(err).With(slog.String("file", path))
		}

		srcs = append(srcs, got...)
	}

	slices.Sort(srcs)

	return slices.Compact(srcs), nil
}

// readSources reads one expression per non-blank line of path, skipping
// lines starting with '#', or every ${...} in the file when Extract is set.
func (w *Warm) readSources(ctx context.Context, path string) ([]string, error) {
	var r io.Reader

	if path == stdinSource {
		r = stdinFrom(ctx)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		r = f
	}

	if w.Extract {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		return store.ExtractExpressions(string(b)), nil
	}

	var out []string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		out = append(out, line)
	}

	return out, sc.Err()
}

// compile compiles srcs in parallel and returns how many failed. Failures
// are logged; with Strict the first one is returned as an error.
func (w *Warm) compile(ctx context.Context, srcs []string) (int64, error) {
	jobs := w.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, src := range srcs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if _, err := lang.Compile(src); err != nil {
				failed.Add(1)
				log.WarnContext(gctx, "compile failed",
					slog.String("expr", src), slog.Any("error", err))

				if w.Strict {
					return ErrCompile.Wrap(err).With(slog.String("expr", src))
				}
			}

			return nil
		})
	}

	err := g.Wait()

	return failed.Load(), err
}

// writeCache dumps the compile cache to path through a temporary file in the
// same directory, and returns the size written.
func writeCache(path string) (int64, error) {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, pkg.DirMode); err != nil {
		return 0, ErrWriteCache.Wrap(err).With(slog.String("file", path))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return 0, ErrWriteCache.Wrap(err).With(slog.String("file", path))
	}

	defer os.Remove(tmp.Name())

	if err := lang.Dump(tmp); err != nil {
		_ = tmp.Close()

		return 0, ErrWriteCache.Wrap(err).With(slog.String("file", path))
	}

	info, err := tmp.Stat()
	if err == nil {
		err = tmp.Close()
	}

	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}

	if err != nil {
		return 0, ErrWriteCache.Wrap(err).With(slog.String("file", path))
	}

	return info.Size(), nil
}
