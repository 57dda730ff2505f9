package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/scopex/lang"
	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/pkg"
	"github.com/ardnew/scopex/store"
)

// Eval evaluates expressions against the data files.
type Eval struct {
	Output

	Frame string   `help:"Frame pushed before evaluating"   placeholder:"PATH"      short:"f"`
	Set   []string `help:"Assign PATH=EXPR before evaluating" placeholder:"PATH=EXPR" short:"s"`

	Exprs []string `arg:"" help:"Expressions to evaluate" name:"expr"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	c, err := newStore(ctx)
	if err != nil {
		return err
	}

	if err := assign(c, e.Set); err != nil {
		return err
	}

	results := make([]any, 0, len(e.Exprs))

	err = inFrame(c, e.Frame, func() error {
		for _, src := range e.Exprs {
			v, err := lang.Eval(c, src)
			if err != nil {
				return pkg.WrapError(err).With(
					slog.String("command", "eval"),
					slog.String("expr", src),
				)
			}

			log.TraceContext(ctx, "evaluated", slog.String("expr", src))

			results = append(results, v)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return e.write(stdoutFrom(ctx), results...)
}

// assign evaluates each PATH=EXPR and stores the result at PATH.
func assign(c *store.Context, pairs []string) error {
	for _, pair := range pairs {
		path, src, ok := strings.Cut(pair, "=")
		if path = strings.TrimSpace(path); !ok || path == "" {
			return ErrAssignment.With(slog.String("arg", pair))
		}

		v, err := lang.Eval(c, src)
		if err != nil {
			return pkg.WrapError(err).With(slog.String("assign", path))
		}

		if err := c.Set(path, v); err != nil {
			return err
		}
	}

	return nil
}

// inFrame runs fn with path pushed as a frame, or directly when path is
// empty.
func inFrame(c *store.Context, path string, fn func() error) error {
	if path == "" {
		return fn()
	}

	return c.WithFrame(path, fn)
}
