package cmd

import (
	"context"

	"github.com/ardnew/scopex/cli/cmd/repl"
	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/pkg"
)

// Repl starts an interactive session over the data files.
type Repl struct {
	NoHistory bool `help:"Do not read or write the input history"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if sourceFilesFrom(ctx).hasStdinSource() {
		return ErrStdinData
	}

	c, err := newStore(ctx)
	if err != nil {
		return err
	}

	cacheDir := ""
	if !r.NoHistory {
		cacheDir = kongVar(ctx, CacheIdentifier, pkg.CacheDir())
	}

	return repl.Run(ctx, c, stdinFrom(ctx), stdoutFrom(ctx), cacheDir,
		log.Default().Wrap(log.WithComponent("repl")))
}
