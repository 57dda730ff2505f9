package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/scopex/log"
)

// Keys lists every index reachable from a frame.
type Keys struct {
	Output

	Depth int `default:"-1" help:"Maximum depth, negative for unlimited" short:"n"`

	Path string `arg:"" help:"Frame to list keys under" name:"path" optional:""`
}

// Run executes the keys command.
func (k *Keys) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	c, err := newStore(ctx)
	if err != nil {
		return err
	}

	var keys []string

	err = inFrame(c, k.Path, func() error {
		keys, err = c.AllKeys(k.Depth)

		return err
	})
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "listed keys",
		slog.String("frame", c.GetFrame()), slog.Int("count", len(keys)))

	if k.isText() {
		results := make([]any, len(keys))
		for i, key := range keys {
			results[i] = key
		}

		return k.write(stdoutFrom(ctx), results...)
	}

	return k.write(stdoutFrom(ctx), keys)
}
