package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/scopex/index"
	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/value"
)

// Index parses path indices and prints their structure.
type Index struct {
	Output

	Join bool `help:"Print the single index joined from all paths" short:"j"`

	Paths []string `arg:"" help:"Path indices" name:"path"`
}

// Run executes the index command.
func (x *Index) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if x.Join {
		parts := make([]any, len(x.Paths))
		for i, p := range x.Paths {
			parts[i] = p
		}

		joined, err := index.JoinString(parts...)
		if err != nil {
			return err
		}

		return x.write(stdoutFrom(ctx), joined)
	}

	results := make([]any, 0, len(x.Paths))

	for _, p := range x.Paths {
		idx, err := index.Parse(p)
		if err != nil {
			return err
		}

		log.TraceContext(ctx, "parsed index",
			slog.String("path", p), slog.Int("tokens", idx.Len()))

		if x.isText() {
			results = append(results, fmt.Sprintf("%s\tabsolute=%t\ttokens=%s",
				idx, idx.Absolute(), value.Repr(idx.Tokens())))

			continue
		}

		results = append(results, map[string]any{
			"path":       p,
			"normalized": idx.String(),
			"absolute":   idx.Absolute(),
			"tokens":     idx.Tokens(),
		})
	}

	return x.write(stdoutFrom(ctx), results...)
}
