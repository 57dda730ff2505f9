package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/scopex/pkg"
)

// Sub replaces every ${expression} in text with its value.
type Sub struct {
	Frame string `help:"Frame pushed before substituting" placeholder:"PATH" short:"f"`

	Text []string `arg:"" help:"Text to substitute" name:"text"`
}

// Run executes the sub command.
func (s *Sub) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	c, err := newStore(ctx)
	if err != nil {
		return err
	}

	results := make([]any, 0, len(s.Text))

	err = inFrame(c, s.Frame, func() error {
		for _, text := range s.Text {
			out, err := c.Substitute(text)
			if err != nil {
				return pkg.WrapError(err).With(slog.String("command", "sub"))
			}

			results = append(results, out)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return Output{}.write(stdoutFrom(ctx), results...)
}
