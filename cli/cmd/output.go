package cmd

import (
	"bufio"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/ohler55/ojg/oj"

	"github.com/ardnew/scopex/lang"
	"github.com/ardnew/scopex/value"
)

// Output selects how a command prints its results.
type Output struct {
	Format string `default:"text" enum:"text,yaml,json" help:"Output format (${enum})." short:"o"`
}

// isText reports whether results are printed as plain lines. An unset
// format selects text.
func (o Output) isText() bool {
	switch o.Format {
	case "yaml", "json":
		return false
	default:
		return true
	}
}

// write prints each result in the selected format. Text results are printed
// one per line; YAML results are separate documents; JSON results are one
// indented value each.
func (o Output) write(w io.Writer, results ...any) error {
	bw := bufio.NewWriter(w)

	for i, v := range results {
		switch o.Format {
		case "yaml":
			b, err := yaml.Marshal(lang.Plain(v))
			if err != nil {
				return ErrOutput.Wrap(err)
			}

			if i > 0 {
				_, _ = bw.WriteString("---\n")
			}

			_, _ = bw.Write(b)

		case "json":
			_, _ = bw.WriteString(oj.JSON(lang.Plain(v), &oj.Options{Sort: true, Indent: 2}))
			_ = bw.WriteByte('\n')

		default:
			_, _ = bw.WriteString(value.Str(v))
			_ = bw.WriteByte('\n')
		}
	}

	if err := bw.Flush(); err != nil {
		return ErrOutput.Wrap(err)
	}

	return nil
}
