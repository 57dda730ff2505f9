package store

import (
	"regexp"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/ardnew/scopex/value"
)

// Evaluator compiles and evaluates expression source against a Context.
type Evaluator interface {
	Eval(c *Context, src string) (any, error)
}

// EvaluatorFunc adapts a function to [Evaluator].
type EvaluatorFunc func(c *Context, src string) (any, error)

func (f EvaluatorFunc) Eval(c *Context, src string) (any, error) { return f(c, src) }

type evaluatorBox struct{ Evaluator }

var registered atomic.Pointer[evaluatorBox] //nolint:gochecknoglobals

// RegisterEvaluator sets the Evaluator used by every Context created without
// [WithEvaluator].
func RegisterEvaluator(e Evaluator) {
	registered.Store(&evaluatorBox{e})
}

func (c *Context) evaluator() (Evaluator, error) {
	if c.eval != nil {
		return c.eval, nil
	}

	if b := registered.Load(); b != nil && b.Evaluator != nil {
		return b.Evaluator, nil
	}

	return nil, ErrNoEvaluator
}

// Eval evaluates expression source in c.
func (c *Context) Eval(src string) (any, error) {
	e, err := c.evaluator()
	if err != nil {
		return nil, err
	}

	return e.Eval(c, src)
}

// SubEval substitutes s and evaluates the result.
func (c *Context) SubEval(s string) (any, error) {
	src, err := c.Substitute(s)
	if err != nil {
		return nil, err
	}

	return c.Eval(src)
}

// Substitute replaces every ${expression} in s with the string form of its
// value.
func (c *Context) Substitute(s string) (string, error) {
	return c.SubstituteFunc(s, value.Str)
}

// SubstituteFunc is like [Context.Substitute] but converts values to text
// with process.
func (c *Context) SubstituteFunc(s string, process func(any) string) (string, error) {
	matches := c.sub.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	e, err := c.evaluator()
	if err != nil {
		return "", err
	}

	var (
		sb   strings.Builder
		last int
	)

	for _, m := range matches {
		start, end := exprBounds(m)
		src := s[start:end]

		v, err := e.Eval(c, src)
		if err != nil {
			return "", &SubstitutionError{Expr: src, Start: start, End: end, Err: err}
		}

		sb.WriteString(s[last:m[0]])
		sb.WriteString(process(v))
		last = m[1]
	}

	sb.WriteString(s[last:])

	return sb.String(), nil
}

// ExtractExpressions returns the distinct expressions in s matched by the
// substitute pattern of c, sorted.
func (c *Context) ExtractExpressions(s string) []string {
	return extract(c.sub, s)
}

// ExtractExpressions returns the distinct ${expression} sources in s, sorted.
func ExtractExpressions(s string) []string {
	return extract(defaultSubstitute, s)
}

func extract(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		start, end := exprBounds(m)
		out = append(out, s[start:end])
	}

	slices.Sort(out)

	return slices.Compact(out)
}
