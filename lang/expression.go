package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ardnew/scopex/index"
	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/store"
)

// CacheVersion identifies the layout of compiled expressions in a dumped
// cache. Blobs written under another version are rejected by [Load].
const CacheVersion = 2

func init() {
	store.RegisterEvaluator(store.EvaluatorFunc(Eval))
}

// Evaluable is anything that produces a value in a Context.
type Evaluable interface {
	Eval(c *store.Context) (any, error)
}

// Expression is a compiled expression. It is immutable and safe for
// concurrent use.
type Expression struct {
	Source string
	Root   Node
}

// entry is one slot of the compile cache. Failures are cached like
// successes.
type entry struct {
	once sync.Once
	done atomic.Bool
	expr *Expression
	err  error
}

//nolint:gochecknoglobals
var (
	cache      sync.Map // string -> *entry
	parseCount atomic.Uint64

	freshMu sync.Mutex
	fresh   = map[string]struct{}{}
)

// Compile returns the cached compiled form of src, parsing it on first use.
func Compile(src string) (*Expression, error) {
	v, ok := cache.Load(src)
	if !ok {
		v, _ = cache.LoadOrStore(src, &entry{})
	}

	e := v.(*entry) //nolint:forcetypeassert
	if !e.done.Load() {
		e.once.Do(func() {
			e.expr, e.err = compile(src)
			e.done.Store(true)
		})
	}

	return e.expr, e.err
}

func compile(src string) (*Expression, error) {
	parseCount.Add(1)

	root, err := parse(src)
	if err != nil {
		log.Trace("compile failed",
			slog.String("source", src), slog.Any("error", err))

		return nil, err
	}

	freshMu.Lock()
	fresh[src] = struct{}{}
	freshMu.Unlock()

	return &Expression{Source: src, Root: root}, nil
}

// MustCompile is like [Compile] but panics on error. It is meant for
// literal sources.
func MustCompile(src string) *Expression {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}

	return e
}

// Eval compiles src and evaluates it in c.
func Eval(c *store.Context, src string) (any, error) {
	e, err := Compile(src)
	if err != nil {
		return nil, err
	}

	return e.Eval(c)
}

// Eval evaluates e in c. A dynamic result is resolved before it is returned.
func (e *Expression) Eval(c *store.Context) (any, error) {
	v, err := e.Root.Eval(c)
	if err == nil {
		v, err = c.Resolve(v)
	}

	if err != nil {
		return nil, e.wrap(err)
	}

	return v, nil
}

func (e *Expression) wrap(err error) error {
	var (
		ce *CompileError
		ee *EvalError
	)

	switch {
	case errors.Is(err, ErrDivisionByZero):
		return ErrDivisionByZero.
			Wrap(fmt.Errorf("can't divide by zero in '%s'", e.Source)).
			With(slog.String("source", e.Source))
	case errors.As(err, &ce), errors.As(err, &ee):
		return err
	}

	col := 0

	var ne *nodeError
	if errors.As(err, &ne) {
		col, err = ne.col, ne.err
	}

	return &EvalError{Source: e.Source, Col: col, Err: err}
}

func (e *Expression) String() string { return e.Source }

// Repr implements the value repr protocol.
func (e *Expression) Repr() string { return "<expression '" + e.Source + "'>" }

// Function returns a callable evaluating e with scope pushed beneath the
// call parameters.
func (e *Expression) Function(scope any) *Function {
	return &Function{Expr: e, Scope: scope}
}

// ParseCount returns the number of times source text has been parsed since
// the process started.
func ParseCount() uint64 { return parseCount.Load() }

// ClearCache drops every compiled expression.
func ClearCache() {
	cache.Clear()

	freshMu.Lock()
	clear(fresh)
	freshMu.Unlock()
}

// Invalidate drops every compiled expression and every parsed path index.
func Invalidate() {
	ClearCache()
	index.ClearCache()
	log.Debug("expression cache invalidated",
		slog.Int("version", CacheVersion))
}

// NewExpressions returns the sources compiled since the last call, sorted,
// and forgets them.
func NewExpressions() []string {
	freshMu.Lock()
	defer freshMu.Unlock()

	out := make([]string, 0, len(fresh))
	for src := range fresh {
		out = append(out, src)
	}

	clear(fresh)
	slices.Sort(out)

	return out
}

// Extract compiles every ${expression} in text. All compile errors are
// returned together.
func Extract(text string) ([]*Expression, error) {
	var (
		out  []*Expression
		errs []error
	)

	for _, src := range store.ExtractExpressions(text) {
		e, err := Compile(src)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		out = append(out, e)
	}

	return out, errors.Join(errs...)
}

// Scan compiles the longest expression at the start of text and returns it
// with the unparsed remainder. It returns nil and text unchanged if nothing
// parses.
func Scan(text string) (*Expression, string) {
	root, end, err := parsePrefix(text)
	if err != nil || root == nil {
		return nil, text
	}

	src := text[:end]

	if e, err := Compile(src); err == nil {
		return e, text[end:]
	}

	return &Expression{Source: src, Root: root}, text[end:]
}

// Function evaluates an expression with a captured scope and call
// parameters.
type Function struct {
	Expr  *Expression
	Scope any
}

// Call evaluates f in c with params as a data frame over f.Scope.
func (f *Function) Call(c *store.Context, params any) (v any, err error) {
	if params == nil {
		params = map[string]any{}
	}

	scope := f.Scope
	if scope == nil {
		scope = map[string]any{}
	}

	err = c.WithDataFrame(params, func() error {
		return c.WithDataScope(scope, func() error {
			v, err = f.Expr.Eval(c)

			return err
		})
	})

	return v, err
}

// Bind returns a [Caller] evaluating f in c.
func (f *Function) Bind(c *store.Context) Caller {
	return callerFunc(func(params any) (any, error) { return f.Call(c, params) })
}

func (f *Function) String() string { return "<function \"" + f.Expr.Source + "\">" }

// DefaultExpression stands in for an expression and always yields Value.
type DefaultExpression struct {
	Value any
}

func (d DefaultExpression) Eval(*store.Context) (any, error) { return d.Value, nil }

//nolint:gochecknoglobals
var (
	TrueExpression  Evaluable = DefaultExpression{Value: true}
	FalseExpression Evaluable = DefaultExpression{Value: false}
)
