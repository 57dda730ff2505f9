package store

import (
	"log/slog"
	"maps"
	"regexp"
	"sync"

	"github.com/ardnew/scopex/index"
	"github.com/ardnew/scopex/log"
	"github.com/ardnew/scopex/value"
)

// DefaultSubstitutePattern matches ${expression} in substituted text.
const DefaultSubstitutePattern = `\$\{(.*?)\}`

var defaultSubstitute = regexp.MustCompile(DefaultSubstitutePattern) //nolint:gochecknoglobals

// Context is a scoped data store.
//
// A Context is not safe for concurrent use unless created with
// [WithThreadSafe]. Even then, frame and scope pushes must be balanced by
// the goroutine that made them; use [Context.Partition] to give each
// goroutine its own frame stack over the shared data.
type Context struct {
	root      any
	stack     *Stack
	mu        sync.Locker
	sub       *regexp.Regexp
	eval      Evaluator
	logger    log.Logger
	partition any
	name      string
	safe      bool
}

// Option configures a Context.
type Option func(*Context)

// WithThreadSafe serializes the operations of the Context (and of every
// partition derived from it) with a mutex.
func WithThreadSafe(enable bool) Option {
	return func(c *Context) { c.safe = enable }
}

// WithSubstitutePattern replaces the pattern used by [Context.Substitute].
// The first submatch of the pattern is the expression source, or the whole
// match when the pattern has no groups. An invalid pattern panics.
func WithSubstitutePattern(expr string) Option {
	return func(c *Context) { c.sub = regexp.MustCompile(expr) }
}

// WithEvaluator sets the expression evaluator, overriding the registered one.
func WithEvaluator(e Evaluator) Option {
	return func(c *Context) { c.eval = e }
}

// WithLogger sets the logger used for trace output.
func WithLogger(l log.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// WithName names the Context for diagnostics.
func WithName(name string) Option {
	return func(c *Context) { c.name = name }
}

// New creates a Context over root. A nil root creates an empty
// map[string]any.
func New(root any, opts ...Option) *Context {
	if root == nil {
		root = map[string]any{}
	}

	c := &Context{root: root, sub: defaultSubstitute}
	for _, opt := range opts {
		opt(c)
	}

	if c.safe {
		c.mu = &sync.Mutex{}
	} else {
		c.mu = noLock{}
	}

	c.stack = newStack(root)
	c.partition = c

	return c
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// Partition returns a view of c that shares its data, lock and settings but
// has its own frame stack and its own slots in thread-local values. Views
// are intended for goroutines serving independent requests.
func (c *Context) Partition(key any) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := *c
	p.stack = newStack(c.root)
	p.partition = key

	if key == nil {
		p.partition = &p
	}

	return &p
}

// Clone returns a new Context over a shallow copy of the root with a fresh
// stack and the same settings.
func (c *Context) Clone() *Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	root := c.root
	if m, ok := root.(map[string]any); ok {
		root = maps.Clone(m)
	}

	opts := []Option{
		WithThreadSafe(c.safe),
		WithEvaluator(c.eval),
		WithLogger(c.logger),
		WithName(c.name),
	}

	n := New(root, opts...)
	n.sub = c.sub

	return n
}

// Reset discards every frame above the base frame.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stack.reset()
}

// Name returns the diagnostic name of c.
func (c *Context) Name() string { return c.name }

// ThreadSafe reports whether operations are serialized.
func (c *Context) ThreadSafe() bool { return c.safe }

// Root returns the root object.
func (c *Context) Root() any { return c.root }

// Logger returns the logger of c.
func (c *Context) Logger() log.Logger { return c.logger }

// Obj returns the object of the innermost scope.
func (c *Context) Obj() any { return c.stack.Current().Last().Obj }

// CurrentFrame returns the top frame.
func (c *Context) CurrentFrame() *Frame { return c.stack.Current() }

// Depth returns the number of frames on the stack.
func (c *Context) Depth() int { return c.stack.Len() }

// GetFrame returns the index of the innermost scope.
func (c *Context) GetFrame() string { return c.stack.Current().Last().Index.String() }

func (c *Context) String() string {
	if c.name != "" {
		return "<context '" + c.name + "'>"
	}

	return "<context>"
}

// CaptureScope merges the mapping objects of the current frame, with inner
// scopes shadowing outer ones. A non-mapping scope object ends the merge
// and is returned itself.
func (c *Context) CaptureScope() any {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := map[string]any{}

	for _, obj := range c.stack.Current().Objs() {
		if value.IsMissing(obj) {
			continue
		}

		if !value.IsMapping(obj) {
			return obj
		}

		for _, k := range value.Keys(obj) {
			key := value.Str(k)
			if _, ok := out[key]; !ok {
				out[key], _ = value.Lookup(obj, k)
			}
		}
	}

	return out
}

// PushFrame pushes a frame whose origin is path joined to the current frame
// origin. An absolute path resets the origin.
func (c *Context) PushFrame(path string) error {
	x, err := index.Parse(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pushFrame(x)
}

func (c *Context) pushFrame(x *index.Index) error {
	origin, err := index.Join(c.stack.Current().Index(), x)
	if err != nil {
		return err
	}

	obj, err := c.view().GetIndex(origin)
	if err != nil {
		return err
	}

	c.stack.push(newFrame(origin, obj))

	c.logger.Trace("push frame",
		slog.String("index", origin.String()),
		slog.Int("depth", c.stack.Len()))

	return nil
}

// PopFrame pops the top frame. The base frame cannot be popped.
func (c *Context) PopFrame() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.stack.pop(); err != nil {
		return err
	}

	c.logger.Trace("pop frame", slog.Int("depth", c.stack.Len()))

	return nil
}

// PushScope pushes a scope whose index is path joined to the innermost
// scope index.
func (c *Context) PushScope(path string) error {
	x, err := index.Parse(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pushScope(x)
}

func (c *Context) pushScope(x *index.Index) error {
	f := c.stack.Current()

	idx, err := index.Join(f.Last().Index, x)
	if err != nil {
		return err
	}

	obj, err := c.view().GetIndex(idx)
	if err != nil {
		return err
	}

	f.push(Scope{Index: idx, Obj: obj})

	c.logger.Trace("push scope",
		slog.String("index", idx.String()),
		slog.Int("scopes", f.Len()))

	return nil
}

// PopScope pops the innermost scope of the current frame. The frame origin
// cannot be popped.
func (c *Context) PopScope() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stack.Current().pop()
}

// WithFrame runs fn with path pushed as a frame.
func (c *Context) WithFrame(path string, fn func() error) (err error) {
	if err = c.PushFrame(path); err != nil {
		return err
	}

	defer func() { err = joinPop(err, c.PopFrame()) }()

	return fn()
}

// WithScope runs fn with path pushed as a scope.
func (c *Context) WithScope(path string, fn func() error) (err error) {
	if err = c.PushScope(path); err != nil {
		return err
	}

	defer func() { err = joinPop(err, c.PopScope()) }()

	return fn()
}

// WithTempScope is like [Context.WithScope] but also deletes path after fn
// returns.
func (c *Context) WithTempScope(path string, fn func() error) (err error) {
	if err = c.PushScope(path); err != nil {
		return err
	}

	defer func() {
		err = joinPop(err, c.PopScope())
		err = joinPop(err, c.SafeDelete(path))
	}()

	return fn()
}

func joinPop(err, popErr error) error {
	if err != nil {
		return err
	}

	return popErr
}
