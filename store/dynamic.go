package store

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/scopex/index"
	"github.com/ardnew/scopex/value"
)

// Lazy produces its value on first resolution and memoizes the result,
// including an error.
type Lazy struct {
	get func() (any, error)
}

// NewLazy returns a Lazy over fn.
func NewLazy(fn func() (any, error)) *Lazy {
	return &Lazy{get: sync.OnceValues(fn)}
}

func (l *Lazy) Resolve(Reader) (any, error) { return l.get() }

// Async runs its producer on a background goroutine from construction.
// Resolution blocks until the producer has finished.
type Async struct {
	group errgroup.Group
	done  chan struct{}
	val   any
	err   error
}

// NewAsync starts fn and returns the Async waiting on it.
func NewAsync(fn func() (any, error)) *Async {
	a := &Async{done: make(chan struct{})}

	a.group.Go(func() error {
		defer close(a.done)

		a.val, a.err = fn()

		return a.err
	})

	return a
}

// WillBlock reports whether resolving a would block.
func (a *Async) WillBlock() bool {
	select {
	case <-a.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the producer finishes and returns its result.
func (a *Async) Wait() (any, error) {
	err := a.group.Wait()

	return a.val, err
}

func (a *Async) Resolve(Reader) (any, error) { return a.Wait() }

// Counter resolves to its current value and then increments it.
type Counter struct {
	next atomic.Int64
}

// NewCounter returns a Counter whose first resolution yields start.
func NewCounter(start int) *Counter {
	c := &Counter{}
	c.next.Store(int64(start))

	return c
}

func (c *Counter) Resolve(Reader) (any, error) {
	return int(c.next.Add(1) - 1), nil
}

// Value returns the value the next resolution will yield.
func (c *Counter) Value() int { return int(c.next.Load()) }

// ThreadLocal keeps one lazily produced value per Context partition
// (see [Context.Partition]).
type ThreadLocal struct {
	fn    func() (any, error)
	slots sync.Map
}

type localSlot struct {
	once sync.Once
	val  any
	err  error
}

// NewThreadLocal returns a ThreadLocal producing slot values with fn.
func NewThreadLocal(fn func() (any, error)) *ThreadLocal {
	return &ThreadLocal{fn: fn}
}

// Get returns the value for the partition key.
func (t *ThreadLocal) Get(key any) (any, error) {
	v, ok := t.slots.Load(key)
	if !ok {
		v, _ = t.slots.LoadOrStore(key, &localSlot{})
	}

	s := v.(*localSlot)
	s.once.Do(func() { s.val, s.err = t.fn() })

	return s.val, s.err
}

// Forget drops the value held for the partition key.
func (t *ThreadLocal) Forget(key any) { t.slots.Delete(key) }

func (t *ThreadLocal) Resolve(r Reader) (any, error) { return t.Get(r.Local()) }

// Link resolves to the value at another index, like a symbolic link.
type Link struct {
	Target *index.Index
}

// NewLink returns a Link to target.
func NewLink(target string) (*Link, error) {
	x, err := index.Parse(target)
	if err != nil {
		return nil, err
	}

	return &Link{Target: x}, nil
}

func (l *Link) Resolve(r Reader) (any, error) {
	if v, ok := r.(*view); ok {
		leave, err := v.enterLink(l.Target.String())
		if err != nil {
			return nil, err
		}

		defer leave()
	}

	return r.GetIndex(l.Target)
}

func (l *Link) String() string { return "<link " + l.Target.String() + ">" }

// LastIndexItem resolves to the last element of the sequence at an index,
// or nil if the sequence is absent or empty.
type LastIndexItem struct {
	Sequence *index.Index
}

// NewLastIndexItem returns a LastIndexItem over the sequence at seq.
func NewLastIndexItem(seq string) (*LastIndexItem, error) {
	x, err := index.Parse(seq)
	if err != nil {
		return nil, err
	}

	return &LastIndexItem{Sequence: x}, nil
}

func (l *LastIndexItem) Resolve(r Reader) (any, error) {
	ok, err := r.ContainsIndex(l.Sequence)
	if err != nil || !ok {
		return nil, err
	}

	seq, err := r.GetIndex(l.Sequence)
	if err != nil {
		return nil, err
	}

	if v, ok := value.Lookup(seq, -1); ok {
		return v, nil
	}

	return nil, nil
}

// Dynamic calls its producer on every resolution.
type Dynamic struct {
	fn func(Reader) (any, error)
}

// NewDynamic returns a Dynamic over fn.
func NewDynamic(fn func(Reader) (any, error)) *Dynamic { return &Dynamic{fn: fn} }

func (d *Dynamic) Resolve(r Reader) (any, error) { return d.fn(r) }
