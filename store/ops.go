package store

import (
	"log/slog"
	"slices"

	"github.com/ardnew/scopex/index"
	"github.com/ardnew/scopex/value"
)

// Get resolves path. Relative paths search the scopes of the current frame,
// innermost first, for the first token; the remaining tokens are then
// walked from the object that held it. A path that cannot be resolved
// yields a [value.Missing] and no error. Errors are returned only for
// malformed paths and failing dynamic values.
func (c *Context) Get(path string) (any, error) {
	x, err := index.Parse(path)
	if err != nil {
		return nil, err
	}

	return c.GetIndex(x)
}

// GetIndex is [Context.Get] for a parsed index.
func (c *Context) GetIndex(x *index.Index) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.view().GetIndex(x)
}

// GetDefault is like [Context.Get] but returns def when no scope holds the
// first token of path.
func (c *Context) GetDefault(path string, def any) (any, error) {
	x, err := index.Parse(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.getDefault(x, def)
}

func (c *Context) getDefault(x *index.Index, def any) (any, error) {
	obj, found, err := c.view().lookup(x)
	if err != nil {
		return nil, err
	}

	if !found {
		return def, nil
	}

	return obj, nil
}

// Contains reports whether path resolves. The final token is tested for key
// presence, so a key holding nil is contained.
func (c *Context) Contains(path string) (bool, error) {
	x, err := index.Parse(path)
	if err != nil {
		return false, err
	}

	return c.ContainsIndex(x)
}

// ContainsIndex is [Context.Contains] for a parsed index.
func (c *Context) ContainsIndex(x *index.Index) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.view().ContainsIndex(x)
}

// Set assigns v at path. Every token but the last is walked from the
// innermost scope object (or the root, for absolute paths); the last token
// is assigned in the object reached. Failures are reported as [*KeyError].
func (c *Context) Set(path string, v any) error {
	x, err := index.Parse(path)
	if err != nil {
		return err
	}

	return c.SetIndex(x, v)
}

// SetIndex is [Context.Set] for a parsed index.
func (c *Context) SetIndex(x *index.Index, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.view().set(x, v)
}

// Pair is an index and a value, for [Context.SetMany].
type Pair struct {
	Index string
	Value any
}

// SetMany assigns each pair in order, stopping at the first failure.
func (c *Context) SetMany(pairs ...Pair) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range pairs {
		x, err := index.Parse(p.Index)
		if err != nil {
			return err
		}

		if err := c.view().set(x, p.Value); err != nil {
			return err
		}
	}

	return nil
}

// Update sets every key of m, parsed as an index, in sorted key order.
func (c *Context) Update(m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	pairs := make([]Pair, len(keys))
	for i, k := range keys {
		pairs[i] = Pair{Index: k, Value: m[k]}
	}

	return c.SetMany(pairs...)
}

// UpdateBase assigns every key of m directly in the origin object of the
// current frame.
func (c *Context) UpdateBase(m map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	obj := c.stack.Current().First().Obj
	for k, v := range m {
		if err := value.Assign(obj, k, v); err != nil {
			return newKeyError(c, k, err)
		}
	}

	return nil
}

// SetNew assigns v at path unless path is already contained, and returns the
// value now stored there.
func (c *Context) SetNew(path string, v any) (any, error) {
	return c.SetNewFunc(path, func() (any, error) { return v, nil })
}

// SetNewFunc is like [Context.SetNew] but only calls fn when path is not
// contained. fn runs with c locked and must not call c.
func (c *Context) SetNewFunc(path string, fn func() (any, error)) (any, error) {
	x, err := index.Parse(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.setNewFunc(x, fn)
}

func (c *Context) setNewFunc(x *index.Index, fn func() (any, error)) (any, error) {
	v := c.view()

	ok, err := v.ContainsIndex(x)
	if err != nil {
		return nil, err
	}

	if ok {
		return v.GetIndex(x)
	}

	val, err := fn()
	if err != nil {
		return nil, err
	}

	if err := v.set(x, val); err != nil {
		return nil, err
	}

	return val, nil
}

// SetDynamic stores a [Dynamic] value at path.
func (c *Context) SetDynamic(path string, fn func(Reader) (any, error)) error {
	return c.Set(path, NewDynamic(fn))
}

// SetCounter stores a [Counter] starting at start.
func (c *Context) SetCounter(path string, start int) error {
	return c.Set(path, NewCounter(start))
}

// SetLazy stores a [Lazy] value at path.
func (c *Context) SetLazy(path string, fn func() (any, error)) error {
	return c.Set(path, NewLazy(fn))
}

// SetAsync starts fn in the background and stores its [Async] at path.
func (c *Context) SetAsync(path string, fn func() (any, error)) (*Async, error) {
	a := NewAsync(fn)

	return a, c.Set(path, a)
}

// SetThreadLocal stores a [ThreadLocal] at path and returns the value it
// holds for this Context partition.
func (c *Context) SetThreadLocal(path string, fn func() (any, error)) (any, error) {
	t := NewThreadLocal(fn)
	if err := c.Set(path, t); err != nil {
		return nil, err
	}

	return t.Get(c.partition)
}

// SetNewThreadLocal is like [Context.SetThreadLocal] unless path is already
// contained, in which case the resolved value at path is returned.
func (c *Context) SetNewThreadLocal(path string, fn func() (any, error)) (any, error) {
	x, err := index.Parse(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.setNewThreadLocal(x, fn)
}

func (c *Context) setNewThreadLocal(x *index.Index, fn func() (any, error)) (any, error) {
	v := c.view()

	ok, err := v.ContainsIndex(x)
	if err != nil {
		return nil, err
	}

	if ok {
		return v.GetIndex(x)
	}

	t := NewThreadLocal(fn)
	if err := v.set(x, t); err != nil {
		return nil, err
	}

	return t.Get(c.partition)
}

// Link stores a [Link] to target at path.
func (c *Context) Link(path, target string) error {
	l, err := NewLink(target)
	if err != nil {
		return err
	}

	return c.Set(path, l)
}

// Delete removes path. Like [Context.Set], the walk starts at the innermost
// scope object or the root.
func (c *Context) Delete(path string) error {
	x, err := index.Parse(path)
	if err != nil {
		return err
	}

	return c.DeleteIndex(x)
}

// DeleteIndex is [Context.Delete] for a parsed index.
func (c *Context) DeleteIndex(x *index.Index) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.view().delete(x, false)
}

// SafeDelete removes each path that exists and ignores the rest.
func (c *Context) SafeDelete(paths ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range paths {
		x, err := index.Parse(p)
		if err != nil {
			return err
		}

		if err := c.view().delete(x, true); err != nil {
			return err
		}
	}

	return nil
}

// Pop returns the value at path and deletes it.
func (c *Context) Pop(path string) (any, error) {
	x, err := index.Parse(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.view().GetIndex(x)
	if err != nil {
		return nil, err
	}

	return v, c.view().delete(x, true)
}

// GetFirst returns the value of the first path whose first token is found,
// or def.
func (c *Context) GetFirst(def any, paths ...string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range paths {
		x, err := index.Parse(p)
		if err != nil {
			return nil, err
		}

		obj, found, err := c.view().lookup(x)
		if err != nil {
			return nil, err
		}

		if found {
			return obj, nil
		}
	}

	return def, nil
}

// GetFirstTrue returns the first value among paths that is true, or def.
func (c *Context) GetFirstTrue(def any, paths ...string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range paths {
		x, err := index.Parse(p)
		if err != nil {
			return nil, err
		}

		v, err := c.getDefault(x, nil)
		if err != nil {
			return nil, err
		}

		if value.Truth(v) {
			return v, nil
		}
	}

	return def, nil
}

// GetSub substitutes ${...} expressions in path before resolving it.
func (c *Context) GetSub(path string) (any, error) {
	p, err := c.Substitute(path)
	if err != nil {
		return nil, err
	}

	return c.Get(p)
}

// Inc increments the integer at path (absent counts as 0) and returns the
// new value. A value that is not a number is reset to 0.
func (c *Context) Inc(path string) (int, error) { return c.add(path, 1) }

// Dec decrements the integer at path like [Context.Inc].
func (c *Context) Dec(path string) (int, error) { return c.add(path, -1) }

func (c *Context) add(path string, delta int) (int, error) {
	x, err := index.Parse(path)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cur, err := c.getDefault(x, 0)
	if err != nil {
		return 0, err
	}

	n := 0
	if i, err := value.ToInt(cur); err == nil && !value.IsMissing(cur) {
		n = i + delta
	}

	return n, c.view().set(x, n)
}

// Copy assigns the value at src to dst.
func (c *Context) Copy(src, dst string) error {
	return c.transfer(src, dst, false)
}

// Move assigns the value at src to dst and deletes src.
func (c *Context) Move(src, dst string) error {
	return c.transfer(src, dst, true)
}

func (c *Context) transfer(src, dst string, move bool) error {
	sx, err := index.Parse(src)
	if err != nil {
		return err
	}

	dx, err := index.Parse(dst)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.view().GetIndex(sx)
	if err != nil {
		return err
	}

	if err := c.view().set(dx, v); err != nil {
		return err
	}

	if move {
		return c.view().delete(sx, false)
	}

	return nil
}

// Keys returns the keys of the object at path: sorted keys for mappings,
// positions for sequences.
func (c *Context) Keys(path string) ([]any, error) {
	v, err := c.Get(path)
	if err != nil {
		return nil, err
	}

	return value.Keys(v), nil
}

// Values returns the values of the object at path in key order.
func (c *Context) Values(path string) ([]any, error) {
	v, err := c.Get(path)
	if err != nil {
		return nil, err
	}

	return c.resolveAll(value.Values(v))
}

// Items returns [key, value] pairs of the object at path in key order.
func (c *Context) Items(path string) ([]any, error) {
	v, err := c.Get(path)
	if err != nil {
		return nil, err
	}

	items := value.Items(v)
	for _, it := range items {
		pair := it.([]any)

		r, err := c.Resolve(pair[1])
		if err != nil {
			return nil, err
		}

		pair[1] = r
	}

	return items, nil
}

// Resolve returns v with any dynamic value resolved against c.
func (c *Context) Resolve(v any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.view().resolve(v)
}

func (c *Context) resolveAll(vals []any) ([]any, error) {
	for i, v := range vals {
		r, err := c.Resolve(v)
		if err != nil {
			return nil, err
		}

		vals[i] = r
	}

	return vals, nil
}

// AllKeys returns every index reachable from the current scope, descending
// at most maxDepth levels (a negative maxDepth is unlimited). Strings,
// numbers and booleans are leaves.
func (c *Context) AllKeys(maxDepth int) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		keys []string
		walk func(x *index.Index, depth int) error
	)

	walk = func(x *index.Index, depth int) error {
		obj, err := c.view().GetIndex(x)
		if err != nil {
			return err
		}

		if x.Len() > 0 {
			keys = append(keys, x.String())
		}

		if maxDepth >= 0 && depth >= maxDepth {
			return nil
		}

		switch obj.(type) {
		case string, bool, nil, value.Missing:
			return nil
		}

		if value.IsNumber(obj) {
			return nil
		}

		for _, k := range value.Keys(obj) {
			if err := walk(x.Child(k), depth+1); err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(index.Empty, 0); err != nil {
		return nil, err
	}

	c.logger.Trace("all keys", slog.Int("count", len(keys)))

	return keys, nil
}
