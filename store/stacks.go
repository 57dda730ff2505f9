package store

import (
	"log/slog"
	"strconv"

	"github.com/ardnew/scopex/index"
	"github.com/ardnew/scopex/value"
)

func stackKey(name string) string { return "_" + name + "_stack" }

// PushStack appends v to the named stack kept at the root, and points the
// absolute index .name at the top of that stack. It returns the absolute
// index of the pushed value.
func (c *Context) PushStack(name string, v any) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := stackKey(name)

	stack, err := c.rootStack(key, true)
	if err != nil {
		return "", err
	}

	*stack = append(*stack, v)

	top, err := NewLastIndexItem("." + index.Escape(key))
	if err != nil {
		return "", err
	}

	if err := c.view().set(index.New(true, name), top); err != nil {
		return "", err
	}

	c.logger.Trace("push stack",
		slog.String("name", name),
		slog.Int("depth", len(*stack)))

	return "." + index.Escape(key) + "." + strconv.Itoa(len(*stack)-1), nil
}

// PopStack removes and returns the top of the named stack. A stack left
// empty is deleted, unless it is a per-partition stack.
func (c *Context) PopStack(name string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := stackKey(name)

	raw, _ := value.Lookup(c.root, key)
	_, local := raw.(*ThreadLocal)

	stack, err := c.rootStack(key, false)
	if err != nil {
		return nil, err
	}

	n := len(*stack)
	if n == 0 {
		return nil, ErrStackUnderflow.With(slog.String("stack", name))
	}

	top := (*stack)[n-1]
	(*stack)[n-1] = nil
	*stack = (*stack)[:n-1]

	if len(*stack) == 0 && !local {
		if err := value.Delete(c.root, key); err != nil {
			return nil, newKeyError(c, "."+key, err)
		}
	}

	c.logger.Trace("pop stack",
		slog.String("name", name),
		slog.Int("depth", len(*stack)))

	return top, nil
}

// GetStackTop returns the top of the named stack, or def if the stack is
// absent or empty.
func (c *Context) GetStackTop(name string, def any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	obj, err := c.view().GetIndex(index.New(true, stackKey(name)))
	if err != nil {
		return nil, err
	}

	if top, ok := value.Lookup(obj, -1); ok && !value.IsMissing(obj) {
		return top, nil
	}

	return def, nil
}

// rootStack returns the stack stored at the root key, creating it if
// create is set.
func (c *Context) rootStack(key string, create bool) (*[]any, error) {
	x := index.New(true, key)
	v := c.view()

	ok, err := v.ContainsIndex(x)
	if err != nil {
		return nil, err
	}

	if !ok {
		if !create {
			return nil, newKeyError(c, x.String(), nil)
		}

		stack := &[]any{}
		if err := v.set(x, stack); err != nil {
			return nil, err
		}

		return stack, nil
	}

	obj, err := v.GetIndex(x)
	if err != nil {
		return nil, err
	}

	stack, ok := obj.(*[]any)
	if !ok {
		return nil, ErrNotStack.With(
			slog.String("index", x.String()),
			slog.String("type", value.TypeName(obj)))
	}

	return stack, nil
}

// pushLocalStack appends v to a named stack private to this partition of
// the Context.
func (c *Context) pushLocalStack(name string, v any) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	x := index.New(true, stackKey(name))

	obj, err := c.setNewThreadLocal(x, func() (any, error) { return &[]any{}, nil })
	if err != nil {
		return "", err
	}

	stack, ok := obj.(*[]any)
	if !ok {
		return "", ErrNotStack.With(slog.String("index", x.String()))
	}

	*stack = append(*stack, v)

	return x.String() + "." + strconv.Itoa(len(*stack)-1), nil
}

// WithStack pushes v on the named stack and runs fn in a frame at the pushed
// value.
func (c *Context) WithStack(name string, v any, fn func(idx string) error) (err error) {
	idx, err := c.PushStack(name, v)
	if err != nil {
		return err
	}

	defer func() {
		_, popErr := c.PopStack(name)
		err = joinPop(err, popErr)
	}()

	if err = c.PushFrame(idx); err != nil {
		return err
	}

	defer func() { err = joinPop(err, c.PopFrame()) }()

	return fn(idx)
}

// WithRootStack pushes v on the named root stack and sets the absolute index
// name to v while fn runs. Afterwards name holds the previous top, or is
// deleted if the stack is empty.
func (c *Context) WithRootStack(name string, v any, fn func() error) (err error) {
	key := stackKey(name)
	top := index.New(true, name)

	c.mu.Lock()
	stack, err := c.rootStack(key, true)
	if err == nil {
		*stack = append(*stack, v)
		err = c.view().set(top, v)
	}
	c.mu.Unlock()

	if err != nil {
		return err
	}

	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		*stack = (*stack)[:len(*stack)-1]

		var popErr error
		if n := len(*stack); n > 0 {
			popErr = c.view().set(top, (*stack)[n-1])
		} else {
			popErr = c.view().delete(top, true)
		}

		err = joinPop(err, popErr)
	}()

	return fn()
}

// WithDataScope pushes data as a scope of the current frame while fn runs.
// The data is kept on a stack private to this partition.
func (c *Context) WithDataScope(data any, fn func() error) (err error) {
	idx, err := c.pushLocalStack("datascope", data)
	if err != nil {
		return err
	}

	defer func() {
		_, popErr := c.PopStack("datascope")
		err = joinPop(err, popErr)
	}()

	if err = c.PushScope(idx); err != nil {
		return err
	}

	defer func() { err = joinPop(err, c.PopScope()) }()

	return fn()
}

// WithDataFrame pushes data as a new frame while fn runs.
func (c *Context) WithDataFrame(data any, fn func() error) (err error) {
	idx, err := c.pushLocalStack("dataframe", data)
	if err != nil {
		return err
	}

	defer func() {
		_, popErr := c.PopStack("dataframe")
		err = joinPop(err, popErr)
	}()

	if err = c.PushFrame(idx); err != nil {
		return err
	}

	defer func() { err = joinPop(err, c.PopFrame()) }()

	return fn()
}
