package lang

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ardnew/scopex/store"
	"github.com/ardnew/scopex/value"
)

// Caller is a value that can be called with a parameter, e.g. f(x=1).
type Caller interface {
	Call(params any) (any, error)
}

// Filter is a value usable on the right of the | operator.
type Filter interface {
	ApplyFilter(c *store.Context, app, v any, params map[string]any) (any, error)
}

// FilterLookup resolves filter names. A FilterLookup stored at .filters
// makes "x|name" and "name(x)" find filters by name.
type FilterLookup interface {
	LookupFilter(app any, name string) (any, bool)
}

// Filters is a FilterLookup that ignores the application.
type Filters map[string]any

// LookupFilter implements FilterLookup.
func (f Filters) LookupFilter(_ any, name string) (any, bool) {
	v, ok := f[name]

	return v, ok
}

// lookupFilter replaces a filter name with the filter registered at
// .filters, if any.
func lookupFilter(c *store.Context, name string) any {
	reg, err := c.Get(".filters")
	if err != nil {
		return name
	}

	lookup, ok := reg.(FilterLookup)
	if !ok {
		return name
	}

	app, _ := c.GetDefault(".app", nil)
	if f, ok := lookup.LookupFilter(app, name); ok {
		return f
	}

	return name
}

func applyFilter(c *store.Context, v, f any) (any, error) {
	if name, ok := f.(string); ok {
		f = lookupFilter(c, name)
	}

	if filter, ok := f.(Filter); ok {
		app, _ := c.GetDefault(".app", nil)

		return filter.ApplyFilter(c, app, v, map[string]any{})
	}

	if caller, ok := f.(Caller); ok {
		return caller.Call(v)
	}

	if fn, ok := unary(f); ok {
		return fn(v)
	}

	return nil, fmt.Errorf("%s may not be used as a filter", value.Repr(f))
}

func call(c *store.Context, fn, arg any) (any, error) {
	if name, ok := fn.(string); ok {
		fn = lookupFilter(c, name)
	}

	if caller, ok := fn.(Caller); ok {
		return caller.Call(arg)
	}

	if f, ok := unary(fn); ok {
		return f(arg)
	}

	return nil, fmt.Errorf("%s does not accept parameters", value.Repr(fn))
}

var errorType = reflect.TypeFor[error]() //nolint:gochecknoglobals

// unary adapts a Go function of one argument. It returns false for any
// other value.
func unary(fn any) (func(any) (any, error), bool) {
	switch f := fn.(type) {
	case func(any) any:
		return func(v any) (any, error) { return f(v), nil }, true
	case func(any) (any, error):
		return f, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(fn)
	rt := rv.Type()

	if rt.Kind() != reflect.Func || rt.NumIn() != 1 || rt.IsVariadic() || rt.NumOut() < 1 || rt.NumOut() > 2 {
		return nil, false
	}

	if rt.NumOut() == 2 && rt.Out(1) != errorType {
		return nil, false
	}

	return func(v any) (any, error) {
		arg, err := argument(v, rt.In(0))
		if err != nil {
			return nil, err
		}

		out := rv.Call([]reflect.Value{arg})
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error) //nolint:forcetypeassert
		}

		return out[0].Interface(), nil
	}, true
}

var errArgument = errors.New("invalid argument")

func argument(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)

	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case rv.Type().ConvertibleTo(t) && rv.Kind() != reflect.String && t.Kind() != reflect.String:
		return rv.Convert(t), nil
	case t.Kind() == reflect.String:
		return reflect.ValueOf(value.Str(v)).Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("%w: can't use %s as %s", errArgument, value.TypeName(v), t)
}
