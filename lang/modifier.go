package lang

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/ardnew/scopex/store"
	"github.com/ardnew/scopex/value"
)

// Modifier transforms the operand of a name: prefix.
type Modifier func(c *store.Context, v any) (any, error)

var modifiers = struct { //nolint:gochecknoglobals
	m map[string]Modifier
	sync.RWMutex
}{m: map[string]Modifier{}}

// RegisterModifier adds or replaces the modifier name.
//
// Expressions compiled before a name is registered read "name:" as a
// variable where a ':' separator was expected, and fail to compile
// elsewhere; register custom modifiers before compiling expressions that
// use them.
func RegisterModifier(name string, fn Modifier) {
	modifiers.Lock()
	defer modifiers.Unlock()

	modifiers.m[name] = fn
}

// LookupModifier returns the modifier registered as name.
func LookupModifier(name string) (Modifier, bool) {
	modifiers.RLock()
	defer modifiers.RUnlock()

	fn, ok := modifiers.m[name]

	return fn, ok
}

// Modifiers returns the sorted names of all registered modifiers.
func Modifiers() []string {
	modifiers.RLock()
	defer modifiers.RUnlock()

	return slices.Sorted(maps.Keys(modifiers.m))
}

func register(set map[string]Modifier) {
	for name, fn := range set {
		RegisterModifier(name, fn)
	}
}

// Adapters for modifiers that ignore the context.

func pure(fn func(v any) any) Modifier {
	return func(_ *store.Context, v any) (any, error) { return fn(v), nil }
}

func pureE(fn func(v any) (any, error)) Modifier {
	return func(_ *store.Context, v any) (any, error) { return fn(v) }
}

func textual(fn func(s string) any) Modifier {
	return func(_ *store.Context, v any) (any, error) { return fn(value.Str(v)), nil }
}

// seq materializes v as a list. Missing and None are empty.
func seq(name string, v any) ([]any, error) {
	if v == nil || value.IsMissing(v) {
		return nil, nil
	}

	if value.IsMapping(v) {
		return value.Keys(v), nil
	}

	l, err := value.List(v)
	if err != nil {
		return nil, fmt.Errorf("%s: requires a sequence, not %s", name, value.TypeName(v))
	}

	return l, nil
}

// pair unpacks the two-element argument of modifiers like joinwith:[a, b].
func pair(name, usage string, v any) (any, any, error) {
	l, err := value.List(v)
	if _, isStr := v.(string); isStr || err != nil || len(l) != 2 { //nolint:mnd
		return nil, nil, fmt.Errorf("%s: modifier expects %s", name, usage)
	}

	return l[0], l[1], nil
}

// callable returns fn as a Caller, adapting one-argument Go functions.
func callable(name string, fn any) (Caller, error) {
	if c, ok := fn.(Caller); ok {
		return c, nil
	}

	if f, ok := unary(fn); ok {
		return callerFunc(f), nil
	}

	return nil, fmt.Errorf("%s: requires an expression, e.g. %s:[items, `name`]", name, name)
}

type callerFunc func(any) (any, error)

func (f callerFunc) Call(params any) (any, error) { return f(params) }
