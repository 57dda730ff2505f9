package store

import (
	"log/slog"

	"github.com/ardnew/scopex/index"
	"github.com/ardnew/scopex/value"
)

// Reader is the read-only view of a Context passed to a [Resolver]. It is
// safe to use while the Context is locked; resolvers must not call the
// locking methods of the Context itself.
type Reader interface {
	// GetIndex resolves x like [Context.Get].
	GetIndex(x *index.Index) (any, error)
	// ContainsIndex reports whether x resolves, like [Context.Contains].
	ContainsIndex(x *index.Index) (bool, error)
	// Local returns the partition key of the requesting Context.
	Local() any
}

// Resolver is implemented by dynamic values. A store lookup that reaches a
// Resolver continues with the value it resolves to.
type Resolver interface {
	Resolve(r Reader) (any, error)
}

// view is the unlocked Reader of a Context for the duration of one
// top-level operation. It tracks the links being followed to detect cycles.
type view struct {
	c     *Context
	links map[string]struct{}
}

func (c *Context) view() *view { return &view{c: c} }

func (v *view) Local() any { return v.c.partition }

// resolve applies Resolvers until obj is a plain value.
func (v *view) resolve(obj any) (any, error) {
	for {
		r, ok := obj.(Resolver)
		if !ok {
			return obj, nil
		}

		var err error
		if obj, err = r.Resolve(v); err != nil {
			return nil, err
		}
	}
}

// enterLink marks target as being followed, failing if it already is.
func (v *view) enterLink(target string) (func(), error) {
	if v.links == nil {
		v.links = map[string]struct{}{}
	}

	if _, ok := v.links[target]; ok {
		return nil, ErrLinkCycle.With(slog.String("index", target))
	}

	v.links[target] = struct{}{}

	return func() { delete(v.links, target) }, nil
}

// candidates returns the objects searched for the first token of x.
func (v *view) candidates(x *index.Index) []any {
	if x.Absolute() {
		return []any{v.c.root}
	}

	return v.c.stack.Current().Objs()
}

// lookup performs the search of Get: the first token is tried against each
// candidate object in turn, the remaining tokens are walked strictly.
// found is false if no candidate has the first token; a later failure yields
// a Missing value with found true.
func (v *view) lookup(x *index.Index) (obj any, found bool, err error) {
	objs := v.candidates(x)

	if x.Len() == 0 {
		obj, err = v.resolve(objs[0])

		return obj, true, err
	}

	first, rest := x.Head()

	for _, o := range objs {
		if value.IsMissing(o) {
			continue
		}

		got, ok := value.Lookup(o, first)
		if !ok {
			continue
		}

		if got, err = v.resolve(got); err != nil {
			return nil, true, err
		}

		for _, tok := range rest {
			if value.IsMissing(got) {
				break
			}

			next, ok := value.Lookup(got, tok)
			if !ok {
				return value.NewMissing(x.String()), true, nil
			}

			if got, err = v.resolve(next); err != nil {
				return nil, true, err
			}
		}

		if value.IsMissing(got) && len(rest) > 0 {
			got = value.NewMissing(x.String())
		}

		return got, true, nil
	}

	return nil, false, nil
}

func (v *view) GetIndex(x *index.Index) (any, error) {
	obj, found, err := v.lookup(x)
	if err != nil {
		return nil, err
	}

	if !found {
		return value.NewMissing(x.String()), nil
	}

	return obj, nil
}

func (v *view) ContainsIndex(x *index.Index) (bool, error) {
	objs := v.candidates(x)

	if x.Len() == 0 {
		return true, nil
	}

	first, rest := x.Head()

	for _, o := range objs {
		if value.IsMissing(o) {
			continue
		}

		got, ok := value.Lookup(o, first)
		if !ok {
			continue
		}

		if len(rest) == 0 {
			return true, nil
		}

		var err error
		if got, err = v.resolve(got); err != nil {
			return false, err
		}

		for _, tok := range rest[:len(rest)-1] {
			next, ok := value.Lookup(got, tok)
			if !ok {
				return false, nil
			}

			if got, err = v.resolve(next); err != nil {
				return false, err
			}
		}

		return value.Has(got, rest[len(rest)-1]), nil
	}

	return false, nil
}

// parent walks every token of x but the last from the innermost scope
// object (or the root, for absolute indices) and returns the container
// and the final token.
func (v *view) parent(x *index.Index) (any, any, error) {
	if x.Len() == 0 {
		return nil, nil, &KeyError{Index: x.String(), Msg: "can't set root"}
	}

	obj := v.c.Obj()
	if x.Absolute() {
		obj = v.c.root
	}

	toks := x.Tokens()

	for _, tok := range toks[:len(toks)-1] {
		next, ok := value.Lookup(obj, tok)
		if !ok || value.IsMissing(next) {
			return nil, nil, newKeyError(v.c, x.String(), nil)
		}

		var err error
		if obj, err = v.resolve(next); err != nil {
			return nil, nil, newKeyError(v.c, x.String(), err)
		}
	}

	return obj, toks[len(toks)-1], nil
}

func (v *view) set(x *index.Index, val any) error {
	obj, final, err := v.parent(x)
	if err != nil {
		return err
	}

	if value.IsMissing(obj) {
		return newKeyError(v.c, x.String(), nil)
	}

	if err := value.Assign(obj, final, val); err != nil {
		return newKeyError(v.c, x.String(), err)
	}

	return nil
}

func (v *view) delete(x *index.Index, safe bool) error {
	obj, final, err := v.parent(x)
	if err != nil {
		if safe && x.Len() > 0 {
			return nil
		}

		return err
	}

	if !value.Has(obj, final) {
		if safe {
			return nil
		}

		return newKeyError(v.c, x.String(), nil)
	}

	if err := value.Delete(obj, final); err != nil {
		return newKeyError(v.c, x.String(), err)
	}

	return nil
}
