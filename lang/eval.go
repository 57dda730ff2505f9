package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/scopex/index"
	"github.com/ardnew/scopex/ranges"
	"github.com/ardnew/scopex/store"
	"github.com/ardnew/scopex/value"
)

func (n *Const) Eval(*store.Context) (any, error) { return n.Value, nil }

func (n *Regex) Eval(*store.Context) (any, error) { return n.Pattern, nil }

func (n *Var) Eval(c *store.Context) (any, error) {
	x, err := index.Parse(n.Path)
	if err != nil {
		return nil, fail(n, err)
	}

	v, err := c.GetIndex(x)

	return v, fail(n, err)
}

func (n *Scope) Eval(c *store.Context) (any, error) { return c.Obj(), nil }

func (n *List) Eval(c *store.Context) (any, error) {
	out := make([]any, len(n.Items))

	for i, item := range n.Items {
		v, err := item.Eval(c)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func (n *Dict) Eval(c *store.Context) (any, error) {
	out := make(map[string]any, len(n.Keys))

	for i, kn := range n.Keys {
		k, err := kn.Eval(c)
		if err != nil {
			return nil, err
		}

		v, err := n.Values[i].Eval(c)
		if err != nil {
			return nil, err
		}

		out[value.Str(k)] = v
	}

	return out, nil
}

func (n *Pairs) Eval(c *store.Context) (any, error) {
	out := make(map[string]any, len(n.Keys))

	for i, k := range n.Keys {
		v, err := n.Values[i].Eval(c)
		if err != nil {
			return nil, err
		}

		out[k] = v
	}

	return out, nil
}

func (n *Func) Eval(c *store.Context) (any, error) {
	return &function{body: n.Body, source: n.Source, ctx: c}, nil
}

// function is the value of a backtick expression: calling it evaluates the
// body in a data scope of the call parameters.
type function struct {
	body   Node
	ctx    *store.Context
	source string
}

func (f *function) Call(params any) (v any, err error) {
	if params == nil {
		params = map[string]any{}
	}

	err = f.ctx.WithDataScope(params, func() error {
		v, err = f.body.Eval(f.ctx)

		return err
	})
	if err != nil {
		return nil, err
	}

	return f.ctx.Resolve(v)
}

func (f *function) String() string { return "`" + f.source + "`" }

func (f *function) Repr() string { return f.String() }

func (f *function) TypeName() string { return "function" }

func (n *Unary) Eval(c *store.Context) (any, error) {
	v, err := n.X.Eval(c)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "not":
		return !value.Truth(v), nil
	case "-":
		v, err = negate(v)
	default:
		v, err = positive(v)
	}

	return v, fail(n, err)
}

func (n *Binary) Eval(c *store.Context) (any, error) {
	a, err := n.L.Eval(c)
	if err != nil {
		return nil, err
	}

	b, err := n.R.Eval(c)
	if err != nil {
		return nil, err
	}

	var v any

	switch n.Op {
	case "..", "...":
		v, err = ranges.Create(c, a, b, n.Op == "..")
	case "::":
		v, err = format(a, b)
	case "|":
		v, err = applyFilter(c, a, b)
	default:
		v, err = arith(n.Op, a, b)
	}

	if errors.Is(err, ErrDivisionByZero) {
		return nil, err
	}

	return v, fail(n, err)
}

func (n *Logic) Eval(c *store.Context) (any, error) {
	a, err := n.L.Eval(c)
	if err != nil {
		return nil, err
	}

	if value.Truth(a) == (n.Op == "or") {
		return a, nil
	}

	return n.R.Eval(c)
}

func (n *Compare) Eval(c *store.Context) (any, error) {
	a, err := n.Operands[0].Eval(c)
	if err != nil {
		return nil, err
	}

	for i, op := range n.Ops {
		b, err := n.Operands[i+1].Eval(c)
		if err != nil {
			return nil, err
		}

		ok, err := compare(op, a, b)
		if err != nil {
			return nil, fail(n, err)
		}

		if !ok {
			return false, nil
		}

		a = b
	}

	return true, nil
}

func (n *Ternary) Eval(c *store.Context) (any, error) {
	cond, err := n.Cond.Eval(c)
	if err != nil {
		return nil, err
	}

	if value.Truth(cond) {
		return n.Then.Eval(c)
	}

	return n.Else.Eval(c)
}

func (n *Modify) Eval(c *store.Context) (any, error) {
	fn, ok := LookupModifier(n.Name)
	if !ok {
		return nil, fail(n, ErrUnknownModifier.With(slog.String("modifier", n.Name)))
	}

	v, err := n.X.Eval(c)
	if err != nil {
		return nil, err
	}

	if v, err = c.Resolve(v); err != nil {
		return nil, fail(n, err)
	}

	v, err = fn(c, v)

	return v, fail(n, err)
}

func (n *Subscript) Eval(c *store.Context) (any, error) {
	obj, err := n.X.Eval(c)
	if err != nil {
		return nil, err
	}

	key, err := n.Key.Eval(c)
	if err != nil {
		return nil, err
	}

	if value.IsMissing(key) {
		return nil, fail(n, fmt.Errorf("unable to look up missing index %s", value.Repr(key)))
	}

	if obj, err = c.Resolve(obj); err != nil {
		return nil, fail(n, err)
	}

	if v, ok := value.Lookup(obj, key); ok {
		return v, nil
	}

	return value.NewMissing(value.Str(key)), nil
}

func (n *Slice) Eval(c *store.Context) (any, error) {
	obj, err := n.X.Eval(c)
	if err != nil {
		return nil, err
	}

	if obj, err = c.Resolve(obj); err != nil {
		return nil, fail(n, err)
	}

	var bounds [3]*int

	for i, part := range []Node{n.Start, n.Stop, n.Step} {
		if part == nil {
			continue
		}

		v, err := part.Eval(c)
		if err != nil {
			return nil, err
		}

		if v == nil {
			continue
		}

		b, ok := value.AsInt(v)
		if !ok {
			return nil, fail(n, fmt.Errorf("slice indices must be integers or None, not %s", value.TypeName(v)))
		}

		bounds[i] = &b
	}

	v, err := slice(obj, bounds[0], bounds[1], bounds[2])

	return v, fail(n, err)
}

func (n *Call) Eval(c *store.Context) (any, error) {
	fn, err := n.X.Eval(c)
	if err != nil {
		return nil, err
	}

	var arg any

	if n.Arg != nil {
		if arg, err = n.Arg.Eval(c); err != nil {
			return nil, err
		}
	}

	if fn, err = c.Resolve(fn); err != nil {
		return nil, fail(n, err)
	}

	v, err := call(c, fn, arg)

	return v, fail(n, err)
}

func (n *LiteralIndex) Eval(c *store.Context) (v any, err error) {
	obj, err := n.X.Eval(c)
	if err != nil {
		return nil, err
	}

	err = c.WithDataFrame(obj, func() error {
		v, err = c.Get(n.Path)

		return err
	})

	return v, fail(n, err)
}

// slice applies start:stop:step bounds to strings and sequences. Negative
// bounds count from the end and a negative step walks backwards.
func slice(obj any, start, stop, step *int) (any, error) {
	st := 1
	if step != nil {
		st = *step
	}

	if st == 0 {
		return nil, errors.New("slice step cannot be zero")
	}

	if s, ok := obj.(string); ok {
		runes := []rune(s)

		var sb strings.Builder
		for _, i := range sliceIndices(len(runes), start, stop, st) {
			sb.WriteRune(runes[i])
		}

		return sb.String(), nil
	}

	if !isSeq(obj) {
		return nil, fmt.Errorf("'%s' object is not subscriptable", value.TypeName(obj))
	}

	l, err := value.List(obj)
	if err != nil {
		return nil, err
	}

	idx := sliceIndices(len(l), start, stop, st)

	out := make([]any, len(idx))
	for i, j := range idx {
		out[i] = l[j]
	}

	return out, nil
}

func sliceIndices(n int, start, stop *int, step int) []int {
	clamp := func(p *int, def, lo, hi int) int {
		if p == nil {
			return def
		}

		i := *p
		if i < 0 {
			i += n
		}

		return min(max(i, lo), hi)
	}

	var out []int

	if step > 0 {
		a, b := clamp(start, 0, 0, n), clamp(stop, n, 0, n)
		for i := a; i < b; i += step {
			out = append(out, i)
		}
	} else {
		a, b := clamp(start, n-1, -1, n-1), clamp(stop, -1, -1, n-1)
		for i := a; i > b; i += step {
			out = append(out, i)
		}
	}

	return out
}
