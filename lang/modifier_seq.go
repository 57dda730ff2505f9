package lang

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ardnew/scopex/value"
)

func init() {
	register(map[string]Modifier{
		"len":        pureE(length),
		"first":      pure(func(v any) any { return at(v, 0) }),
		"last":       pure(func(v any) any { return at(v, -1) }),
		"list":       pure(list),
		"reversed":   pureE(reversed),
		"sorted":     pureE(sorter("sorted", false)),
		"rsorted":    pureE(sorter("rsorted", true)),
		"sortedby":   pureE(sorterBy("sortedby", false)),
		"rsortedby":  pureE(sorterBy("rsortedby", true)),
		"max":        pureE(extreme("max", 1)),
		"min":        pureE(extreme("min", -1)),
		"sum":        pureE(sum),
		"chain":      pureE(chain),
		"flat":       pureE(flat),
		"zip":        pureE(zip),
		"enumerate":  pure(enumerator(0)),
		"enumerate1": pure(enumerator(1)),
		"unique":     pureE(unique),
		"set":        pureE(unique),
		"collect":    pureE(collect),
		"seqlast":    pureE(seqlast),
		"all":        pureE(quantifier("all", true)),
		"any":        pureE(quantifier("any", false)),
		"map":        pureE(mapSeq),
		"filter":     pureE(filterSeq),
		"count":      pureE(countSeq),
		"keys":       pure(keys),
		"values":     pureE(values),
		"items":      pureE(items),
		"dict":       pureE(dict),
		"remap":      pureE(remap),
		"collectmap": pureE(collectmap),
		"copy":       pure(shallowCopy),
	})
}

func length(v any) (any, error) {
	if n, ok := value.Len(v); ok {
		return n, nil
	}

	if r, ok := v.(interface{ Len() int }); ok {
		return r.Len(), nil
	}

	return nil, fmt.Errorf("object of type '%s' has no len()", value.TypeName(v))
}

func at(v any, i int) any {
	e, ok := value.Lookup(v, i)
	if !ok {
		return nil
	}

	return e
}

func list(v any) any {
	l, err := seq("list", v)
	if err != nil || l == nil {
		return []any{}
	}

	return slices.Clone(l)
}

func reversed(v any) (any, error) {
	l, err := seq("reversed", v)
	if err != nil {
		return nil, err
	}

	l = slices.Clone(l)
	slices.Reverse(l)

	return l, nil
}

// sortValues sorts by value.Compare, failing on incomparable elements.
func sortValues(name string, l []any, key func(any) (any, error), reverse bool) ([]any, error) {
	keys := make([]any, len(l))

	for i, e := range l {
		k, err := key(e)
		if err != nil {
			return nil, err
		}

		keys[i] = k
	}

	idx := make([]int, len(l))
	for i := range idx {
		idx[i] = i
	}

	var sortErr error

	slices.SortStableFunc(idx, func(a, b int) int {
		c, err := value.Compare(keys[a], keys[b])
		if err != nil && sortErr == nil {
			sortErr = fmt.Errorf("%s: %w", name, err)
		}

		if reverse {
			return -c
		}

		return c
	})

	if sortErr != nil {
		return nil, sortErr
	}

	out := make([]any, len(l))
	for i, j := range idx {
		out[i] = l[j]
	}

	return out, nil
}

func identity(v any) (any, error) { return v, nil }

func sorter(name string, reverse bool) func(any) (any, error) {
	return func(v any) (any, error) {
		l, err := seq(name, v)
		if err != nil {
			return nil, err
		}

		return sortValues(name, l, identity, reverse)
	}
}

// keyFunc returns a function extracting the sort or group key: a callable
// is called with the item, anything else indexes it.
func keyFunc(key any) func(any) (any, error) {
	if c, ok := key.(Caller); ok {
		return c.Call
	}

	return func(item any) (any, error) {
		if v, ok := value.Lookup(item, key); ok {
			return v, nil
		}

		return value.NewMissing(value.Str(key)), nil
	}
}

func sorterBy(name string, reverse bool) func(any) (any, error) {
	return func(v any) (any, error) {
		s, key, err := pair(name, "[<sequence>, <key>]", v)
		if err != nil {
			return nil, err
		}

		l, err := seq(name, s)
		if err != nil {
			return nil, err
		}

		return sortValues(name, l, keyFunc(key), reverse)
	}
}

func extreme(name string, sign int) func(any) (any, error) {
	return func(v any) (any, error) {
		l, err := seq(name, v)
		if err != nil {
			return nil, err
		}

		var best any

		for _, e := range l {
			if e == nil {
				continue
			}

			if best == nil {
				best = e

				continue
			}

			c, err := value.Compare(e, best)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}

			if c*sign > 0 {
				best = e
			}
		}

		if best == nil {
			return nil, fmt.Errorf("%s() arg is an empty sequence", name)
		}

		return best, nil
	}
}

func sum(v any) (any, error) {
	l, err := seq("sum", v)
	if err != nil || len(l) == 0 {
		return nil, err
	}

	total := l[0]
	for _, e := range l[1:] {
		if total, err = add(total, e); err != nil {
			return nil, fmt.Errorf("sum: %w", err)
		}
	}

	return total, nil
}

// chain concatenates sequences, treating other elements as one-element
// sequences.
func chain(v any) (any, error) {
	l, err := seq("chain", v)
	if err != nil {
		return []any{v}, nil //nolint:nilerr
	}

	var out []any

	for _, e := range l {
		if isSeq(e) {
			inner, err := value.List(e)
			if err != nil {
				return nil, err
			}

			out = append(out, inner...)
		} else {
			out = append(out, e)
		}
	}

	return out, nil
}

func flat(v any) (any, error) {
	l, err := seq("flat", v)
	if err != nil {
		return nil, err
	}

	var out []any

	for _, e := range l {
		if _, isStr := e.(string); !isStr {
			if inner, ok := value.Iterate(e); ok {
				for x := range inner {
					out = append(out, x)
				}

				continue
			}
		}

		out = append(out, e)
	}

	return out, nil
}

func zip(v any) (any, error) {
	l, err := seq("zip", v)
	if err != nil {
		return nil, err
	}

	cols := make([][]any, len(l))
	n := -1

	for i, e := range l {
		if cols[i], err = seq("zip", e); err != nil {
			return nil, err
		}

		if n < 0 || len(cols[i]) < n {
			n = len(cols[i])
		}
	}

	out := make([]any, 0, max(n, 0))
	for i := range max(n, 0) {
		row := make([]any, len(cols))
		for j := range cols {
			row[j] = cols[j][i]
		}

		out = append(out, row)
	}

	return out, nil
}

func enumerator(start int) func(any) any {
	return func(v any) any {
		l, err := seq("enumerate", v)
		if err != nil {
			return []any{}
		}

		out := make([]any, len(l))
		for i, e := range l {
			out[i] = []any{i + start, e}
		}

		return out
	}
}

func unique(v any) (any, error) {
	l, err := seq("unique", v)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(l))
	for _, e := range l {
		if !slices.ContainsFunc(out, func(o any) bool { return value.Equal(o, e) }) {
			out = append(out, e)
		}
	}

	return out, nil
}

// collect indexes every item of [seq, key].
func collect(v any) (any, error) {
	s, key, err := pair("collect", "[<sequence>, <key>]", v)
	if err != nil {
		return nil, err
	}

	l, err := seq("collect", s)
	if err != nil {
		return nil, err
	}

	get := keyFunc(key)
	out := make([]any, len(l))

	for i, e := range l {
		if out[i], err = get(e); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// collectmap maps the key of every item of [seq, key] to the item.
func collectmap(v any) (any, error) {
	s, key, err := pair("collectmap", "[<sequence>, <key>]", v)
	if err != nil {
		return nil, err
	}

	l, err := seq("collectmap", s)
	if err != nil {
		return nil, err
	}

	get := keyFunc(key)
	out := make(map[string]any, len(l))

	for _, e := range l {
		k, err := get(e)
		if err != nil || value.IsMissing(k) {
			continue
		}

		out[value.Str(k)] = e
	}

	return out, nil
}

// seqlast pairs each item with a flag set on the last item.
func seqlast(v any) (any, error) {
	l, err := seq("seqlast", v)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(l))
	for i, e := range l {
		out[i] = []any{i == len(l)-1, e}
	}

	return out, nil
}

func quantifier(name string, all bool) func(any) (any, error) {
	return func(v any) (any, error) {
		l, err := seq(name, v)
		if err != nil {
			return nil, err
		}

		for _, e := range l {
			if value.Truth(e) != all {
				return !all, nil
			}
		}

		return all, nil
	}
}

// higherOrder unpacks [seq, func] for map:, filter: and count:.
func higherOrder(name string, v any) ([]any, Caller, error) {
	s, fn, err := pair(name, "[<seq>, <expression>]", v)
	if err != nil {
		return nil, nil, err
	}

	l, err := seq(name, s)
	if err != nil {
		return nil, nil, err
	}

	c, err := callable(name, fn)

	return l, c, err
}

func mapSeq(v any) (any, error) {
	l, fn, err := higherOrder("map", v)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(l))
	for i, e := range l {
		if out[i], err = fn.Call(e); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func filterSeq(v any) (any, error) {
	l, fn, err := higherOrder("filter", v)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(l))

	for _, e := range l {
		ok, err := fn.Call(e)
		if err != nil {
			return nil, err
		}

		if value.Truth(ok) {
			out = append(out, e)
		}
	}

	return out, nil
}

func countSeq(v any) (any, error) {
	l, fn, err := higherOrder("count", v)
	if err != nil {
		return nil, err
	}

	n := 0

	for _, e := range l {
		ok, err := fn.Call(e)
		if err != nil {
			return nil, err
		}

		if value.Truth(ok) {
			n++
		}
	}

	return n, nil
}

func keys(v any) any {
	if value.IsMissing(v) || v == nil {
		return []any{}
	}

	if isSeq(v) {
		n, _ := value.Len(v)

		out := make([]any, n)
		for i := range n {
			out[i] = i
		}

		return out
	}

	return value.Keys(v)
}

func values(v any) (any, error) {
	if value.IsMissing(v) || v == nil {
		return []any{}, nil
	}

	if isSeq(v) {
		return value.List(v)
	}

	return value.Values(v), nil
}

func items(v any) (any, error) {
	if value.IsMissing(v) || v == nil {
		return []any{}, nil
	}

	if isSeq(v) {
		l, err := value.List(v)
		if err != nil {
			return nil, err
		}

		out := make([]any, len(l))
		for i, e := range l {
			out[i] = []any{i, e}
		}

		return out, nil
	}

	return value.Items(v), nil
}

// dict builds a mapping from a list of pairs or from the items of v.
func dict(v any) (any, error) {
	pairs, err := items(v)
	if l, ok := v.([]any); ok {
		pairs, err = l, nil
	}

	if err != nil {
		return map[string]any{}, nil //nolint:nilerr
	}

	l, _ := pairs.([]any)
	out := make(map[string]any, len(l))

	for _, p := range l {
		kv, err := value.List(p)
		if err != nil || len(kv) != 2 { //nolint:mnd
			return map[string]any{}, nil //nolint:nilerr
		}

		out[value.Str(kv[0])] = kv[1]
	}

	return out, nil
}

// remap inverts a mapping: each value maps to the list of its keys.
func remap(v any) (any, error) {
	pairs, err := items(v)
	if err != nil {
		return nil, err
	}

	out := map[string]any{}

	for _, p := range pairs.([]any) { //nolint:forcetypeassert
		kv := p.([]any) //nolint:forcetypeassert
		k := value.Str(kv[1])

		ks, _ := out[k].([]any)
		out[k] = append(ks, kv[0])
	}

	return out, nil
}

func shallowCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return maps.Clone(t)
	case []any:
		return slices.Clone(t)
	case map[any]any:
		return maps.Clone(t)
	}

	return v
}
