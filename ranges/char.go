package ranges

import (
	"iter"
	"unicode/utf8"

	"github.com/ardnew/scopex/value"
)

// CharRange is a range of characters by code point.
type CharRange struct {
	span
}

// NewCharRange returns the range of characters from a to b.
func NewCharRange(a, b rune, inclusive bool) *CharRange {
	return &CharRange{span: newSpan(int(a), int(b), inclusive)}
}

func (r *CharRange) Start() any { return string(rune(r.a)) }

func (r *CharRange) End() any { return string(rune(r.b)) }

func (r *CharRange) At(i int) (any, bool) {
	v, ok := r.at(i)
	if !ok {
		return nil, false
	}

	return string(rune(v)), true
}

// Index implements positional lookup for the data store.
func (r *CharRange) Index(key any) (any, bool) {
	i, ok := position(key)
	if !ok {
		return nil, false
	}

	return r.At(i)
}

// Contains reports whether v is a single character in r.
func (r *CharRange) Contains(v any) bool {
	s, ok := v.(string)
	if !ok || utf8.RuneCountInString(s) != 1 {
		return false
	}

	c, _ := utf8.DecodeRuneInString(s)

	return r.has(int(c))
}

func (r *CharRange) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for v := range r.ints() {
			if !yield(string(rune(v))) {
				return
			}
		}
	}
}

func (r *CharRange) Values() []any { return collect(r.All(), r.Len()) }

func (r *CharRange) Items() []any { return items(r.All(), r.Len()) }

func (r *CharRange) String() string {
	return "<range " + r.Start().(string) + " to " + r.End().(string) + " " + r.kind() + ">"
}

func (r *CharRange) Repr() string {
	return "(" + value.Repr(r.Start()) + ")" + r.op() + "(" + value.Repr(r.End()) + ")"
}

// TypeName names the value in error messages.
func (r *CharRange) TypeName() string { return "range" }
