package ranges

import (
	"iter"
	"strconv"

	"github.com/ardnew/scopex/value"
)

// IntRange is a range of integers. An exclusive range omits its end.
type IntRange struct {
	span
}

// NewIntRange returns the range from a to b.
func NewIntRange(a, b int, inclusive bool) *IntRange {
	return &IntRange{span: newSpan(a, b, inclusive)}
}

func (r *IntRange) Start() any { return r.a }

func (r *IntRange) End() any { return r.b }

func (r *IntRange) At(i int) (any, bool) {
	v, ok := r.at(i)
	if !ok {
		return nil, false
	}

	return v, true
}

// Index implements positional lookup for the data store.
func (r *IntRange) Index(key any) (any, bool) {
	i, ok := position(key)
	if !ok {
		return nil, false
	}

	return r.At(i)
}

// Contains reports whether v, converted to an integer, lies in r.
func (r *IntRange) Contains(v any) bool {
	if !value.IsNumber(v) {
		return false
	}

	n, err := value.ToInt(v)

	return err == nil && r.has(n)
}

func (r *IntRange) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for v := range r.ints() {
			if !yield(v) {
				return
			}
		}
	}
}

func (r *IntRange) Values() []any { return collect(r.All(), r.Len()) }

func (r *IntRange) Items() []any { return items(r.All(), r.Len()) }

func (r *IntRange) String() string {
	return "<range " + strconv.Itoa(r.a) + " to " + strconv.Itoa(r.b) + " " + r.kind() + ">"
}

func (r *IntRange) Repr() string {
	return "(" + strconv.Itoa(r.a) + ")" + r.op() + "(" + strconv.Itoa(r.b) + ")"
}

// TypeName names the value in error messages.
func (r *IntRange) TypeName() string { return "range" }
