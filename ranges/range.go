package ranges

import (
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"unicode/utf8"

	"github.com/ardnew/scopex/pkg"
	"github.com/ardnew/scopex/store"
	"github.com/ardnew/scopex/value"
)

// ErrRange is returned when no range can be built between two values.
var ErrRange = pkg.NewError("can't create range")

// Range is a finite, ordered, lazily generated sequence.
type Range interface {
	Start() any
	End() any
	Inclusive() bool
	Len() int
	At(i int) (any, bool)
	Contains(v any) bool
	All() iter.Seq[any]
	Keys() []any
	Values() []any
	Items() []any
	Truth() bool
	String() string
	Repr() string
}

// Ranger is implemented by values that build their own range when they
// appear on the left of a range operator.
type Ranger interface {
	Range(c *store.Context, end any, inclusive bool) (Range, error)
}

// Create returns the range from start to end. Numbers give an [IntRange]
// (floats are truncated), non-empty strings give a [CharRange] over their
// first characters, and a [Ranger] builds its own.
func Create(c *store.Context, start, end any, inclusive bool) (Range, error) {
	switch s := start.(type) {
	case Ranger:
		return s.Range(c, end, inclusive)
	case string:
		e, ok := end.(string)
		if !ok || s == "" || e == "" {
			return nil, rangeError(start, end)
		}

		a, _ := utf8.DecodeRuneInString(s)
		b, _ := utf8.DecodeRuneInString(e)

		return NewCharRange(a, b, inclusive), nil
	case bool:
		return nil, rangeError(start, end)
	}

	if !value.IsNumber(start) || !value.IsNumber(end) {
		return nil, rangeError(start, end)
	}

	a, err := value.ToInt(start)
	if err != nil {
		return nil, rangeError(start, end)
	}

	b, err := value.ToInt(end)
	if err != nil {
		return nil, rangeError(start, end)
	}

	return NewIntRange(a, b, inclusive), nil
}

func rangeError(start, end any) error {
	return ErrRange.Wrap(fmt.Errorf("%s to %s", value.Repr(start), value.Repr(end))).With(
		slog.String("start", value.TypeName(start)),
		slog.String("end", value.TypeName(end)))
}

// span holds the integer bounds shared by every range kind.
type span struct {
	a, b      int
	inclusive bool
	forward   bool
}

func newSpan(a, b int, inclusive bool) span {
	return span{a: a, b: b, inclusive: inclusive, forward: b >= a}
}

func (s span) Inclusive() bool { return s.inclusive }

func (s span) Len() int {
	n := s.b - s.a
	if n < 0 {
		n = -n
	}

	if s.inclusive {
		n++
	}

	return n
}

func (s span) Truth() bool { return s.Len() > 0 }

// at returns the integer at position i, counting from the end when i is
// negative.
func (s span) at(i int) (int, bool) {
	n := s.Len()
	if i < 0 {
		i += n
	}

	if i < 0 || i >= n {
		return 0, false
	}

	if s.forward {
		return s.a + i, true
	}

	return s.a - i, true
}

func (s span) has(v int) bool {
	lo, hi := s.a, s.b
	if !s.forward {
		lo, hi = hi, lo
	}

	if s.inclusive {
		return v >= lo && v <= hi
	}

	if s.forward {
		return v >= lo && v < hi
	}

	return v > lo && v <= hi
}

func (s span) ints() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range s.Len() {
			v, _ := s.at(i)
			if !yield(v) {
				return
			}
		}
	}
}

func (s span) Keys() []any {
	keys := make([]any, s.Len())
	for i := range keys {
		keys[i] = i
	}

	return keys
}

func (s span) op() string {
	if s.inclusive {
		return ".."
	}

	return "..."
}

func (s span) kind() string {
	if s.inclusive {
		return "inclusive"
	}

	return "exclusive"
}

func position(key any) (int, bool) {
	if k, ok := key.(string); ok {
		i, err := strconv.Atoi(k)

		return i, err == nil
	}

	return value.AsInt(key)
}

func collect(all iter.Seq[any], n int) []any {
	out := make([]any, 0, n)
	for v := range all {
		out = append(out, v)
	}

	return out
}

func items(all iter.Seq[any], n int) []any {
	out := make([]any, 0, n)

	i := 0
	for v := range all {
		out = append(out, []any{i, v})
		i++
	}

	return out
}
