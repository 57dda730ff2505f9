package value

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Equal reports whether a and b are equal. Numbers compare across int and
// float; lists and mappings compare element-wise.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	na, aok := AsNumber(a)
	nb, bok := AsNumber(b)

	if aok && bok {
		c, _ := compareNumbers(na, nb)

		return c == 0
	}

	if aok != bok {
		return false
	}

	switch x := a.(type) {
	case string:
		y, ok := b.(string)

		return ok && x == y
	case bool:
		y, ok := b.(bool)

		return ok && x == y
	}

	if IsSequence(a) && IsSequence(b) {
		la, _ := List(a)
		lb, _ := List(b)

		if len(la) != len(lb) {
			return false
		}

		for i := range la {
			if !Equal(la[i], lb[i]) {
				return false
			}
		}

		return true
	}

	if IsMapping(a) && IsMapping(b) {
		ka, kb := Keys(a), Keys(b)
		if len(ka) != len(kb) {
			return false
		}

		for _, k := range ka {
			vb, ok := Lookup(b, k)
			if !ok {
				return false
			}

			va, _ := Lookup(a, k)
			if !Equal(va, vb) {
				return false
			}
		}

		return true
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == tb && ta.Comparable() {
		return a == b
	}

	return reflect.DeepEqual(a, b)
}

// Identical reports whether a and b are the same object: reference types
// compare by address, other values by equality of type and value.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}

	if ra.Type().Comparable() {
		return a == b
	}

	return false
}

// Compare orders a and b, returning -1, 0 or +1. Numbers, strings, bools,
// durations, times and lists (lexicographically) are ordered.
func Compare(a, b any) (int, error) {
	na, aok := AsNumber(a)
	nb, bok := AsNumber(b)

	if aok && bok {
		return compareNumbers(na, nb)
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmp.Compare(boolInt(x), boolInt(y)), nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	}

	if IsSequence(a) && IsSequence(b) {
		la, _ := List(a)
		lb, _ := List(b)

		for i := range min(len(la), len(lb)) {
			c, err := Compare(la[i], lb[i])
			if err != nil || c != 0 {
				return c, err
			}
		}

		return cmp.Compare(len(la), len(lb)), nil
	}

	return 0, ErrNotComparable.Wrap(
		fmt.Errorf("%s and %s", TypeName(a), TypeName(b)))
}

func compareNumbers(a, b any) (int, error) {
	ia, aInt := a.(int)
	ib, bInt := b.(int)

	if aInt && bInt {
		return cmp.Compare(ia, ib), nil
	}

	return cmp.Compare(toF(a), toF(b)), nil
}

func toF(n any) float64 {
	switch t := n.(type) {
	case int:
		return float64(t)
	case float64:
		return t
	default:
		return 0
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

// Contains implements the membership test `v in container`: substring for
// strings, key presence for mappings, element equality for sequences.
func Contains(container, v any) (bool, error) {
	switch c := container.(type) {
	case nil:
		return false, ErrNotIterable.Wrap(fmt.Errorf("None"))
	case Container:
		return c.Contains(v), nil
	case string:
		s, ok := v.(string)
		if !ok {
			return false, fmt.Errorf("'in <string>' requires string as left operand, not %s", TypeName(v))
		}

		return strings.Contains(c, s), nil
	}

	if IsMapping(container) {
		return Has(container, v), nil
	}

	seq, ok := Iterate(container)
	if !ok {
		return false, ErrNotIterable.Wrap(fmt.Errorf("%s", TypeName(container)))
	}

	for e := range seq {
		if Equal(e, v) {
			return true, nil
		}
	}

	return false, nil
}
