package lang

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ardnew/scopex/ranges"
	"github.com/ardnew/scopex/value"
)

// number converts an arithmetic operand to int or float64. Bools count as
// integers; durations are handled separately.
func number(v any) (any, bool) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, true
		}

		return 0, true
	case time.Duration:
		return nil, false
	}

	return value.AsNumber(v)
}

func numbers(a, b any) (x, y any, ok bool) {
	if x, ok = number(a); !ok {
		return nil, nil, false
	}

	y, ok = number(b)

	return x, y, ok
}

// isSeq reports whether v is a list-like value, ranges included.
func isSeq(v any) bool {
	if _, ok := v.(ranges.Range); ok {
		return true
	}

	return value.IsSequence(v)
}

func asFloat(n any) float64 {
	if i, ok := n.(int); ok {
		return float64(i)
	}

	return n.(float64)
}

func bothInt(a, b any) (int, int, bool) {
	x, xok := a.(int)
	y, yok := b.(int)

	return x, y, xok && yok
}

func arith(op string, a, b any) (any, error) {
	switch op {
	case "+":
		return add(a, b)
	case "-":
		return sub(a, b)
	case "*":
		return mul(a, b)
	case "/", "//", "%":
		return div(op, a, b)
	case "bitand", "bitor", "bitxor":
		return bitwise(op, a, b)
	}

	return nil, typeError(op, a, b)
}

func add(a, b any) (any, error) {
	if da, ok := a.(time.Duration); ok {
		if db, ok := b.(time.Duration); ok {
			return da + db, nil
		}
	}

	if x, y, ok := numbers(a, b); ok {
		if i, j, ok := bothInt(x, y); ok {
			return i + j, nil
		}

		return asFloat(x) + asFloat(y), nil
	}

	// a scalar joins a range at the end it is added to
	if r, ok := a.(ranges.Range); ok && !isSeq(b) {
		return append(slices.Clone(r.Values()), b), nil
	}

	if r, ok := b.(ranges.Range); ok && !isSeq(a) {
		return slices.Concat([]any{a}, r.Values()), nil
	}

	if s, ok := a.(string); ok {
		if t, ok := b.(string); ok {
			return s + t, nil
		}

		return nil, typeError("+", a, b)
	}

	if isSeq(a) && isSeq(b) {
		x, err := value.List(a)
		if err != nil {
			return nil, err
		}

		y, err := value.List(b)
		if err != nil {
			return nil, err
		}

		return slices.Concat(x, y), nil
	}

	return nil, typeError("+", a, b)
}

func sub(a, b any) (any, error) {
	if da, ok := a.(time.Duration); ok {
		if db, ok := b.(time.Duration); ok {
			return da - db, nil
		}
	}

	if x, y, ok := numbers(a, b); ok {
		if i, j, ok := bothInt(x, y); ok {
			return i - j, nil
		}

		return asFloat(x) - asFloat(y), nil
	}

	if r, ok := a.(ranges.Range); ok {
		l := r.Values()

		i := slices.IndexFunc(l, func(e any) bool { return value.Equal(e, b) })
		if i < 0 {
			return nil, fmt.Errorf("%s not in %s", value.Repr(b), r.Repr())
		}

		return slices.Delete(slices.Clone(l), i, i+1), nil
	}

	return nil, typeError("-", a, b)
}

func mul(a, b any) (any, error) {
	if d, ok := a.(time.Duration); ok {
		if n, ok := b.(int); ok {
			return d * time.Duration(n), nil
		}
	}

	if x, y, ok := numbers(a, b); ok {
		if i, j, ok := bothInt(x, y); ok {
			return i * j, nil
		}

		return asFloat(x) * asFloat(y), nil
	}

	// repetition works with the count on either side
	if n, ok := b.(int); ok {
		return repeat(a, b, n)
	}

	if n, ok := a.(int); ok {
		return repeat(b, a, n)
	}

	return nil, typeError("*", a, b)
}

func repeat(seq, count any, n int) (any, error) {
	n = max(n, 0)

	if s, ok := seq.(string); ok {
		return strings.Repeat(s, n), nil
	}

	if isSeq(seq) {
		l, err := value.List(seq)
		if err != nil {
			return nil, err
		}

		out := make([]any, 0, len(l)*n)
		for range n {
			out = append(out, l...)
		}

		return out, nil
	}

	return nil, typeError("*", seq, count)
}

func div(op string, a, b any) (any, error) {
	x, y, ok := numbers(a, b)
	if !ok {
		return nil, typeError(op, a, b)
	}

	if asFloat(y) == 0 {
		return nil, ErrDivisionByZero
	}

	i, j, ints := bothInt(x, y)

	switch op {
	case "/":
		return asFloat(x) / asFloat(y), nil
	case "//":
		if ints {
			return floorDiv(i, j), nil
		}

		return math.Floor(asFloat(x) / asFloat(y)), nil
	default:
		if ints {
			return i - floorDiv(i, j)*j, nil
		}

		fx, fy := asFloat(x), asFloat(y)

		m := math.Mod(fx, fy)
		if m != 0 && (m < 0) != (fy < 0) {
			m += fy
		}

		return m, nil
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}

func bitwise(op string, a, b any) (any, error) {
	x, y, ok := numbers(a, b)
	if !ok {
		return nil, typeError(op, a, b)
	}

	i, j, ok := bothInt(x, y)
	if !ok {
		return nil, typeError(op, a, b)
	}

	switch op {
	case "bitand":
		return i & j, nil
	case "bitor":
		return i | j, nil
	default:
		return i ^ j, nil
	}
}

func negate(v any) (any, error) {
	if d, ok := v.(time.Duration); ok {
		return -d, nil
	}

	switch n, _ := number(v); t := n.(type) {
	case int:
		return -t, nil
	case float64:
		return -t, nil
	}

	return nil, unaryTypeError("-", v)
}

func positive(v any) (any, error) {
	if d, ok := v.(time.Duration); ok {
		return d, nil
	}

	if n, ok := number(v); ok {
		return n, nil
	}

	return nil, unaryTypeError("+", v)
}

// compare applies one comparison operator.
func compare(op string, a, b any) (bool, error) {
	switch op {
	case "==":
		return value.Equal(a, b), nil
	case "!=":
		return !value.Equal(a, b), nil
	case "<", "<=", ">", ">=":
		c, err := value.Compare(a, b)
		if err != nil {
			return false, typeError(op, a, b)
		}

		switch op {
		case "<":
			return c < 0, nil
		case "<=":
			return c <= 0, nil
		case ">":
			return c > 0, nil
		default:
			return c >= 0, nil
		}
	case "~=":
		return strings.ToLower(value.Str(a)) == strings.ToLower(value.Str(b)), nil
	case "^=":
		return strings.HasPrefix(value.Str(a), value.Str(b)), nil
	case "$=":
		return strings.HasSuffix(value.Str(a), value.Str(b)), nil
	case "is":
		return value.Identical(a, b), nil
	case "is not":
		return !value.Identical(a, b), nil
	case "in":
		return in(a, b), nil
	case "not in":
		return !in(a, b), nil
	case "instr":
		return strIn(a, b), nil
	case "not instr":
		return !strIn(a, b), nil
	case "matches":
		return matches(a, b)
	case "fnmatches":
		return fnmatches(a, b), nil
	}

	return false, typeError(op, a, b)
}

func in(v, container any) bool {
	ok, err := value.Contains(container, v)

	return err == nil && ok
}

// strIn reports whether the text of v equals the text of any element of seq.
func strIn(v, seq any) bool {
	elems, ok := value.Iterate(seq)
	if !ok {
		return false
	}

	s := value.Str(v)
	for e := range elems {
		if value.Str(e) == s {
			return true
		}
	}

	return false
}

func matches(v, pattern any) (bool, error) {
	if p, ok := pattern.(*Pattern); ok {
		return p.Match(value.Str(v)), nil
	}

	re, err := regexp.Compile(`^(?:` + value.Str(pattern) + `)`)
	if err != nil {
		return false, err
	}

	return re.MatchString(value.Str(v)), nil
}

func fnmatches(name, pattern any) bool {
	s := value.Str(name)

	if _, isStr := pattern.(string); !isStr && isSeq(pattern) {
		l, _ := value.List(pattern)

		return slices.ContainsFunc(l, func(p any) bool { return fnmatch(value.Str(p), s) })
	}

	return fnmatch(value.Str(pattern), s)
}
