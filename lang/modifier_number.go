package lang

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/ardnew/scopex/store"
	"github.com/ardnew/scopex/value"
)

func init() {
	register(map[string]Modifier{
		"abs":        pureE(absolute),
		"ceil":       pureE(rounder(math.Ceil)),
		"floor":      pureE(rounder(math.Floor)),
		"round":      pureE(round),
		"log10":      pureE(log10),
		"int":        pure(toInt),
		"float":      pureE(toFloat),
		"d":          pureE(decimal),
		"bool":       pure(func(v any) any { return value.Truth(v) }),
		"str":        pure(str),
		"chr":        pure(chr),
		"isbool":     pure(is[bool]),
		"isint":      pure(func(v any) any { return value.IsInt(v) }),
		"isfloat":    pure(is[float64]),
		"isnumber":   pure(func(v any) any { return value.IsNumber(v) }),
		"isstr":      pure(is[string]),
		"isnone":     pure(func(v any) any { return v == nil }),
		"isemail":    textual(func(s string) any { return strings.Contains(s, "@") && strings.Contains(s, ".") }),
		"exists":     pure(func(v any) any { return !value.IsMissing(v) }),
		"missing":    pure(func(v any) any { return value.IsMissing(v) }),
		"none":       pure(none),
		"validint":   textual(validInt),
		"validfloat": textual(validFloat),
		"type":       pure(func(v any) any { return value.TypeName(v) }),
		"debug":      pure(func(v any) any { return value.Repr(v) }),
		"eval":       func(c *store.Context, v any) (any, error) { return Eval(c, value.Str(v)) },
		"sub":        func(c *store.Context, v any) (any, error) { return c.Substitute(value.Str(v)) },
	})
}

func is[T any](v any) any {
	_, ok := v.(T)

	return ok
}

func validInt(s string) any {
	_, err := strconv.Atoi(strings.TrimSpace(s))

	return err == nil
}

func validFloat(s string) any {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)

	return err == nil
}

func absolute(v any) (any, error) {
	switch n, _ := number(v); t := n.(type) {
	case int:
		return max(t, -t), nil
	case float64:
		return math.Abs(t), nil
	}

	return nil, fmt.Errorf("bad operand type for abs: '%s'", value.TypeName(v))
}

func rounder(fn func(float64) float64) func(any) (any, error) {
	return func(v any) (any, error) {
		f, err := value.ToFloat(v)
		if err != nil {
			return nil, err
		}

		return int(fn(f)), nil
	}
}

// round rounds n, or [n, digits], half to even.
func round(v any) (any, error) {
	n, digits := v, any(0)
	if l, err := value.List(v); err == nil && value.IsSequence(v) && len(l) == 2 { //nolint:mnd
		n, digits = l[0], l[1]
	}

	f, err := value.ToFloat(n)
	if err != nil {
		return nil, err
	}

	d, err := value.ToInt(digits)
	if err != nil {
		return nil, err
	}

	scale := math.Pow(10, float64(d)) //nolint:mnd

	return math.RoundToEven(f*scale) / scale, nil
}

func log10(v any) (any, error) {
	f, err := value.ToFloat(v)
	if err != nil {
		return nil, err
	}

	if f <= 0 {
		return nil, fmt.Errorf("math domain error")
	}

	return math.Log10(f), nil
}

func toInt(v any) any {
	if s, ok := v.(string); ok {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil
		}

		return i
	}

	i, err := cast.ToIntE(v)
	if err != nil {
		return nil
	}

	return i
}

func toFloat(v any) (any, error) {
	return value.ToFloat(v)
}

// decimal parses v as an exact integer where possible, else a float.
func decimal(v any) (any, error) {
	if n, ok := number(v); ok {
		return n, nil
	}

	s := strings.TrimSpace(value.Str(v))
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %s", value.Repr(v))
	}

	return f, nil
}

func str(v any) any {
	if v == nil {
		return ""
	}

	return value.Str(v)
}

func chr(v any) any {
	if i, ok := v.(int); ok {
		return string(rune(i))
	}

	return v
}

func none(v any) any {
	if !value.Truth(v) {
		return nil
	}

	return v
}
