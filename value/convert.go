package value

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Truth returns the truth value of v. Nil, false, zero numbers, empty
// strings and empty containers are false, as is Missing.
func Truth(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case Truther:
		return t.Truth()
	case int:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t != ""
	case time.Duration:
		return t != 0
	case Lener:
		return t.Len() > 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}

	if n, ok := AsNumber(v); ok {
		return Truth(n)
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() > 0
	default:
		return true
	}
}

// AsNumber converts any Go numeric kind to int or float64. Bools are not
// numbers.
func AsNumber(v any) (any, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return n, true
	case bool, nil, string:
		return nil, false
	case time.Duration:
		return int(n), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return cast.ToInt(n), true
	case float32:
		return float64(n), true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return nil, false
	}
}

// IsNumber reports whether v is a number (not a bool).
func IsNumber(v any) bool {
	_, ok := AsNumber(v)

	return ok
}

// IsInt reports whether v is an integer number.
func IsInt(v any) bool {
	n, ok := AsNumber(v)
	if !ok {
		return false
	}

	_, ok = n.(int)

	return ok
}

// AsInt converts numbers (truncating floats) to int.
func AsInt(v any) (int, bool) {
	n, ok := AsNumber(v)
	if !ok {
		return 0, false
	}

	switch t := n.(type) {
	case int:
		return t, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}

		return int(t), true
	}

	return 0, false
}

// ToInt coerces v to an int, parsing strings and converting bools.
func ToInt(v any) (int, error) {
	switch t := v.(type) {
	case Missing:
		return 0, nil
	case string:
		s := strings.TrimSpace(t)
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid literal for int: %s", Repr(t))
		}

		return int(f), nil
	case float64:
		return int(t), nil
	}

	return cast.ToIntE(v)
}

// ToFloat coerces v to a float64.
func ToFloat(v any) (float64, error) {
	switch t := v.(type) {
	case Missing:
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: %s", Repr(t))
		}

		return f, nil
	}

	return cast.ToFloat64E(v)
}

// FormatFloat renders f in fixed notation with at least one decimal between
// 1e-4 and 1e16, and in exponent notation outside that range.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	if a := math.Abs(f); a != 0 && (a >= 1e16 || a < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// Str renders v as text: strings as is, None/True/False for nil and bools,
// Missing as the empty string, containers in expression form.
func Str(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	case bool:
		if t {
			return "True"
		}

		return "False"
	case int:
		return strconv.Itoa(t)
	case float64:
		return FormatFloat(t)
	case Missing:
		return ""
	case []byte:
		return string(t)
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	case []any, map[string]any, map[any]any:
		return Repr(v)
	}

	if n, ok := AsNumber(v); ok {
		return Str(n)
	}

	if IsSequence(v) || IsMapping(v) {
		return Repr(v)
	}

	return fmt.Sprint(v)
}

// Repr renders v as an expression literal where possible: strings are
// single-quoted, booleans are yes/no, containers are bracketed.
func Repr(v any) string {
	var sb strings.Builder

	writeRepr(&sb, v)

	return sb.String()
}

func writeRepr(sb *strings.Builder, v any) {
	switch t := v.(type) {
	case string:
		sb.WriteString(QuoteString(t))

		return
	case nil:
		sb.WriteString("None")

		return
	case bool:
		if t {
			sb.WriteString("yes")
		} else {
			sb.WriteString("no")
		}

		return
	case Reprer:
		sb.WriteString(t.Repr())

		return
	}

	if n, ok := AsNumber(v); ok {
		if d, isDur := v.(time.Duration); isDur {
			sb.WriteString(d.String())

			return
		}

		sb.WriteString(Str(n))

		return
	}

	switch {
	case IsMapping(v):
		sb.WriteByte('{')

		for i, k := range Keys(v) {
			if i > 0 {
				sb.WriteString(", ")
			}

			val, _ := Lookup(v, k)

			writeRepr(sb, k)
			sb.WriteString(": ")
			writeRepr(sb, val)
		}

		sb.WriteByte('}')

	case IsSequence(v):
		sb.WriteByte('[')

		seq, _ := Iterate(v)

		i := 0
		for e := range seq {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeRepr(sb, e)

			i++
		}

		sb.WriteByte(']')

	case isStringer(v):
		sb.WriteString(v.(fmt.Stringer).String())

	default:
		fmt.Fprintf(sb, "%#v", v)
	}
}

func isStringer(v any) bool {
	_, ok := v.(fmt.Stringer)

	return ok
}

var (
	encodeString = strings.NewReplacer( //nolint:gochecknoglobals
		"\a", `\a`, "\b", `\b`, "\f", `\f`, "\n", `\n`, "\r", `\r`,
		"\t", `\t`, "\v", `\v`, "'", `\'`, `"`, `\"`, `\`, `\\`,
	)
	decodeString = strings.NewReplacer( //nolint:gochecknoglobals
		`\a`, "\a", `\b`, "\b", `\f`, "\f", `\n`, "\n", `\r`, "\r",
		`\t`, "\t", `\v`, "\v", `\'`, "'", `\"`, `"`, `\\`, `\`,
	)
)

// EncodeString escapes control characters, quotes and backslashes.
func EncodeString(s string) string { return encodeString.Replace(s) }

// DecodeString reverses EncodeString. Unknown escapes are left intact.
func DecodeString(s string) string { return decodeString.Replace(s) }

// QuoteString returns s single-quoted with EncodeString escapes.
func QuoteString(s string) string { return "'" + EncodeString(s) + "'" }

// TypeName returns a short name for the dynamic type of v.
func TypeName(v any) string {
	switch t := v.(type) {
	case interface{ TypeName() string }:
		return t.TypeName()
	case nil:
		return "None"
	case string:
		return "str"
	case bool:
		return "bool"
	case int:
		return "int"
	case float64:
		return "float"
	case []any, *[]any:
		return "list"
	case map[string]any, map[any]any:
		return "dict"
	case Missing:
		return "missing"
	case time.Duration:
		return "timespan"
	}

	return reflect.TypeOf(v).String()
}

// Normalize converts decoded YAML or JSON data to the canonical forms used
// by the evaluator: integers become int, floats float64, and maps with
// non-string keys map[string]any. Containers are converted recursively.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = Normalize(e)
		}

		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[keyString(k)] = Normalize(e)
		}

		return m
	case []any:
		for i, e := range t {
			t[i] = Normalize(e)
		}

		return t
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToInt(t)
	case float32:
		return float64(t)
	}

	if IsSequence(v) && reflect.TypeOf(v).Kind() == reflect.Slice {
		l, err := List(v)
		if err == nil {
			return Normalize(slices.Clone(l))
		}
	}

	return v
}
