package lang

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/ardnew/scopex/value"
)

// formatSpec is a parsed format specification:
//
//	[[fill]align][sign][#][0][width][,|_][.precision][type]
type formatSpec struct {
	fill      rune
	align     byte
	sign      byte
	alternate bool
	width     int
	grouping  byte
	precision int // -1 if absent
	verb      byte
}

func parseFormatSpec(spec string) (formatSpec, error) {
	f := formatSpec{fill: ' ', precision: -1}
	s := spec

	isAlign := func(b byte) bool { return b == '<' || b == '>' || b == '^' || b == '=' }

	if r, size := utf8.DecodeRuneInString(s); size > 0 && len(s) > size && isAlign(s[size]) {
		f.fill, f.align = r, s[size]
		s = s[size+1:]
	} else if s != "" && isAlign(s[0]) {
		f.align = s[0]
		s = s[1:]
	}

	if s != "" && (s[0] == '+' || s[0] == '-' || s[0] == ' ') {
		f.sign = s[0]
		s = s[1:]
	}

	if s != "" && s[0] == '#' {
		f.alternate = true
		s = s[1:]
	}

	if s != "" && s[0] == '0' {
		if f.align == 0 {
			f.fill, f.align = '0', '='
		}

		s = s[1:]
	}

	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}

	if n > 0 {
		f.width, _ = strconv.Atoi(s[:n])
		s = s[n:]
	}

	if s != "" && (s[0] == ',' || s[0] == '_') {
		f.grouping = s[0]
		s = s[1:]
	}

	if s != "" && s[0] == '.' {
		n = 1
		for n < len(s) && isDigit(s[n]) {
			n++
		}

		if n == 1 {
			return f, fmt.Errorf("format specifier missing precision in %q", spec)
		}

		f.precision, _ = strconv.Atoi(s[1:n])
		s = s[n:]
	}

	if len(s) > 1 {
		return f, fmt.Errorf("invalid format specifier %q", spec)
	}

	if s != "" {
		f.verb = s[0]
	}

	return f, nil
}

// format implements value::"spec".
func format(v, spec any) (any, error) {
	s, ok := spec.(string)
	if !ok {
		return nil, fmt.Errorf("format spec must be a string, not %s", value.TypeName(spec))
	}

	f, err := parseFormatSpec(s)
	if err != nil {
		return nil, err
	}

	switch t := v.(type) {
	case bool:
		if f.verb == 0 || f.verb == 's' {
			return f.pad(value.Str(t), "", false), nil
		}

		return f.number(boolInt(t))
	case time.Duration, string, nil, value.Missing:
		return f.text(value.Str(v))
	}

	if n, ok := value.AsNumber(v); ok {
		return f.number(n)
	}

	return f.text(value.Str(v))
}

func boolInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

func (f formatSpec) text(s string) (string, error) {
	if f.verb != 0 && f.verb != 's' {
		return "", fmt.Errorf("unknown format code '%c' for object of type 'str'", f.verb)
	}

	if f.sign != 0 {
		return "", fmt.Errorf("sign not allowed in string format specifier")
	}

	if f.precision >= 0 && utf8.RuneCountInString(s) > f.precision {
		s = string([]rune(s)[:f.precision])
	}

	return f.pad(s, "", false), nil
}

func (f formatSpec) number(n any) (string, error) {
	if i, ok := n.(int); ok {
		switch f.verb {
		case 0, 'd', 'n', 'b', 'o', 'x', 'X', 'c':
			return f.integer(i)
		}

		return f.float(float64(i))
	}

	switch f.verb {
	case 'd', 'n', 'b', 'o', 'x', 'X', 'c':
		return "", fmt.Errorf("unknown format code '%c' for object of type 'float'", f.verb)
	}

	return f.float(n.(float64)) //nolint:forcetypeassert
}

func (f formatSpec) integer(i int) (string, error) {
	neg := i < 0
	u := uint64(i)

	if neg {
		u = uint64(-i)
	}

	var body, prefix string

	switch f.verb {
	case 'c':
		return f.pad(string(rune(i)), "", false), nil
	case 'b':
		body, prefix = strconv.FormatUint(u, 2), "0b"
	case 'o':
		body, prefix = strconv.FormatUint(u, 8), "0o"
	case 'x':
		body, prefix = strconv.FormatUint(u, 16), "0x"
	case 'X':
		body, prefix = strings.ToUpper(strconv.FormatUint(u, 16)), "0X"
	default:
		body = strconv.FormatUint(u, 10)
		if f.grouping != 0 {
			body = f.group(humanize.Comma(int64(u))) //nolint:gosec
		}
	}

	if !f.alternate {
		prefix = ""
	}

	return f.pad(body, f.signOf(neg)+prefix, true), nil
}

func (f formatSpec) float(x float64) (string, error) {
	neg := math.Signbit(x) && !math.IsNaN(x)
	x = math.Abs(x)

	prec := f.precision

	var body string

	switch f.verb {
	case 'e', 'E':
		if prec < 0 {
			prec = 6
		}

		body = strconv.FormatFloat(x, 'e', prec, 64)
	case 'f', 'F':
		if prec < 0 {
			prec = 6
		}

		body = f.fixed(x, prec)
	case '%':
		if prec < 0 {
			prec = 6
		}

		body = f.fixed(x*100, prec) + "%"
	case 'g', 'G':
		if prec < 0 {
			prec = 6
		}

		body = strconv.FormatFloat(x, 'g', max(prec, 1), 64)
	default:
		if prec < 0 {
			body = value.FormatFloat(x)
		} else {
			body = strconv.FormatFloat(x, 'g', max(prec, 1), 64)
		}
	}

	switch {
	case math.IsInf(x, 0):
		body = "inf"
	case math.IsNaN(x):
		body = "nan"
	}

	if f.verb == 'E' || f.verb == 'G' || f.verb == 'F' {
		body = strings.ToUpper(body)
	}

	return f.pad(body, f.signOf(neg), true), nil
}

func (f formatSpec) fixed(x float64, prec int) string {
	if f.grouping == 0 || math.IsInf(x, 0) || math.IsNaN(x) {
		return strconv.FormatFloat(x, 'f', prec, 64)
	}

	return f.group(humanize.FormatFloat("#,###."+strings.Repeat("#", prec), x))
}

func (f formatSpec) group(s string) string {
	if f.grouping == '_' {
		return strings.ReplaceAll(s, ",", "_")
	}

	return s
}

func (f formatSpec) signOf(neg bool) string {
	switch {
	case neg:
		return "-"
	case f.sign == '+':
		return "+"
	case f.sign == ' ':
		return " "
	}

	return ""
}

// pad aligns body, with sign and prefix ahead of any '=' padding.
func (f formatSpec) pad(body, prefix string, numeric bool) string {
	n := f.width - utf8.RuneCountInString(prefix) - utf8.RuneCountInString(body)
	if n <= 0 {
		return prefix + body
	}

	align := f.align
	if align == 0 {
		align = '<'
		if numeric {
			align = '>'
		}
	}

	fill := string(f.fill)

	switch align {
	case '>':
		return strings.Repeat(fill, n) + prefix + body
	case '^':
		left := n / 2 //nolint:mnd

		return strings.Repeat(fill, left) + prefix + body + strings.Repeat(fill, n-left)
	case '=':
		return prefix + strings.Repeat(fill, n) + body
	default:
		return prefix + body + strings.Repeat(fill, n)
	}
}
