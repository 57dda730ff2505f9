package index

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/ardnew/scopex/pkg"
)

// ErrPathSyntax is the sentinel matched by every [SyntaxError].
var ErrPathSyntax = pkg.NewError("invalid data index")

// SyntaxError reports a malformed index string.
type SyntaxError struct {
	Source string
	Col    int // 1-based rune column
	Msg    string
}

func (e *SyntaxError) Error() string {
	return ErrPathSyntax.Error() + " " + strconv.Quote(e.Source) +
		" at column " + strconv.Itoa(e.Col) + ": " + e.Msg
}

// Is matches [ErrPathSyntax].
func (e *SyntaxError) Is(target error) bool { return target == ErrPathSyntax }

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrPathSyntax.Error()),
		slog.String("source", e.Source),
		slog.Int("col", e.Col),
		slog.String("cause", e.Msg),
	)
}

type parsed struct {
	once sync.Once
	idx  *Index
	err  error
}

// cache maps source strings to *parsed.
var cache sync.Map //nolint:gochecknoglobals

// ClearCache discards every memoized parse result.
func ClearCache() { cache.Clear() }

// Parse parses a dotted index. Results, including errors, are memoized so
// repeated calls with the same string return the same *Index.
//
// A leading dot makes the index absolute. Tokens are separated by dots and
// empty tokens are skipped. A backslash makes the following character
// literal. A token that starts with a double quote extends to the matching
// unescaped quote and may contain dots and spaces. Unquoted tokens made only
// of ASCII digits become int tokens.
func Parse(s string) (*Index, error) {
	v, ok := cache.Load(s)
	if !ok {
		v, _ = cache.LoadOrStore(s, &parsed{})
	}

	p := v.(*parsed)
	p.once.Do(func() { p.idx, p.err = parse(s) })

	return p.idx, p.err
}

// MustParse is like [Parse] but panics on error.
func MustParse(s string) *Index {
	x, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return x
}

// Normalize returns the canonical rendering of s.
func Normalize(s string) (string, error) {
	x, err := Parse(s)
	if err != nil {
		return "", err
	}

	return x.String(), nil
}

// MakeAbsolute returns s with exactly one leading dot.
func MakeAbsolute(s string) string {
	return "." + strings.TrimLeft(s, ".")
}

// IsAbsolute reports whether s is an absolute index string.
func IsAbsolute(s string) bool { return strings.HasPrefix(s, ".") }

func parse(s string) (*Index, error) {
	var (
		tokens []any
		tok    strings.Builder
		inTok  bool // a token has started, even if it is still empty
		quoted bool
	)

	rs := []rune(s)

	flush := func() {
		if !inTok {
			return
		}

		t := tok.String()
		if !quoted && isDigits(t) {
			if n, err := strconv.Atoi(t); err == nil {
				tokens = append(tokens, n)
			} else {
				tokens = append(tokens, t)
			}
		} else {
			tokens = append(tokens, t)
		}

		tok.Reset()

		inTok, quoted = false, false
	}

	for i := 0; i < len(rs); i++ {
		c := rs[i]

		switch {
		case c == '\\':
			if i+1 >= len(rs) {
				return nil, &SyntaxError{Source: s, Col: i + 1, Msg: "trailing backslash"}
			}

			i++
			tok.WriteRune(rs[i])

			inTok = true

		case c == '.':
			flush()

		case c == '"' && !inTok:
			start := i
			closed := false

			for i++; i < len(rs); i++ {
				if rs[i] == '\\' && i+1 < len(rs) {
					i++
					tok.WriteRune(rs[i])

					continue
				}

				if rs[i] == '"' {
					closed = true

					break
				}

				tok.WriteRune(rs[i])
			}

			if !closed {
				return nil, &SyntaxError{Source: s, Col: start + 1, Msg: "unterminated quote"}
			}

			inTok, quoted = true, true

			flush()

		default:
			tok.WriteRune(c)

			inTok = true
		}
	}

	flush()

	if tokens == nil {
		tokens = []any{}
	}

	return newIndex(tokens, strings.HasPrefix(s, ".")), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// Join concatenates index parts. A part may be a string (parsed), an *Index,
// an int or a []any of tokens. An absolute part discards every part before
// it, so the rightmost absolute part becomes the origin.
func Join(parts ...any) (*Index, error) {
	var (
		tokens   []any
		absolute bool
	)

	for _, part := range parts {
		switch p := part.(type) {
		case nil:
		case string:
			x, err := Parse(p)
			if err != nil {
				return nil, err
			}

			if x.absolute {
				tokens, absolute = nil, true
			}

			tokens = append(tokens, x.tokens...)

		case *Index:
			if p.Absolute() {
				tokens, absolute = nil, true
			}

			tokens = append(tokens, p.Tokens()...)

		case []any:
			for _, t := range p {
				tokens = append(tokens, token(t))
			}

		default:
			tokens = append(tokens, token(p))
		}
	}

	if tokens == nil {
		tokens = []any{}
	}

	return newIndex(tokens, absolute), nil
}

// JoinString is like [Join] but returns the rendered index.
func JoinString(parts ...any) (string, error) {
	x, err := Join(parts...)
	if err != nil {
		return "", err
	}

	return x.String(), nil
}
