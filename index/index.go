package index

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"
)

// Index is a parsed data index. The zero value is the empty relative index.
type Index struct {
	tokens   []any
	absolute bool
	str      string
}

// Empty is the empty relative index.
var Empty = &Index{} //nolint:gochecknoglobals

// Root is the empty absolute index, which addresses the store root.
var Root = &Index{absolute: true, str: "."} //nolint:gochecknoglobals

// New creates an Index from tokens. Each token must be a string or an int;
// other values are converted with [strconv] or fmt-style formatting.
func New(absolute bool, tokens ...any) *Index {
	toks := make([]any, 0, len(tokens))
	for _, t := range tokens {
		toks = append(toks, token(t))
	}

	return newIndex(toks, absolute)
}

func newIndex(tokens []any, absolute bool) *Index {
	return &Index{
		tokens:   tokens,
		absolute: absolute,
		str:      Build(tokens, absolute),
	}
}

func token(t any) any {
	switch v := t.(type) {
	case string:
		return v
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case uint:
		return int(v)
	default:
		return Stringify(v)
	}
}

// Len returns the number of tokens.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}

	return len(x.tokens)
}

// Absolute reports whether x resolves from the root.
func (x *Index) Absolute() bool { return x != nil && x.absolute }

// Token returns the i'th token.
func (x *Index) Token(i int) any { return x.tokens[i] }

// Tokens returns a copy of the token sequence.
func (x *Index) Tokens() []any {
	if x == nil {
		return nil
	}

	return slices.Clone(x.tokens)
}

// All iterates over the tokens.
func (x *Index) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, t := range x.tokens {
			if !yield(t) {
				return
			}
		}
	}
}

// Head returns the first token and the remaining tokens.
// It panics if x is empty.
func (x *Index) Head() (any, []any) {
	return x.tokens[0], x.tokens[1:]
}

// Last returns the final token, or nil if x is empty.
func (x *Index) Last() any {
	if x.Len() == 0 {
		return nil
	}

	return x.tokens[len(x.tokens)-1]
}

// Parent returns x without its final token. The parent of an empty index is
// the index itself.
func (x *Index) Parent() *Index {
	if x.Len() == 0 {
		return x
	}

	return newIndex(x.tokens[:len(x.tokens)-1:len(x.tokens)-1], x.absolute)
}

// Child returns x extended by tokens.
func (x *Index) Child(tokens ...any) *Index {
	toks := slices.Clone(x.Tokens())
	for _, t := range tokens {
		toks = append(toks, token(t))
	}

	return newIndex(toks, x.Absolute())
}

// Relative returns x with the absolute flag cleared.
func (x *Index) Relative() *Index {
	if !x.Absolute() {
		return x
	}

	return newIndex(x.tokens, false)
}

// Iter yields each token with the relative index string accumulated so far,
// so `a.b.c` yields ("a","a"), ("b","a.b"), ("c","a.b.c").
func (x *Index) Iter() iter.Seq2[any, string] {
	return func(yield func(any, string) bool) {
		for i, t := range x.tokens {
			if !yield(t, Build(x.tokens[:i+1], false)) {
				return
			}
		}
	}
}

// String renders x in canonical form.
func (x *Index) String() string {
	if x == nil {
		return ""
	}

	return x.str
}

// Equal reports whether x and y have the same tokens and absolute flag.
func (x *Index) Equal(y *Index) bool {
	if x.Len() != y.Len() || x.Absolute() != y.Absolute() {
		return false
	}

	for i := range x.Len() {
		if x.tokens[i] != y.tokens[i] {
			return false
		}
	}

	return true
}

// EqualTokens reports whether the token sequence of x equals tokens,
// ignoring the absolute flag.
func (x *Index) EqualTokens(tokens ...any) bool {
	if x.Len() != len(tokens) {
		return false
	}

	for i, t := range tokens {
		if x.tokens[i] != token(t) {
			return false
		}
	}

	return true
}

// Build renders tokens as an index string. Int tokens render in decimal.
// String tokens are double-quoted, with embedded quotes and backslashes
// escaped, when they would not otherwise parse back to the same string:
// when empty, all digits, starting with a quote, or containing a dot, space
// or backslash.
func Build(tokens []any, absolute bool) string {
	var sb strings.Builder

	if absolute {
		sb.WriteByte('.')
	}

	for i, t := range tokens {
		if i > 0 {
			sb.WriteByte('.')
		}

		switch v := t.(type) {
		case int:
			sb.WriteString(strconv.Itoa(v))
		case string:
			writeToken(&sb, v)
		default:
			writeToken(&sb, Stringify(v))
		}
	}

	return sb.String()
}

func writeToken(sb *strings.Builder, s string) {
	if s != "" && !strings.ContainsAny(s, ". \\") && s[0] != '"' && !isDigits(s) {
		sb.WriteString(s)

		return
	}

	sb.WriteByte('"')

	for _, r := range s {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}

		sb.WriteRune(r)
	}

	sb.WriteByte('"')
}

// Escape escapes the dots and backslashes of s so that it parses as a single
// unquoted key.
func Escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `.`, `\.`)

	return r.Replace(s)
}

// Stringify renders a non-string token for use in an index.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case bool:
		if t {
			return "True"
		}

		return "False"
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case interface{ String() string }:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
