package lang

import (
	"cmp"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ardnew/scopex/value"
)

func init() {
	register(map[string]Modifier{
		"lower":          textual(func(s string) any { return strings.ToLower(s) }),
		"upper":          textual(func(s string) any { return strings.ToUpper(s) }),
		"title":          textual(title),
		"capitalize":     textual(capitalize),
		"swapcase":       textual(swapcase),
		"strip":          textual(func(s string) any { return strings.TrimSpace(s) }),
		"lstrip":         textual(func(s string) any { return strings.TrimLeftFunc(s, unicode.IsSpace) }),
		"rstrip":         textual(func(s string) any { return strings.TrimRightFunc(s, unicode.IsSpace) }),
		"stripall":       pureE(stripall),
		"split":          pure(func(v any) any { return toAny(split(v)) }),
		"splitfirst":     pure(splitfirst),
		"splitlast":      pure(splitlast),
		"splitlines":     textual(splitlines),
		"commasplit":     textual(commasplit),
		"partition":      pure(func(v any) any { return partition(v, strings.Cut) }),
		"rpartition":     pure(func(v any) any { return partition(v, cutLast) }),
		"quote":          textual(func(s string) any { return `"` + s + `"` }),
		"squote":         textual(func(s string) any { return "'" + s + "'" }),
		"slug":           textual(slug),
		"trailingslash":  textual(trailingslash),
		"trim":           pureE(trim),
		"replace":        pureE(replace),
		"basename":       textual(func(s string) any { return path.Base(strings.TrimSuffix(s, "/")) }),
		"dirname":        textual(func(s string) any { return path.Dir(s) }),
		"ext":            textual(func(s string) any { return strings.TrimPrefix(path.Ext(s), ".") }),
		"join":           pureE(joiner("join", "", false)),
		"joinspace":      pureE(joiner("joinspace", " ", true)),
		"commalist":      pureE(joiner("commalist", ",", false)),
		"commaspacelist": pureE(joiner("commaspacelist", ", ", false)),
		"prettylist":     pureE(prettylist),
		"joinwith":       pureE(joinwith),
	})
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, e := range s {
		out[i] = e
	}

	return out
}

var titleCaser = cases.Title(language.Und, cases.NoLower) //nolint:gochecknoglobals

func title(s string) any {
	return titleCaser.String(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}

func capitalize(s string) any {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}

	return cases.Upper(language.Und).String(string(r)) + strings.ToLower(s[size:])
}

func swapcase(s string) any {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsUpper(r):
			return unicode.ToLower(r)
		case unicode.IsLower(r):
			return unicode.ToUpper(r)
		}

		return r
	}, s)
}

func stripall(v any) (any, error) {
	l, err := seq("stripall", v)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(l))
	for i, e := range l {
		out[i] = strings.TrimSpace(value.Str(e))
	}

	return out, nil
}

// split splits text, or [text, sep], on sep or on runs of whitespace.
func split(v any) []string {
	if l, ok := v.([]any); ok && len(l) == 2 { //nolint:mnd
		if l[1] != nil {
			return strings.Split(value.Str(l[0]), value.Str(l[1]))
		}

		v = l[0]
	}

	return strings.Fields(value.Str(v))
}

func splitfirst(v any) any {
	if parts := split(v); len(parts) > 0 {
		return parts[0]
	}

	return ""
}

func splitlast(v any) any {
	if parts := split(v); len(parts) > 0 {
		return parts[len(parts)-1]
	}

	return ""
}

func splitlines(s string) any {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")

	if s == "" {
		return []any{}
	}

	return toAny(strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }))
}

func commasplit(s string) any {
	return toAny(slices.DeleteFunc(strings.Split(s, ","), func(e string) bool { return e == "" }))
}

func cutLast(s, sep string) (string, string, bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return "", s, false
	}

	return s[:i], s[i+len(sep):], true
}

// partition splits text, or [text, sep], around the first (or last) sep,
// which defaults to a space.
func partition(v any, cut func(s, sep string) (string, string, bool)) any {
	s, sep := value.Str(v), " "
	if l, ok := v.([]any); ok && len(l) == 2 { //nolint:mnd
		s, sep = value.Str(l[0]), value.Str(l[1])
	}

	before, after, found := cut(s, sep)
	if !found {
		return []any{before, "", after}
	}

	return []any{before, sep, after}
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9-]+`) //nolint:gochecknoglobals

func slug(s string) any {
	k := slugInvalid.ReplaceAllString(strcase.ToKebab(s), "")

	return strings.Trim(k, "-")
}

func trailingslash(s string) any {
	if strings.HasSuffix(s, "/") {
		return s
	}

	return s + "/"
}

// trim truncates [text, maxlength].
func trim(v any) (any, error) {
	text, limit, err := pair("trim", "[<string>, <max length>]", v)
	if err != nil {
		return nil, err
	}

	n, ok := value.AsInt(limit)
	if !ok {
		return text, nil
	}

	if rs := []rune(value.Str(text)); len(rs) > n {
		return string(rs[:max(n, 0)]), nil
	}

	return value.Str(text), nil
}

// replace applies [text, {old: new, ...}], longest keys first.
func replace(v any) (any, error) {
	text, mapping, err := pair("replace", "[<text>, <replace dict>]", v)
	if err != nil {
		return nil, err
	}

	if !value.IsMapping(mapping) {
		return nil, fmt.Errorf("replace: requires a dict of replacements, not %s", value.TypeName(mapping))
	}

	keys := value.Keys(mapping)
	slices.SortFunc(keys, func(a, b any) int {
		return cmp.Compare(len(value.Str(b)), len(value.Str(a)))
	})

	args := make([]string, 0, 2*len(keys)) //nolint:mnd
	for _, k := range keys {
		r, _ := value.Lookup(mapping, k)
		args = append(args, value.Str(k), value.Str(r))
	}

	return strings.NewReplacer(args...).Replace(value.Str(text)), nil
}

func joiner(name, sep string, skipEmpty bool) func(any) (any, error) {
	return func(v any) (any, error) {
		l, err := seq(name, v)
		if err != nil {
			return nil, err
		}

		parts := make([]string, 0, len(l))
		for _, e := range l {
			if skipEmpty && !value.Truth(e) {
				continue
			}

			parts = append(parts, value.Str(e))
		}

		return strings.Join(parts, sep), nil
	}
}

func prettylist(v any) (any, error) {
	l, err := seq("prettylist", v)
	if err != nil {
		return nil, err
	}

	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = "'" + value.Str(e) + "'"
	}

	return strings.Join(parts, ", "), nil
}

func joinwith(v any) (any, error) {
	items, sep, err := pair("joinwith", "two values, e.g, joinwith:[filenames, ', ']", v)
	if err != nil {
		return nil, err
	}

	return joiner("joinwith", value.Str(sep), false)(items)
}
