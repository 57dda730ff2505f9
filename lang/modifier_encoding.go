package lang

import (
	"crypto/md5" //nolint:gosec
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/goccy/go-yaml"
	"github.com/ohler55/ojg/oj"

	"github.com/ardnew/scopex/value"
)

func init() {
	register(map[string]Modifier{
		"json":         pure(func(v any) any { return oj.JSON(Plain(v), &oj.Options{Sort: true}) }),
		"prettyjson":   pure(func(v any) any { return oj.JSON(Plain(v), &oj.Options{Sort: true, Indent: 4}) }),
		"parsejson":    textual(parsejson),
		"yaml":         pureE(toYAML),
		"base64encode": textual(func(s string) any { return base64.StdEncoding.EncodeToString([]byte(s)) }),
		"base64decode": pureE(base64decode),
		"md5":          pure(md5sum),
		"urlencode":    pureE(urlencode),
		"urlquote":     textual(func(s string) any { return url.PathEscape(s) }),
		"urlunquote":   textual(urlunquote),
	})
}

// Plain converts v to JSON-compatible data: ranges become lists, Missing
// becomes null, and other unknown values their text.
func Plain(v any) any {
	switch t := v.(type) {
	case nil, bool, int, float64, string:
		return v
	case value.Missing:
		return nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Plain(e)
		}

		return out
	}

	if n, ok := value.AsNumber(v); ok {
		return n
	}

	if value.IsMapping(v) {
		out := map[string]any{}
		for _, k := range value.Keys(v) {
			e, _ := value.Lookup(v, k)
			out[value.Str(k)] = Plain(e)
		}

		return out
	}

	if isSeq(v) {
		l, _ := value.List(v)

		out := make([]any, len(l))
		for i, e := range l {
			out[i] = Plain(e)
		}

		return out
	}

	return value.Str(v)
}

func parsejson(s string) any {
	v, err := oj.ParseString(s)
	if err != nil {
		return nil
	}

	return value.Normalize(v)
}

func toYAML(v any) (any, error) {
	b, err := yaml.Marshal(Plain(v))
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

func base64decode(v any) (any, error) {
	b, err := base64.StdEncoding.DecodeString(value.Str(v))
	if err != nil {
		return nil, fmt.Errorf("base64decode: %w", err)
	}

	return string(b), nil
}

func md5sum(v any) any {
	var b []byte

	switch t := v.(type) {
	case []byte:
		b = t
	default:
		b = []byte(value.Str(v))
	}

	sum := md5.Sum(b) //nolint:gosec

	return hex.EncodeToString(sum[:])
}

// urlencode renders a mapping as a query string. List values repeat the key.
func urlencode(v any) (any, error) {
	if !value.IsMapping(v) {
		return nil, fmt.Errorf("can't urlencode %s", value.Repr(v))
	}

	q := url.Values{}

	for _, k := range value.Keys(v) {
		e, _ := value.Lookup(v, k)

		if l, err := value.List(e); err == nil && isSeq(e) {
			for _, x := range l {
				q.Add(value.Str(k), value.Str(x))
			}

			continue
		}

		q.Add(value.Str(k), value.Str(e))
	}

	return q.Encode(), nil
}

func urlunquote(s string) any {
	u, err := url.PathUnescape(s)
	if err != nil {
		return s
	}

	return u
}
