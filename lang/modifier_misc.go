package lang

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ardnew/mung"
	"github.com/dustin/go-humanize"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ohler55/ojg/jp"

	"github.com/ardnew/scopex/store"
	"github.com/ardnew/scopex/value"
)

func init() {
	register(map[string]Modifier{
		"uuid":     pureE(makeUUID),
		"filesize": pureE(filesize),
		"token":    pureE(randomToken),
		"timespan": pureE(timespan),
		"pathlist": pureE(pathlist),
		"jsonpath": pureE(jsonpath),
		"expr":     runExpr,
	})
}

var uuidNamespaces = map[string]uuid.UUID{ //nolint:gochecknoglobals
	"dns":  uuid.NameSpaceDNS,
	"url":  uuid.NameSpaceURL,
	"oid":  uuid.NameSpaceOID,
	"x500": uuid.NameSpaceX500,
}

// makeUUID accepts 1, 4, [3|5, name] or [3|5, nstype, name].
func makeUUID(v any) (any, error) {
	version, name, nstype := v, "", "url"

	if l, err := value.List(v); err == nil && isSeq(v) {
		switch len(l) {
		case 2: //nolint:mnd
			version, name = l[0], value.Str(l[1])
		case 3: //nolint:mnd
			version, nstype, name = l[0], value.Str(l[1]), value.Str(l[2])
		default:
			return nil, fmt.Errorf("uuid: modifier requires 1-3 values")
		}
	}

	ns, ok := uuidNamespaces[nstype]
	if !ok {
		ns = uuid.NameSpaceURL
	}

	n, _ := value.AsInt(version)

	switch n {
	case 1:
		u, err := uuid.NewUUID()
		if err != nil {
			return nil, err
		}

		return u.String(), nil
	case 3: //nolint:mnd
		return uuid.NewMD5(ns, []byte(name)).String(), nil
	case 4: //nolint:mnd
		return uuid.NewString(), nil
	case 5: //nolint:mnd
		return uuid.NewSHA1(ns, []byte(name)).String(), nil
	}

	return nil, fmt.Errorf("uuid: modifier uuid type must be 1, 3, 4, or 5")
}

var sizeSuffixes = []string{"KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"} //nolint:gochecknoglobals

// filesize renders a byte count with binary units, e.g. "1.0 KB".
func filesize(v any) (any, error) {
	if !value.Truth(v) {
		v = 0
	}

	size, err := value.ToInt(v)
	if err != nil {
		return nil, fmt.Errorf("filesize requires a numeric value, not %s", value.Repr(v))
	}

	const base = 1024.0

	switch {
	case size == 1:
		return "1 byte", nil
	case size < base:
		return humanize.Comma(int64(size)) + " bytes", nil
	}

	i, unit := 0, base*base
	for ; i < len(sizeSuffixes)-1 && float64(size) >= unit; i++ {
		unit *= base
	}

	return humanize.FormatFloat("#,###.#", base*float64(size)/unit) + " " + sizeSuffixes[i], nil
}

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomToken returns a random lowercase alphanumeric string of length v.
func randomToken(v any) (any, error) {
	size, ok := value.AsInt(v)
	if !ok {
		return nil, fmt.Errorf("token: modifier requires an integer")
	}

	if size < 1 {
		return nil, fmt.Errorf("token: modifier requires a size >= 1")
	}

	var sb strings.Builder

	limit := big.NewInt(int64(len(tokenAlphabet)))
	for range size {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return nil, err
		}

		sb.WriteByte(tokenAlphabet[n.Int64()])
	}

	return sb.String(), nil
}

// timespan converts seconds or a span like "2h" or "1d" to a duration.
func timespan(v any) (any, error) {
	switch t := v.(type) {
	case time.Duration:
		return t, nil
	case string:
		d, err := parseTimespan(strings.TrimSpace(t))
		if err != nil {
			return nil, fmt.Errorf("timespan: invalid span %s", value.Repr(v))
		}

		return d, nil
	}

	f, err := value.ToFloat(v)
	if err != nil {
		return nil, err
	}

	return time.Duration(f * float64(time.Second)), nil
}

// pathlist prefixes a PATH-style list: [base, prefix...].
func pathlist(v any) (any, error) {
	l, err := seq("pathlist", v)
	if err != nil {
		return nil, err
	}

	if _, isStr := v.(string); isStr || len(l) == 0 {
		return value.Str(v), nil
	}

	prefix := make([]string, 0, len(l)-1)
	for _, p := range l[1:] {
		prefix = append(prefix, value.Str(p))
	}

	return mung.Make(
		mung.WithSubjectItems(value.Str(l[0])),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String(), nil
}

// jsonQuery is the callable returned by jsonpath:.
type jsonQuery struct {
	expr jp.Expr
}

func (q *jsonQuery) Call(data any) (any, error) { return q.expr.Get(Plain(data)), nil }

func (q *jsonQuery) String() string { return q.expr.String() }

// jsonpath returns a query for "$.path", or the results of [data, "$.path"].
func jsonpath(v any) (any, error) {
	if s, ok := v.(string); ok {
		x, err := jp.ParseString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid jsonpath '%s': %w", s, err)
		}

		return &jsonQuery{expr: x}, nil
	}

	data, path, err := pair("jsonpath", `"$.path" or [<data>, "$.path"]`, v)
	if err != nil {
		return nil, err
	}

	q, err := jsonpath(value.Str(path))
	if err != nil {
		return nil, err
	}

	return q.(*jsonQuery).Call(data) //nolint:forcetypeassert
}

const exprCacheSize = 256

var exprPrograms = func() *lru.Cache[string, *vm.Program] { //nolint:gochecknoglobals
	c, _ := lru.New[string, *vm.Program](exprCacheSize)

	return c
}()

// runExpr runs an expr-lang program against the captured scope, or
// [program, env] against env.
func runExpr(c *store.Context, v any) (any, error) {
	src, env := v, any(nil)
	if l, err := value.List(v); err == nil && isSeq(v) && len(l) == 2 { //nolint:mnd
		src, env = l[0], l[1]
	}

	if env == nil {
		env = c.CaptureScope()
	}

	source := value.Str(src)

	program, ok := exprPrograms.Get(source)
	if !ok {
		var err error
		if program, err = expr.Compile(source, expr.AllowUndefinedVariables()); err != nil {
			return nil, fmt.Errorf("expr: %w", err)
		}

		exprPrograms.Add(source, program)
	}

	out, err := expr.Run(program, Plain(env))
	if err != nil {
		return nil, fmt.Errorf("expr: %w", err)
	}

	return value.Normalize(out), nil
}
