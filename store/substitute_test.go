package store

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

var errBoom = errors.New("boom")

// pathEvaluator evaluates an expression as a plain index.
var pathEvaluator = EvaluatorFunc(func(c *Context, src string) (any, error) {
	if src == "boom" {
		return nil, errBoom
	}

	return c.Get(strings.TrimSpace(src))
})

func TestSubstitute(t *testing.T) {
	c := New(map[string]any{"name": "World", "n": 3}, WithEvaluator(pathEvaluator))

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"Hello, ${name}!", "Hello, World!"},
		{"${n}${n}", "33"},
		{"${ name } x ${missing}", "World x "},
	}

	for _, tt := range tests {
		got, err := c.Substitute(tt.in)
		if err != nil {
			t.Fatalf("Substitute(%q) error = %v", tt.in, err)
		}

		if got != tt.want {
			t.Errorf("Substitute(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSubstituteError(t *testing.T) {
	c := New(nil, WithEvaluator(pathEvaluator))

	_, err := c.Substitute("a ${boom} b")
	if !errors.Is(err, ErrSubstitution) || !errors.Is(err, errBoom) {
		t.Fatalf("Substitute() = %v", err)
	}

	var se *SubstitutionError
	if !errors.As(err, &se) {
		t.Fatalf("error type %T", err)
	}

	if se.Start != 4 || se.End != 8 || se.Expr != "boom" {
		t.Errorf("SubstitutionError = %+v", se)
	}

	if want := "substitution failed for ${boom} (boom)"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestSubstituteFunc(t *testing.T) {
	c := New(map[string]any{"n": 3}, WithEvaluator(pathEvaluator))

	got, err := c.SubstituteFunc("<${n}>", func(v any) string { return "#" })
	if err != nil || got != "<#>" {
		t.Errorf("SubstituteFunc = %q, %v", got, err)
	}
}

func TestSubstitutePattern(t *testing.T) {
	c := New(map[string]any{"n": 3},
		WithEvaluator(pathEvaluator),
		WithSubstitutePattern(`\{\{(.*?)\}\}`))

	got, err := c.Substitute("{{n}} ${n}")
	if err != nil || got != "3 ${n}" {
		t.Errorf("Substitute = %q, %v", got, err)
	}

	if got := c.ExtractExpressions("{{b}} {{a}} {{b}}"); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("ExtractExpressions = %v", got)
	}
}

func TestEvalWithoutEvaluator(t *testing.T) {
	c := New(nil)

	if _, err := c.Eval("1"); !errors.Is(err, ErrNoEvaluator) {
		t.Errorf("Eval() = %v, want ErrNoEvaluator", err)
	}

	if got, err := c.Substitute("no expressions"); err != nil || got != "no expressions" {
		t.Errorf("Substitute = %q, %v", got, err)
	}
}

func TestSubEvalAndGetSub(t *testing.T) {
	c := New(map[string]any{
		"which": "b",
		"a":     1,
		"b":     2,
	}, WithEvaluator(pathEvaluator))

	if got, err := c.SubEval("${which}"); err != nil || got != 2 {
		t.Errorf("SubEval = %v, %v", got, err)
	}

	if got, err := c.GetSub("${which}"); err != nil || got != 2 {
		t.Errorf("GetSub = %v, %v", got, err)
	}
}

func TestExtractExpressions(t *testing.T) {
	got := ExtractExpressions("${b} and ${a} and ${b}")
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("ExtractExpressions = %v", got)
	}

	if got := ExtractExpressions("none"); len(got) != 0 {
		t.Errorf("ExtractExpressions(none) = %v", got)
	}
}

func BenchmarkGet(b *testing.B) {
	c := New(sample())
	if err := c.PushFrame("a"); err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		if _, err := c.Get("c.d"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSubstitute(b *testing.B) {
	c := New(map[string]any{"name": "World"}, WithEvaluator(pathEvaluator))

	for b.Loop() {
		if _, err := c.Substitute("Hello, ${name}!"); err != nil {
			b.Fatal(err)
		}
	}
}

func TestSubstitutePatternWithoutGroup(t *testing.T) {
	atEvaluator := EvaluatorFunc(func(c *Context, src string) (any, error) {
		return c.Get(strings.TrimPrefix(src, "@"))
	})

	c := New(map[string]any{"n": "N", "m": "M"},
		WithEvaluator(atEvaluator), WithSubstitutePattern(`@\w+`))

	got, err := c.Substitute("x @n @m @n")
	if err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}

	if want := "x N M N"; got != want {
		t.Errorf("Substitute() = %q, want %q", got, want)
	}

	if got, want := c.ExtractExpressions("@n @m @n"), []string{"@m", "@n"}; !slices.Equal(got, want) {
		t.Errorf("ExtractExpressions() = %q, want %q", got, want)
	}
}
