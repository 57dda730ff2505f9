package value

import (
	"errors"
	"slices"
	"testing"
	"time"
)

type page struct {
	Title string `yaml:"title"`
	Views int
	hidden string
}

func TestMissing(t *testing.T) {
	m := NewMissing("foo.bar")

	if Truth(m) {
		t.Error("Missing must be falsy")
	}

	if Str(m) != "" {
		t.Errorf("Str(Missing) = %q", Str(m))
	}

	if got := m.GoString(); got != "<missing 'foo.bar'>" {
		t.Errorf("GoString = %q", got)
	}

	if v, ok := Lookup(m, "anything"); !ok || v != m {
		t.Errorf("indexing Missing = %v %v, want itself", v, ok)
	}

	if n, _ := Len(m); n != 0 {
		t.Errorf("Len(Missing) = %d", n)
	}

	if ok, _ := Contains(m, "x"); ok {
		t.Error("Missing contains nothing")
	}

	if !IsMissing(m) || IsMissing(nil) {
		t.Error("IsMissing misclassified")
	}
}

func TestLookup(t *testing.T) {
	data := map[string]any{
		"list":  []any{"a", "b", "c"},
		"map":   map[any]any{1: "one", "two": 2},
		"str":   "héllo",
		"page":  &page{Title: "Home", Views: 3},
		"typed": map[string]int{"x": 1},
		"0":     "zero",
	}

	tests := []struct {
		obj  any
		key  any
		want any
		ok   bool
	}{
		{data, "str", "héllo", true},
		{data, 0, "zero", true},
		{data, "nope", nil, false},
		{data["list"], 1, "b", true},
		{data["list"], -1, "c", true},
		{data["list"], "2", "c", true},
		{data["list"], 3, nil, false},
		{data["map"], 1, "one", true},
		{data["map"], "1", "one", true},
		{data["map"], "two", 2, true},
		{data["str"], 1, "é", true},
		{data["page"], "Title", "Home", true},
		{data["page"], "title", "Home", true},
		{data["page"], "views", 3, true},
		{data["page"], "hidden", nil, false},
		{data["typed"], "x", 1, true},
		{nil, "x", nil, false},
	}

	for _, tt := range tests {
		got, ok := Lookup(tt.obj, tt.key)
		if ok != tt.ok || (ok && !Equal(got, tt.want)) {
			t.Errorf("Lookup(%T, %v) = %v %v, want %v %v", tt.obj, tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAssignDelete(t *testing.T) {
	m := map[string]any{}
	if err := Assign(m, 5, "five"); err != nil || m["5"] != "five" {
		t.Fatalf("Assign map: %v %v", err, m)
	}

	l := []any{1, 2}
	if err := Assign(l, -1, 9); err != nil || l[1] != 9 {
		t.Fatalf("Assign slice: %v %v", err, l)
	}

	if err := Assign(l, 5, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}

	stack := &[]any{}
	if err := Assign(stack, 0, "x"); err != nil || len(*stack) != 1 {
		t.Fatalf("Assign append: %v %v", err, *stack)
	}

	if err := Delete(stack, 0); err != nil || len(*stack) != 0 {
		t.Fatalf("Delete from stack: %v %v", err, *stack)
	}

	p := &page{}
	if err := Assign(p, "title", "About"); err != nil || p.Title != "About" {
		t.Fatalf("Assign struct field: %v %+v", err, p)
	}

	if err := Assign(p, "Views", "many"); !errors.Is(err, ErrNotAssignable) {
		t.Errorf("expected ErrNotAssignable for mistyped field, got %v", err)
	}

	if err := Assign("str", 0, "x"); !errors.Is(err, ErrNotAssignable) {
		t.Errorf("expected ErrNotAssignable for string, got %v", err)
	}

	if err := Delete(m, "5"); err != nil || len(m) != 0 {
		t.Errorf("Delete map: %v %v", err, m)
	}

	if err := Delete(42, "x"); !errors.Is(err, ErrNotDeletable) {
		t.Errorf("expected ErrNotDeletable, got %v", err)
	}
}

func TestKeysValuesItems(t *testing.T) {
	m := map[string]any{"b": 2, "a": 1, "c": 3}

	if got := Keys(m); !slices.Equal(got, []any{"a", "b", "c"}) {
		t.Errorf("Keys = %v", got)
	}

	if got := Values(m); !slices.Equal(got, []any{1, 2, 3}) {
		t.Errorf("Values = %v", got)
	}

	items := Items(m)
	if len(items) != 3 || !Equal(items[0], []any{"a", 1}) {
		t.Errorf("Items = %v", items)
	}

	if got := Keys([]any{"x", "y"}); !slices.Equal(got, []any{0, 1}) {
		t.Errorf("Keys(list) = %v", got)
	}
}

func TestTruth(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false}, {false, false}, {true, true},
		{0, false}, {1, true}, {0.0, false}, {-2.5, true},
		{"", false}, {"x", true},
		{[]any{}, false}, {[]any{0}, true},
		{map[string]any{}, false}, {map[string]any{"a": 1}, true},
		{int64(0), false}, {uint8(3), true},
		{time.Duration(0), false},
		{&page{}, true},
		{[]string{}, false},
	}

	for _, tt := range tests {
		if got := Truth(tt.v); got != tt.want {
			t.Errorf("Truth(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestStrRepr(t *testing.T) {
	tests := []struct {
		v    any
		str  string
		repr string
	}{
		{nil, "None", "None"},
		{true, "True", "yes"},
		{false, "False", "no"},
		{3, "3", "3"},
		{2.0, "2.0", "2.0"},
		{0.5, "0.5", "0.5"},
		{1234567.0, "1234567.0", "1234567.0"},
		{1e20, "1e+20", "1e+20"},
		{"it's", "it's", `'it\'s'`},
		{"a\nb", "a\nb", `'a\nb'`},
		{[]any{1, "a", nil}, "[1, 'a', None]", "[1, 'a', None]"},
		{map[string]any{"k": []any{true}}, "{'k': [yes]}", "{'k': [yes]}"},
		{time.Hour, "1h0m0s", "1h0m0s"},
		{int64(7), "7", "7"},
	}

	for _, tt := range tests {
		if got := Str(tt.v); got != tt.str {
			t.Errorf("Str(%#v) = %q, want %q", tt.v, got, tt.str)
		}

		if got := Repr(tt.v); got != tt.repr {
			t.Errorf("Repr(%#v) = %q, want %q", tt.v, got, tt.repr)
		}
	}
}

func TestEncodeDecodeString(t *testing.T) {
	for _, s := range []string{"plain", "tab\there", `back\slash`, `"quoted"`, "bell\a"} {
		if got := DecodeString(EncodeString(s)); got != s {
			t.Errorf("DecodeString(EncodeString(%q)) = %q", s, got)
		}
	}

	if got := DecodeString(`\q`); got != `\q` {
		t.Errorf("unknown escapes must be preserved, got %q", got)
	}
}

func TestEqualCompare(t *testing.T) {
	eq := []struct {
		a, b any
		want bool
	}{
		{1, 1.0, true},
		{int64(3), 3, true},
		{"a", "a", true},
		{"1", 1, false},
		{true, 1, false},
		{nil, nil, true},
		{nil, NewMissing("x"), false},
		{[]any{1, []any{2}}, []any{1.0, []any{2}}, true},
		{map[string]any{"a": 1}, map[any]any{"a": 1.0}, true},
		{[]any{1}, []any{1, 2}, false},
	}

	for _, tt := range eq {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	cmps := []struct {
		a, b any
		want int
	}{
		{1, 2, -1},
		{2.5, 2, 1},
		{"b", "a", 1},
		{[]any{1, 2}, []any{1, 3}, -1},
		{[]any{1}, []any{1, 0}, -1},
		{time.Second, time.Minute, -1},
	}

	for _, tt := range cmps {
		got, err := Compare(tt.a, tt.b)
		if err != nil || got != tt.want {
			t.Errorf("Compare(%#v, %#v) = %d %v, want %d", tt.a, tt.b, got, err, tt.want)
		}
	}

	if _, err := Compare("a", 1); !errors.Is(err, ErrNotComparable) {
		t.Errorf("expected ErrNotComparable, got %v", err)
	}
}

func TestIdentical(t *testing.T) {
	l := []any{1}
	m := map[string]any{}

	if !Identical(l, l) || Identical(l, []any{1}) {
		t.Error("slice identity")
	}

	if !Identical(m, m) || Identical(m, map[string]any{}) {
		t.Error("map identity")
	}

	if !Identical(nil, nil) || !Identical(true, true) || Identical(1, 1.0) {
		t.Error("scalar identity")
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		c, v any
		want bool
	}{
		{"hello", "ell", true},
		{[]any{1, 2, 3}, 2.0, true},
		{[]any{1, 2, 3}, 4, false},
		{map[string]any{"k": nil}, "k", true},
		{map[string]any{"k": nil}, "v", false},
	}

	for _, tt := range tests {
		got, err := Contains(tt.c, tt.v)
		if err != nil || got != tt.want {
			t.Errorf("Contains(%#v, %#v) = %v %v", tt.c, tt.v, got, err)
		}
	}

	if _, err := Contains(5, 1); !errors.Is(err, ErrNotIterable) {
		t.Errorf("expected ErrNotIterable, got %v", err)
	}

	if _, err := Contains("s", 1); err == nil {
		t.Error("expected error for non-string in string")
	}
}

func TestNormalize(t *testing.T) {
	in := map[string]any{
		"n":    uint64(3),
		"neg":  int64(-2),
		"list": []any{map[any]any{1: float32(0.5)}},
		"strs": []string{"a"},
	}

	out := Normalize(in).(map[string]any)

	if out["n"] != 3 || out["neg"] != -2 {
		t.Errorf("integers not normalized: %#v", out)
	}

	inner := out["list"].([]any)[0].(map[string]any)
	if inner["1"] != 0.5 {
		t.Errorf("nested map not normalized: %#v", inner)
	}

	if !Equal(out["strs"], []any{"a"}) {
		t.Errorf("typed slice not normalized: %#v", out["strs"])
	}
}

func TestToIntFloat(t *testing.T) {
	if n, err := ToInt(" 42 "); err != nil || n != 42 {
		t.Errorf("ToInt = %d %v", n, err)
	}

	if n, err := ToInt("3.9"); err != nil || n != 3 {
		t.Errorf("ToInt(3.9) = %d %v", n, err)
	}

	if _, err := ToInt("x"); err == nil {
		t.Error("expected ToInt error")
	}

	if f, err := ToFloat("1.5"); err != nil || f != 1.5 {
		t.Errorf("ToFloat = %v %v", f, err)
	}

	if n, err := ToInt(true); err != nil || n != 1 {
		t.Errorf("ToInt(true) = %d %v", n, err)
	}
}
