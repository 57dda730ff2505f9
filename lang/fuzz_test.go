package lang

import (
	"errors"
	"testing"
	"unicode/utf8"
)

// FuzzParse checks that the parser never panics and that every failure is a
// CompileError with a column inside the source.
func FuzzParse(f *testing.F) {
	f.Add("1")
	f.Add("foo.a + bar['x'][1:2:3]")
	f.Add(`"str" :: '>10'`)
	f.Add("a=1, b=[1,2,{'c': `x + y`}]")
	f.Add("x ? y : z ? 1 : 2")
	f.Add("upper:lower:'x' | filters.f")
	f.Add("1..10 ... 3")
	f.Add("'a' not instr ['b'] and not c is not None")
	f.Add("/re[gx]+/")
	f.Add("$$ + $var.1 + .abs.path")
	f.Add("2h + 30m - 10s")
	f.Add("{x:y}")

	f.Fuzz(func(t *testing.T, src string) {
		if !utf8.ValidString(src) {
			t.Skip("invalid UTF-8")
		}

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("parse panicked on %q: %v", src, r)
			}
		}()

		_, err := parse(src)
		if err == nil {
			return
		}

		var ce *CompileError
		if !errors.As(err, &ce) {
			t.Fatalf("parse(%q) error %T is not a CompileError", src, err)
		}

		if ce.Col < 1 || ce.Col > utf8.RuneCountInString(src)+1 {
			t.Errorf("parse(%q) column %d out of range", src, ce.Col)
		}
	})
}

// FuzzEval checks that evaluating arbitrary parseable source never panics.
func FuzzEval(f *testing.F) {
	f.Add("foo.a / 0")
	f.Add("word[1:] * 3")
	f.Add("sorted:[3, 'a', None]")
	f.Add("missing:x + 1")
	f.Add("[1,2][5]")
	f.Add("-'x'")

	f.Fuzz(func(t *testing.T, src string) {
		if !utf8.ValidString(src) || len(src) > 256 {
			t.Skip()
		}

		e, err := Compile(src)
		if err != nil {
			return
		}

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("eval panicked on %q: %v", src, r)
			}
		}()

		_, _ = e.Eval(fixture())
	})
}
