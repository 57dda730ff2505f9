package lang

import (
	"bytes"
	"fmt"
	"testing"
)

func BenchmarkEval(b *testing.B) {
	tests := []struct {
		name string
		src  string
	}{
		{"arithmetic", "foo.a * 2 + foo.b // 3"},
		{"string", `word + ", " + lt + "!"`},
		{"compare", `word^="app" and foo.a >= 10`},
		{"modifier", `upper:word::'>12'`},
		{"slice", `r[::-2]`},
		{"function", "map:[r, `$$ * $$`]"},
	}

	c := fixture()

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			e := MustCompile(tt.src)

			for b.Loop() {
				if _, err := e.Eval(c); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCompile(b *testing.B) {
	b.Run("cached", func(b *testing.B) {
		MustCompile("foo.a + foo.b")

		for b.Loop() {
			_, _ = Compile("foo.a + foo.b")
		}
	})

	b.Run("parse", func(b *testing.B) {
		for b.Loop() {
			_, _ = parse(`a=foo.a, b=[1, 2, 3], c=x ? upper:word::'>10' : y`)
		}
	})
}

func BenchmarkDump(b *testing.B) {
	ClearCache()

	for i := range 512 {
		MustCompile(fmt.Sprintf("foo.a * %d + len:word", i))
	}

	var buf bytes.Buffer

	for b.Loop() {
		buf.Reset()

		if err := Dump(&buf); err != nil {
			b.Fatal(err)
		}
	}
}
