package lang

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	c := fixture()

	tests := []struct {
		src  string
		want string
	}{
		{`3.14159::'.2f'`, "3.14"},
		{`42::'05d'`, "00042"},
		{`-42::'06d'`, "-00042"},
		{`1234567::','`, "1,234,567"},
		{`1234567::'_'`, "1_234_567"},
		{`1234567.891::',.2f'`, "1,234,567.89"},
		{`'x'::'>3'`, "  x"},
		{`'x'::'^5'`, "  x  "},
		{`'x'::'*<3'`, "x**"},
		{`7::'5'`, "    7"},
		{`255::'x'`, "ff"},
		{`255::'#x'`, "0xff"},
		{`255::'X'`, "FF"},
		{`5::'b'`, "101"},
		{`65::'c'`, "A"},
		{`0.25::'.0%'`, "25%"},
		{`7::'+d'`, "+7"},
		{`1::'.1f'`, "1.0"},
		{`'abc'::'.2'`, "ab"},
		{`True::''`, "True"},
		{`True::'d'`, "1"},
		{`foo.a::'03'`, "010"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := mustEval(t, c, tt.src); got != tt.want {
				t.Errorf("Eval(%q) = %#v, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestFormatErrors(t *testing.T) {
	c := fixture()

	for _, src := range []string{
		`'x'::'d'`,
		`1.5::'d'`,
		`1::5`,
		`1::'.f'`,
		`1::'zz'`,
		`'x'::'+'`,
	} {
		_, err := Eval(c, src)
		if !errors.Is(err, ErrExprEvaluate) {
			t.Errorf("Eval(%q) error = %v, want %v", src, err, ErrExprEvaluate)
		}
	}
}
