package cmd

import (
	"bytes"
	"testing"
)

func TestOutputWrite(t *testing.T) {
	results := []any{"a", []any{1, 2}}

	tests := []struct {
		format string
		want   string
	}{
		{"", "a\n[1, 2]\n"},
		{"text", "a\n[1, 2]\n"},
		{"yaml", "a\n---\n- 1\n- 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			o := Output{Format: tt.format}

			if o.isText() == (tt.format == "yaml") {
				t.Errorf("isText() = %v", o.isText())
			}

			var buf bytes.Buffer
			if err := o.write(&buf, results...); err != nil {
				t.Fatalf("write() error = %v", err)
			}

			if buf.String() != tt.want {
				t.Errorf("write() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestKeysRunYAML(t *testing.T) {
	ctx, out := testContext(t)

	k := Keys{Output: Output{Format: "yaml"}, Depth: 1}
	if err := k.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if want := "- items\n- site\n"; out.String() != want {
		t.Errorf("Run() output = %q, want %q", out.String(), want)
	}
}
