package log

import (
	"io"
	"slices"
	"testing"
	"time"
)

func TestConfig_Options(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		check func(config) bool
	}{
		{"defaults", nil, func(c config) bool {
			return c.level == DefaultLevel && c.format == DefaultFormat &&
				c.caller == DefaultCaller && c.pretty == DefaultPretty
		}},
		{"level", []Option{WithLevel(LevelTrace)}, func(c config) bool { return c.level == LevelTrace }},
		{"format", []Option{WithFormat(FormatText)}, func(c config) bool { return c.format == FormatText }},
		{"caller", []Option{WithCaller(true)}, func(c config) bool { return c.caller }},
		{"pretty", []Option{WithPretty(true)}, func(c config) bool { return c.pretty }},
		{"component", []Option{WithComponent("store")}, func(c config) bool { return c.component == "store" }},
		{"nil_output", []Option{WithOutput(nil)}, func(c config) bool { return c.output == io.Discard }},
		{"nil_option", []Option{nil, WithLevel(LevelWarn)}, func(c config) bool { return c.level == LevelWarn }},
		{"last_wins", []Option{WithLevel(LevelError), WithLevel(LevelDebug)}, func(c config) bool { return c.level == LevelDebug }},
		{"reset", []Option{WithLevel(LevelError), WithDefaults(nil)}, func(c config) bool {
			return c.level == DefaultLevel && c.output == io.Discard
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c := makeConfig(io.Discard, tt.opts...); !tt.check(c) {
				t.Errorf("makeConfig() = %+v", c)
			}
		})
	}
}

func TestConfig_formatTime(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-03-09T14:05:06Z"},
		{"rfc-3339", "2024-03-09T14:05:06Z"},
		{"Kitchen", "2:05PM"},
		{"date-time", "2024-03-09 14:05:06"},
		{"2006/01/02", "2024/03/09"},
		{"none", ""},
		{"", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			if got := makeFormatTimeFunc(tt.layout)(ts); got != tt.want {
				t.Errorf("format(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":   FormatJSON,
		" TEXT ": FormatText,
		"xml":    DefaultFormat,
	}

	for in, want := range tests {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", in, got, want)
		}
	}

	if got := Format(9).String(); got != "Format(9)" {
		t.Errorf("Format(9).String() = %q", got)
	}
}

func TestNames(t *testing.T) {
	if got, want := slices.Collect(Levels()), []string{"trace", "debug", "info", "warn", "error"}; !slices.Equal(got, want) {
		t.Errorf("Levels() = %v, want %v", got, want)
	}

	if got, want := slices.Collect(Formats()), []string{"json", "text"}; !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}

	for name := range Levels() {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("ParseLevel(%q).String() = %q", name, got)
		}
	}
}
