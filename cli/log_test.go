package cli

import (
	"testing"

	"github.com/ardnew/scopex/log"
)

func TestLogScan(t *testing.T) {
	defer log.SetDefault(log.Default())

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "separate values",
			args: []string{"eval", "--log-level", "debug", "--log-format", "text", "x"},
			want: logConfig{Level: "debug", Format: "text", Pretty: true},
		},
		{
			name: "assigned values",
			args: []string{"--log-level=warn", "--log-time-layout=Kitchen"},
			want: logConfig{Level: "warn", TimeLayout: "Kitchen", Pretty: true},
		},
		{
			name: "booleans",
			args: []string{"--no-log-pretty", "--log-caller"},
			want: logConfig{Caller: true},
		},
		{
			name: "assigned booleans",
			args: []string{"--log-pretty=false", "--no-log-caller=false"},
			want: logConfig{Caller: true},
		},
		{
			name: "missing value",
			args: []string{"--log-level", "--log-caller"},
			want: logConfig{Caller: true, Pretty: true},
		},
		{
			name: "terminator",
			args: []string{"--", "--log-level=error"},
			want: logConfig{Pretty: true},
		},
		{
			name: "unrelated",
			args: []string{"--logx", "--data=a.yaml", "--log-bogus=1"},
			want: logConfig{Pretty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := logConfig{Pretty: true}
			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("scan(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}
