package profile

import (
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	p := New(WithMode("cpu"), WithPath(t.TempDir()), WithQuiet(true))

	if p.Mode != "cpu" || p.Path == "" || !p.Quiet {
		t.Errorf("New() = %+v", p)
	}
}

func TestStartNoMode(t *testing.T) {
	s := New().Start()
	if _, ok := s.(ignore); !ok {
		t.Errorf("Start() with no mode = %T, want no-op", s)
	}

	s.Stop()

	var nilProfiler *Profiler
	nilProfiler.Start().Stop()
}

func TestStartUnknownMode(t *testing.T) {
	s := New(WithMode("bogus"), WithPath(t.TempDir())).Start()
	if _, ok := s.(ignore); !ok {
		t.Errorf("Start() with unknown mode = %T, want no-op", s)
	}
}

func TestModes(t *testing.T) {
	m := Modes()

	if !Enabled {
		if len(m) != 0 {
			t.Errorf("Modes() = %v without pprof tag", m)
		}

		return
	}

	if !slices.IsSorted(m) || !slices.Contains(m, "cpu") {
		t.Errorf("Modes() = %v", m)
	}
}
