package lang

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/scopex/value"
)

func TestDumpLoad(t *testing.T) {
	ClearCache()

	sources := map[string]any{
		`foo.a * 2 + 1`:                    21,
		`'hello, world' matches /.*world/`: true,
		`[x for]`:                          nil,
		`foo.c["inception"][::-1][:6]`:     "slevel",
		"`$$ * 2`(3) + 1":                  7,
		`upper:word::'>8'`:                 "  APPLES",
		`1h + 30m`:                         nil,
	}

	for src := range sources {
		_, _ = Compile(src)
	}

	var buf bytes.Buffer
	if err := Dump(&buf); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	if !strings.HasPrefix(buf.String(), cacheKey()+"\n") {
		t.Fatalf("Dump() header = %q", buf.String()[:min(buf.Len(), 32)])
	}

	ClearCache()

	n, err := Load(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// the unparseable source is not persisted
	if n != len(sources)-1 {
		t.Errorf("Load() = %d, want %d", n, len(sources)-1)
	}

	before := ParseCount()
	c := fixture()

	for src, want := range sources {
		if want == nil {
			continue
		}

		if got := mustEval(t, c, src); !value.Equal(got, want) {
			t.Errorf("Eval(%q) after Load = %#v, want %#v", src, got, want)
		}
	}

	if ParseCount() != before {
		t.Error("loaded expressions were parsed again")
	}

	// loading again adds nothing
	if n, err := Load(bytes.NewReader(buf.Bytes())); err != nil || n != 0 {
		t.Errorf("second Load() = %d, %v", n, err)
	}
}

func TestLoadRejects(t *testing.T) {
	ClearCache()
	MustCompile("1 + 1")

	var buf bytes.Buffer
	if err := Dump(&buf); err != nil {
		t.Fatal(err)
	}

	blob := buf.Bytes()

	stale := append([]byte("expcache.1.0.0.0\n"), blob[len(cacheKey())+1:]...)
	if _, err := Load(bytes.NewReader(stale)); !errors.Is(err, ErrCacheVersion) {
		t.Errorf("Load(stale) error = %v, want %v", err, ErrCacheVersion)
	}

	corrupt := bytes.Clone(blob)
	corrupt[len(corrupt)-1] ^= 0xff

	if _, err := Load(bytes.NewReader(corrupt)); !errors.Is(err, ErrCacheCorrupt) {
		t.Errorf("Load(corrupt) error = %v, want %v", err, ErrCacheCorrupt)
	}

	if _, err := Load(strings.NewReader("")); !errors.Is(err, ErrCacheCorrupt) {
		t.Errorf("Load(empty) error = %v, want %v", err, ErrCacheCorrupt)
	}

	truncated := blob[:len(cacheKey())+4]
	if _, err := Load(bytes.NewReader(truncated)); !errors.Is(err, ErrCacheCorrupt) {
		t.Errorf("Load(truncated) error = %v, want %v", err, ErrCacheCorrupt)
	}
}
