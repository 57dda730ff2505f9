package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatal(err)
	}

	return resolved
}

func TestWithSourceFilesEmpty(t *testing.T) {
	for _, sources := range [][]string{nil, {}} {
		s := sourceFilesFrom(WithSourceFiles(context.Background(), sources))
		if s != nil {
			t.Errorf("WithSourceFiles(%v) = %+v, want nil", sources, s)
		}

		if !s.IsZero() || s.Paths() != nil {
			t.Errorf("nil SourceFiles: IsZero() = %v, Paths() = %v", s.IsZero(), s.Paths())
		}
	}
}

func TestWithSourceFilesDedup(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "a: 1")
	b := writeFile(t, dir, "b.yaml", "b: 2")

	link := filepath.Join(dir, "link.yaml")
	if err := os.Symlink(a, link); err != nil {
		t.Fatal(err)
	}

	t.Chdir(dir)

	tests := []struct {
		name    string
		sources []string
		want    []string
	}{
		{"single", []string{a}, []string{a}},
		{"ordered", []string{b, a}, []string{b, a}},
		{"repeated", []string{a, a, a}, []string{a}},
		{"relative_absolute", []string{"a.yaml", a}, []string{a}},
		{"symlink", []string{a, link, b}, []string{a, b}},
		{"nonexistent", []string{"/nonexistent/x.yaml", b}, []string{b}},
		{"directory", []string{dir, a}, []string{a}},
		{"stdin_last", []string{"-", a, "-"}, []string{a, stdinSource}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sourceFilesFrom(WithSourceFiles(context.Background(), tt.sources)).Paths()
			if !slices.Equal(got, tt.want) {
				t.Errorf("Paths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithSourceFilesAllNonexistent(t *testing.T) {
	s := sourceFilesFrom(WithSourceFiles(context.Background(), []string{
		"/nonexistent/path/file1.yaml",
		"/nonexistent/path/file2.yaml",
	}))
	if s != nil {
		t.Errorf("WithSourceFiles(nonexistent) = %+v, want nil", s)
	}
}

func TestDecodeData(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		input   string
		want    any
		wantErr bool
	}{
		{"yaml_map", "d.yaml", "a: 1\nb: [x, 2.5]\n", map[string]any{"a": 1, "b": []any{"x", 2.5}}, false},
		{"yaml_scalar", "d.yml", "hello", "hello", false},
		{"yaml_int_keys", "d.yaml", "1: one", map[string]any{"1": "one"}, false},
		{"json", "d.json", `{"a": {"b": 3}}`, map[string]any{"a": map[string]any{"b": 3}}, false},
		{"json_upper_ext", "D.JSON", `[1, 2]`, []any{1, 2}, false},
		{"empty_yaml", "d.yaml", "", nil, false},
		{"bad_yaml", "d.yaml", "a: [1, 2", nil, true},
		{"bad_json", "d.json", `{"a":`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeData(tt.file, strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeData() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeData() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	dst := map[string]any{
		"a": map[string]any{"x": 1, "y": 2},
		"b": "keep",
		"c": []any{1},
	}

	merge(dst, map[string]any{
		"a": map[string]any{"y": 3, "z": 4},
		"c": "replaced",
		"d": map[string]any{"new": true},
	})

	want := map[string]any{
		"a": map[string]any{"x": 1, "y": 3, "z": 4},
		"b": "keep",
		"c": "replaced",
		"d": map[string]any{"new": true},
	}

	if !reflect.DeepEqual(dst, want) {
		t.Errorf("merge() = %#v, want %#v", dst, want)
	}
}

func TestLoadRoot(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "site:\n  title: home\n  port: 80\n")
	over := writeFile(t, dir, "over.json", `{"site": {"port": 8080}, "debug": true}`)
	list := writeFile(t, dir, "list.yaml", "- 1\n- 2\n")
	empty := writeFile(t, dir, "empty.yaml", "")

	tests := []struct {
		name    string
		files   []string
		want    any
		wantErr error
	}{
		{"none", nil, map[string]any{}, nil},
		{"single_list", []string{list}, []any{1, 2}, nil},
		{"single_empty", []string{empty}, map[string]any{}, nil},
		{"merged", []string{base, over, empty}, map[string]any{
			"site":  map[string]any{"title": "home", "port": 8080},
			"debug": true,
		}, nil},
		{"merge_non_mapping", []string{base, list}, nil, ErrDataFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithSourceFiles(context.Background(), tt.files)

			got, err := loadRoot(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("loadRoot() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("loadRoot() error = %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("loadRoot() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestLoadRootStdin(t *testing.T) {
	ctx := WithStdin(context.Background(), strings.NewReader("from: stdin\n"))
	ctx = WithSourceFiles(ctx, []string{"-"})

	got, err := loadRoot(ctx)
	if err != nil {
		t.Fatalf("loadRoot() error = %v", err)
	}

	if want := map[string]any{"from": "stdin"}; !reflect.DeepEqual(got, want) {
		t.Errorf("loadRoot() = %#v, want %#v", got, want)
	}
}
