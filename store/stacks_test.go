package store

import (
	"errors"
	"testing"

	"github.com/ardnew/scopex/index"
)

func mustIndex(s string) *index.Index { return index.MustParse(s) }

func TestPushPopStack(t *testing.T) {
	c := New(nil)

	idx, err := c.PushStack("app", "A")
	if err != nil || idx != "._app_stack.0" {
		t.Fatalf("PushStack = %q, %v", idx, err)
	}

	if idx, _ = c.PushStack("app", "B"); idx != "._app_stack.1" {
		t.Errorf("second PushStack = %q", idx)
	}

	if got := mustGet(t, c, "app"); got != "B" {
		t.Errorf("app = %v", got)
	}

	if got := mustGet(t, c, idx); got != "B" {
		t.Errorf("%s = %v", idx, got)
	}

	if got, _ := c.GetStackTop("app", nil); got != "B" {
		t.Errorf("GetStackTop = %v", got)
	}

	if v, err := c.PopStack("app"); err != nil || v != "B" {
		t.Errorf("PopStack = %v, %v", v, err)
	}

	if got := mustGet(t, c, "app"); got != "A" {
		t.Errorf("app after pop = %v", got)
	}

	if _, err := c.PopStack("app"); err != nil {
		t.Fatal(err)
	}

	if ok, _ := c.Contains("._app_stack"); ok {
		t.Error("empty stack was not removed")
	}

	if got := mustGet(t, c, "app"); got != nil {
		t.Errorf("app with no stack = %v", got)
	}

	if got, _ := c.GetStackTop("app", "none"); got != "none" {
		t.Errorf("GetStackTop default = %v", got)
	}

	if _, err := c.PopStack("app"); !errors.Is(err, ErrContextKey) {
		t.Errorf("PopStack on absent stack = %v", err)
	}
}

func TestPushStackInFrame(t *testing.T) {
	c := New(map[string]any{"site": map[string]any{"title": "home"}})

	if err := c.PushFrame("site"); err != nil {
		t.Fatal(err)
	}

	if _, err := c.PushStack("app", "A"); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, c, ".app"); got != "A" {
		t.Errorf(".app = %v, want A", got)
	}

	if ok, _ := c.Contains(".site.app"); ok {
		t.Error("stack link was written inside the frame")
	}

	if err := c.PopFrame(); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, c, "app"); got != "A" {
		t.Errorf("app = %v, want A", got)
	}
}

func TestPushStackNotStack(t *testing.T) {
	c := New(map[string]any{"_app_stack": "oops"})

	if _, err := c.PushStack("app", 1); !errors.Is(err, ErrNotStack) {
		t.Errorf("PushStack = %v, want ErrNotStack", err)
	}
}

func TestWithStack(t *testing.T) {
	c := New(nil)

	err := c.WithStack("loop", map[string]any{"v": 3}, func(idx string) error {
		if idx != "._loop_stack.0" {
			t.Errorf("idx = %q", idx)
		}

		if got := mustGet(t, c, "v"); got != 3 {
			t.Errorf("v = %v", got)
		}

		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if c.Depth() != 1 {
		t.Errorf("Depth() = %d", c.Depth())
	}

	if ok, _ := c.Contains("._loop_stack"); ok {
		t.Error("stack left behind")
	}
}

func TestWithRootStack(t *testing.T) {
	c := New(nil)

	err := c.WithRootStack("app", "outer", func() error {
		return c.WithRootStack("app", "inner", func() error {
			if got := mustGet(t, c, ".app"); got != "inner" {
				t.Errorf(".app = %v", got)
			}

			return nil
		})
	})
	if err != nil {
		t.Fatal(err)
	}

	if ok, _ := c.Contains(".app"); ok {
		t.Error(".app left behind")
	}
}

func TestWithDataScope(t *testing.T) {
	c := New(map[string]any{"x": 1})

	err := c.WithDataScope(map[string]any{"y": 2}, func() error {
		if got := mustGet(t, c, "y"); got != 2 {
			t.Errorf("y = %v", got)
		}

		if got := mustGet(t, c, "x"); got != 1 {
			t.Errorf("x = %v", got)
		}

		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if ok, _ := c.Contains("y"); ok {
		t.Error("y visible after data scope")
	}

	if ok, _ := c.Contains("._datascope_stack"); !ok {
		t.Error("per-partition stack should be kept")
	}
}

func TestWithDataFrame(t *testing.T) {
	c := New(map[string]any{"x": 1})

	err := c.WithDataFrame(map[string]any{"y": 2}, func() error {
		if got := mustGet(t, c, "y"); got != 2 {
			t.Errorf("y = %v", got)
		}

		if got := mustGet(t, c, ".x"); got != 1 {
			t.Errorf(".x = %v", got)
		}

		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if c.Depth() != 1 {
		t.Errorf("Depth() = %d", c.Depth())
	}
}
