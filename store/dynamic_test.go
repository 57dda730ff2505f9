package store

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestLazy(t *testing.T) {
	c := New(nil)

	var calls atomic.Int32

	err := c.SetLazy("v", func() (any, error) {
		calls.Add(1)

		return "computed", nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if calls.Load() != 0 {
		t.Fatal("producer ran before first read")
	}

	for range 3 {
		if got := mustGet(t, c, "v"); got != "computed" {
			t.Errorf("v = %v", got)
		}
	}

	if n := calls.Load(); n != 1 {
		t.Errorf("producer ran %d times", n)
	}
}

func TestLazyError(t *testing.T) {
	c := New(nil)
	boom := errors.New("boom")

	if err := c.SetLazy("v", func() (any, error) { return nil, boom }); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		if _, err := c.Get("v"); !errors.Is(err, boom) {
			t.Errorf("Get(v) = %v, want boom", err)
		}
	}
}

func TestAsync(t *testing.T) {
	c := New(nil)
	release := make(chan struct{})

	a, err := c.SetAsync("v", func() (any, error) {
		<-release

		return 42, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if !a.WillBlock() {
		t.Error("WillBlock() = false before producer finished")
	}

	close(release)

	if got := mustGet(t, c, "v"); got != 42 {
		t.Errorf("v = %v", got)
	}

	if a.WillBlock() {
		t.Error("WillBlock() = true after completion")
	}
}

func TestAsyncError(t *testing.T) {
	c := New(nil)
	boom := errors.New("boom")

	if _, err := c.SetAsync("v", func() (any, error) { return nil, boom }); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Get("v"); !errors.Is(err, boom) {
		t.Errorf("Get(v) = %v", err)
	}
}

func TestCounter(t *testing.T) {
	c := New(nil)

	if err := c.SetCounter("n", 5); err != nil {
		t.Fatal(err)
	}

	for _, want := range []int{5, 6, 7} {
		if got := mustGet(t, c, "n"); got != want {
			t.Errorf("n = %v, want %d", got, want)
		}
	}
}

func TestThreadLocal(t *testing.T) {
	c := New(nil, WithThreadSafe(true))

	var made atomic.Int32

	produce := func() (any, error) { return int(made.Add(1)), nil }

	v, err := c.SetThreadLocal("t", produce)
	if err != nil || v != 1 {
		t.Fatalf("SetThreadLocal = %v, %v", v, err)
	}

	p := c.Partition("worker")

	if got := mustGet(t, p, "t"); got != 2 {
		t.Errorf("partition value = %v, want 2", got)
	}

	if got := mustGet(t, c, "t"); got != 1 {
		t.Errorf("owner value = %v, want 1", got)
	}

	if got := mustGet(t, p, "t"); got != 2 {
		t.Errorf("partition value changed to %v", got)
	}

	if got, _ := c.SetNewThreadLocal("t", produce); got != 1 {
		t.Errorf("SetNewThreadLocal on existing = %v", got)
	}
}

func TestLink(t *testing.T) {
	c := New(map[string]any{"a": map[string]any{"b": 1}})

	if err := c.Link("l", ".a.b"); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, c, "l"); got != 1 {
		t.Errorf("l = %v", got)
	}

	if err := c.Set("a.b", 2); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, c, "l"); got != 2 {
		t.Errorf("l after update = %v", got)
	}

	if err := c.Link("la", ".a"); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, c, "la.b"); got != 2 {
		t.Errorf("la.b = %v", got)
	}
}

func TestLinkCycle(t *testing.T) {
	c := New(nil)

	if err := c.Link("x", ".y"); err != nil {
		t.Fatal(err)
	}

	if err := c.Link("y", ".x"); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Get("x"); !errors.Is(err, ErrLinkCycle) {
		t.Errorf("Get(x) = %v, want ErrLinkCycle", err)
	}

	if err := c.Link("bad", `"open`); err == nil {
		t.Error("Link with bad target: expected error")
	}
}

func TestDynamic(t *testing.T) {
	c := New(map[string]any{"base": 10})

	err := c.SetDynamic("twice", func(r Reader) (any, error) {
		v, err := r.GetIndex(mustIndex(".base"))
		if err != nil {
			return nil, err
		}

		return v.(int) * 2, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, c, "twice"); got != 20 {
		t.Errorf("twice = %v", got)
	}

	if err := c.Set("base", 4); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, c, "twice"); got != 8 {
		t.Errorf("twice after update = %v", got)
	}
}

func TestDynamicUnderLock(t *testing.T) {
	c := New(map[string]any{"base": 3}, WithThreadSafe(true))

	err := c.SetDynamic("d", func(r Reader) (any, error) {
		return r.ContainsIndex(mustIndex("base"))
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, c, "d"); got != true {
		t.Errorf("d = %v", got)
	}
}
