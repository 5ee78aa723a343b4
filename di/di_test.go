package di

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/kbukum/modkit/errors"
)

func TestRegisterAndResolve(t *testing.T) {
	c := NewContainer()

	if err := c.Register("greeting", func() string { return "hello" }); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	val, err := c.Resolve("greeting")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if val != "hello" {
		t.Errorf("expected 'hello', got %v", val)
	}
}

func TestResolveNotRegistered(t *testing.T) {
	c := NewContainer()
	_, err := c.Resolve("nonexistent")
	if !errors.HasCode(err, errors.ErrCodeBindingNotFound) {
		t.Errorf("expected BINDING_NOT_FOUND, got %v", err)
	}
}

func TestRegisterDuplicateKey(t *testing.T) {
	c := NewContainer()
	if err := c.Scoped("app.Store").RegisterSingleton("store", 1); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	err := c.RegisterSingleton("store", 2)
	if !errors.HasCode(err, errors.ErrCodeBindingConflict) {
		t.Fatalf("expected BINDING_CONFLICT, got %v", err)
	}
	if !strings.Contains(err.Error(), "store") {
		t.Errorf("expected key in error, got %q", err.Error())
	}
	if v, _ := c.Resolve("store"); v != 1 {
		t.Errorf("original binding should survive, got %v", v)
	}
}

func TestRegisterLazy(t *testing.T) {
	c := NewContainer()
	calls := 0
	c.Register("lazy", func() (string, error) {
		calls++
		return "lazy-value", nil
	})
	if calls != 0 {
		t.Error("constructor should not run before resolve")
	}
	for i := 0; i < 2; i++ {
		if _, err := c.Resolve("lazy"); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected constructor called once, got %d", calls)
	}
}

func TestRegisterLazyFailureRetries(t *testing.T) {
	c := NewContainer()
	calls := 0
	c.Register("flaky", func() (int, error) {
		calls++
		if calls == 1 {
			return 0, fmt.Errorf("not yet")
		}
		return 7, nil
	})

	_, err := c.Resolve("flaky")
	if !errors.HasCode(err, errors.ErrCodeBindingFailed) {
		t.Fatalf("expected BINDING_FAILED, got %v", err)
	}
	v, err := c.Resolve("flaky")
	if err != nil || v != 7 {
		t.Errorf("expected second resolve to succeed with 7, got %v, %v", v, err)
	}
}

func TestRegisterEager(t *testing.T) {
	c := NewContainer()
	called := false
	err := c.RegisterEager("eager", func() string {
		called = true
		return "eager-value"
	})
	if err != nil {
		t.Fatalf("RegisterEager failed: %v", err)
	}
	if !called {
		t.Error("expected constructor to run at registration")
	}
}

func TestRegisterEagerWithError(t *testing.T) {
	c := NewContainer()
	err := c.RegisterEager("bad", func() (string, error) { return "", fmt.Errorf("init failed") })
	if err == nil {
		t.Fatal("expected error for failed eager initialization")
	}
	if c.Has("bad") {
		t.Error("failed eager binding should not be registered")
	}
}

func TestConstructorSignatures(t *testing.T) {
	c := NewContainer()
	c.RegisterSingleton("base", 40)

	tests := []struct {
		name string
		ctor interface{}
		ok   bool
	}{
		{"context", func(ctx context.Context) (int, error) { return 1, ctx.Err() }, true},
		{"container", func(c Container) (int, error) { return MustResolve[int](c, "base") + 2, nil }, true},
		{"not a func", 42, false},
		{"bad param", func(s string) int { return 0 }, false},
		{"too many params", func(a, b Container) int { return 0 }, false},
		{"bad second result", func() (int, string) { return 0, "" }, false},
		{"no results", func() {}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := c.Register(tc.name, tc.ctor)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected registration to be rejected")
			}
		})
	}

	if v := MustResolve[int](c, "container"); v != 42 {
		t.Errorf("expected 42, got %d", v)
	}
}

type closer struct{ closed bool }

func (c *closer) Close() error { c.closed = true; return nil }

func TestScopedRelease(t *testing.T) {
	c := NewContainer()
	res := &closer{}
	s := c.Scoped("app.Store")
	s.Register("store", func() *closer { return res })
	s.RegisterSingleton("store.name", "kv")
	c.RegisterSingleton("global", true)

	MustResolve[*closer](c, "store")

	keys := c.Release("app.Store")
	if !slices.Equal(keys, []string{"store", "store.name"}) {
		t.Errorf("unexpected released keys: %v", keys)
	}
	if !res.closed {
		t.Error("expected released instance to be closed")
	}
	if c.Has("store") || !c.Has("global") {
		t.Error("release should only drop the owner's bindings")
	}
	if keys := c.Release("app.Store"); len(keys) != 0 {
		t.Errorf("second release should be empty, got %v", keys)
	}
}

func TestRegistrations(t *testing.T) {
	c := NewContainer()
	c.Scoped("m").Register("b", func() int { return 1 })
	c.RegisterSingleton("a", 1)

	regs := c.Registrations()
	if len(regs) != 2 {
		t.Fatalf("expected 2 registrations, got %d", len(regs))
	}
	if regs[0].Key != "a" || regs[0].Mode != Singleton || !regs[0].Initialized {
		t.Errorf("unexpected first registration: %+v", regs[0])
	}
	if regs[1].Owner != "m" || regs[1].ModeName != "lazy" || regs[1].Initialized {
		t.Errorf("unexpected second registration: %+v", regs[1])
	}
}

func TestCloseSkipsSingletons(t *testing.T) {
	c := NewContainer()
	lazy, single := &closer{}, &closer{}
	c.Register("lazy", func() *closer { return lazy })
	c.RegisterSingleton("single", single)
	MustResolve[*closer](c, "lazy")

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !lazy.closed {
		t.Error("expected lazy instance closed")
	}
	if single.closed {
		t.Error("singletons should not be closed by the container")
	}
}

func TestTypedResolve(t *testing.T) {
	c := NewContainer()
	c.RegisterSingleton("n", 5)

	if _, err := Resolve[string](c, "n"); err == nil {
		t.Error("expected type mismatch error")
	}
	if _, ok := TryResolve[int](c, "missing"); ok {
		t.Error("expected TryResolve to report missing")
	}
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustResolve to panic")
		}
	}()
	MustResolve[int](c, "missing")
}
