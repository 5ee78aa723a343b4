package demo

import (
	"context"
	"slices"
	"testing"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/di"
	"github.com/kbukum/modkit/errors"
	"github.com/kbukum/modkit/inspect"
	"github.com/kbukum/modkit/kernel"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/module"
)

func newKernel() *kernel.Kernel {
	return kernel.New(kernel.WithName("demo-test"), kernel.WithLogger(logger.Nop()))
}

func loadedIDs(k *kernel.Kernel) []string {
	var ids []string
	for _, info := range k.Modules() {
		ids = append(ids, info.ID)
	}
	return ids
}

func TestGraph_LoggingLoadedOnce(t *testing.T) {
	k := newKernel()
	ctx := context.Background()

	if err := k.Load(ctx, &GreeterModule{}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{
		module.ID(LoggingModule{}),
		module.ID(StoreModule{}),
		module.ID(&GreeterModule{}),
	}
	if got := loadedIDs(k); !slices.Equal(got, want) {
		t.Errorf("modules = %v, want %v", got, want)
	}
}

func TestGreeter(t *testing.T) {
	k := newKernel()
	if err := k.Load(context.Background(), &GreeterModule{Prefix: "Hi"}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	g := di.MustResolve[*Greeter](k.Container(), KeyGreeter)
	if got := g.Greet("ada"); got != "Hi, ada!" {
		t.Errorf("first greet = %q", got)
	}
	if got := g.Greet("ada"); got != "Hi again, ada!" {
		t.Errorf("second greet = %q", got)
	}

	store := di.MustResolve[*Store](k.Container(), KeyStore)
	if store.Get("greet:ada") != 2 {
		t.Errorf("count = %d, want 2", store.Get("greet:ada"))
	}
	if !slices.Equal(store.Keys(), []string{"greet:ada"}) {
		t.Errorf("keys = %v", store.Keys())
	}
}

func TestUnloadStoreClosesIt(t *testing.T) {
	k := newKernel()
	ctx := context.Background()
	if err := k.Load(ctx, StoreModule{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	store := di.MustResolve[*Store](k.Container(), KeyStore)

	if err := k.Unload(ctx, module.ID(StoreModule{})); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if !store.Closed() {
		t.Error("store should be closed when its module unloads")
	}
	if k.Container().Has(KeyStore) {
		t.Error("store binding should be released")
	}
	if !k.Container().Has(KeyLogger) {
		t.Error("logging module bindings must survive")
	}
}

func TestCatalog(t *testing.T) {
	c := Catalog(Options{Greeting: "Hey"})

	if got := c.Names(); !slices.Equal(got, []string{"greeter", "inspect", "logging", "store"}) {
		t.Errorf("Names = %v", got)
	}

	mods, err := c.Build([]string{"store", "greeter"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g, ok := mods[1].(*GreeterModule); !ok || g.Prefix != "Hey" {
		t.Errorf("greeter = %#v", mods[1])
	}

	if _, err := c.Build([]string{"nope"}); !errors.HasCode(err, errors.ErrCodeModuleUnknown) {
		t.Errorf("expected MODULE_UNKNOWN, got %v", err)
	}
}

func TestCatalog_LoadAllRoots(t *testing.T) {
	k := newKernel()
	ctx := context.Background()
	mods, err := Catalog(Options{}).Build([]string{"greeter", "store", "logging"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	deps := module.NewDependencies(k)
	for _, m := range mods {
		deps.RegisterDependency(m)
	}
	// greeter's own dependencies reach the host before store and logging
	// are submitted again, so the batch stops at store.
	n, err := deps.FlushDependencies(ctx)
	if n != 3 {
		t.Errorf("submitted %d, want 3", n)
	}
	if !errors.HasCode(err, errors.ErrCodeModuleAlreadyLoaded) {
		t.Fatalf("expected MODULE_ALREADY_LOADED, got %v", err)
	}
	if len(k.Modules()) != 3 {
		t.Errorf("loaded %d modules, want 3", len(k.Modules()))
	}
}

func TestInspectModule(t *testing.T) {
	k := newKernel()
	ctx := context.Background()

	m := &InspectModule{Config: inspect.Config{Host: "127.0.0.1"}}
	if err := k.Load(ctx, m); err != nil {
		t.Fatalf("Load: %v", err)
	}

	c := k.Components().Get("inspect-server")
	if c == nil {
		t.Fatal("inspect server not registered")
	}
	if err := k.Components().StartAll(ctx); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	defer k.Components().StopAll(ctx)

	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("health = %+v", h)
	}
}

func TestInspectModule_InvalidConfig(t *testing.T) {
	k := newKernel()
	m := &InspectModule{Config: inspect.Config{Host: "127.0.0.1", Port: -1}}

	err := k.Load(context.Background(), m)
	if !errors.HasCode(err, errors.ErrCodeModuleLoadFailed) {
		t.Fatalf("expected MODULE_LOAD_FAILED, got %v", err)
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("cause should be INVALID_CONFIG, got %v", err)
	}
	if !k.HasModule(module.ID(LoggingModule{})) {
		t.Error("logging was loaded before the failure and stays loaded")
	}
}
