package demo

import (
	"context"
	"fmt"

	"github.com/kbukum/modkit/di"
	"github.com/kbukum/modkit/inspect"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/module"
)

// Binding keys.
const (
	KeyLogger  = "demo.logger"
	KeyStore   = "demo.store"
	KeyGreeter = "demo.greeter"
)

// LoggingModule binds the logger every other demo module uses.
type LoggingModule struct{}

func (LoggingModule) Load(_ context.Context, k module.Kernel) error {
	return k.Container().RegisterSingleton(KeyLogger, logger.Get("demo"))
}

// StoreModule binds a lazily created Store.
type StoreModule struct{}

func (StoreModule) Load(ctx context.Context, k module.Kernel) error {
	deps := module.NewDependencies(k)
	deps.RegisterDependency(LoggingModule{})
	if _, err := deps.FlushDependencies(ctx); err != nil {
		return err
	}

	return k.Container().Register(KeyStore, func(c di.Container) (*Store, error) {
		log, err := di.Resolve[*logger.Logger](c, KeyLogger)
		if err != nil {
			return nil, err
		}
		return NewStore(log.WithComponent("store")), nil
	})
}

// GreeterModule binds a Greeter backed by the store.
type GreeterModule struct {
	Prefix string
}

func (m *GreeterModule) Load(ctx context.Context, k module.Kernel) error {
	deps := module.NewDependencies(k)
	deps.RegisterDependency(LoggingModule{})
	deps.RegisterDependency(StoreModule{})
	if _, err := deps.FlushDependencies(ctx); err != nil {
		return err
	}

	prefix := m.Prefix
	if prefix == "" {
		prefix = "Hello"
	}
	return k.Container().Register(KeyGreeter, func(c di.Container) (*Greeter, error) {
		store, err := di.Resolve[*Store](c, KeyStore)
		if err != nil {
			return nil, err
		}
		log := di.MustResolve[*logger.Logger](c, KeyLogger)
		return &Greeter{store: store, log: log.WithComponent("greeter"), prefix: prefix}, nil
	})
}

// InspectModule registers the inspect server as a component.
type InspectModule struct {
	Config inspect.Config
}

func (m *InspectModule) Load(ctx context.Context, k module.Kernel) error {
	if _, err := module.Require(ctx, k, LoggingModule{}); err != nil {
		return err
	}

	src, ok := k.(inspect.Source)
	if !ok {
		return fmt.Errorf("inspect module needs a kernel that exposes its modules, got %T", k)
	}

	cfg := m.Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := di.MustResolve[*logger.Logger](k.Container(), KeyLogger)
	return k.Components().Register(inspect.NewServer(cfg, src, log))
}

// Options feeds config into the catalog's factories.
type Options struct {
	Greeting string
	Inspect  inspect.Config
}

// Catalog returns the demo modules by name.
func Catalog(opts Options) *module.Catalog {
	return module.NewCatalog().
		Add("logging", func() module.Module { return LoggingModule{} }).
		Add("store", func() module.Module { return StoreModule{} }).
		Add("greeter", func() module.Module { return &GreeterModule{Prefix: opts.Greeting} }).
		Add("inspect", func() module.Module { return &InspectModule{Config: opts.Inspect} })
}
