package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/di"
	"github.com/kbukum/modkit/kernel"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/module"
)

// App is an application built from modules. C is the config type.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Kernel     *kernel.Kernel
	Container  di.Container
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	modules         []module.Module
	gracefulTimeout time.Duration
	summaryOut      io.Writer
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates an application from a typed config. It applies defaults,
// validates the config, initializes the logger and builds the kernel.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
		summaryOut:      os.Stdout,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.summaryOut != nil {
		app.summaryOut = o.summaryOut
	}
	if o.quiet {
		app.summaryOut = nil
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	kopts := []kernel.Option{
		kernel.WithName(base.Name),
		kernel.WithLogger(app.Logger.WithComponent("kernel")),
	}
	if o.container != nil {
		kopts = append(kopts, kernel.WithContainer(o.container))
	}
	if o.metrics != nil {
		kopts = append(kopts, kernel.WithMetrics(o.metrics))
	}
	app.Kernel = kernel.New(kopts...)
	app.Container = app.Kernel.Container()
	app.Components = app.Kernel.Components()

	app.Summary = NewSummary(base.Name, base.Version)
	return app, nil
}

// UseModules appends root modules. They load in order at startup.
func (a *App[C]) UseModules(mods ...module.Module) {
	a.modules = append(a.modules, mods...)
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback that runs after modules are loaded and
// components started. Callbacks can resolve anything the modules bound.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the lifecycle of a long-running service and blocks until a
// shutdown signal or ctx cancellation.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		a.abort()
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask runs task with the full startup and shutdown around it. The
// task context is canceled on SIGINT/SIGTERM.
//
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    return printModules(app.Kernel.Modules())
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		a.abort()
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
		"modules", len(a.modules),
	))

	if err := a.loadModules(ctx); err != nil {
		return fmt.Errorf("module loading failed: %w", err)
	}

	if err := a.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()
	return nil
}

// loadModules loads root modules one at a time. A root that an earlier
// root already pulled in as a dependency is skipped.
func (a *App[C]) loadModules(ctx context.Context) error {
	a.Logger.Info("Phase 1: Loading modules", logger.Fields(logger.FieldCount, len(a.modules)))

	for _, m := range a.modules {
		id := module.ID(m)
		if a.Kernel.HasModule(id) {
			a.Summary.TrackSkipped(id)
			a.Logger.Debug("Root module already loaded", logger.Fields(logger.FieldModule, id))
			continue
		}
		if err := a.Kernel.Load(ctx, m); err != nil {
			return err
		}
	}

	a.Logger.Info("Phase 1: Modules loaded", logger.Fields(logger.FieldCount, len(a.Kernel.Modules())))
	return nil
}

func (a *App[C]) initialize(ctx context.Context) error {
	a.Logger.Info("Phase 2: Starting components")

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	a.Logger.Info("Phase 2: All components started")
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Phase 3: Running configuration callbacks", logger.Fields(logger.FieldCount, len(a.onConfigure)))

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}

	a.Logger.Info("Phase 3: Configuration complete")
	return nil
}

// DisplaySummary prints the startup summary unless it was disabled.
func (a *App[C]) DisplaySummary() {
	if a.summaryOut == nil {
		return
	}
	a.Summary.Render(a.summaryOut, a.Kernel)
}

// WaitForSignal blocks until SIGINT/SIGTERM or ctx cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// abort tears down whatever a failed startup left behind.
func (a *App[C]) abort() {
	if err := a.stop(); err != nil {
		a.Logger.Warn("Cleanup after failed startup reported errors", logger.Fields(logger.FieldError, err.Error()))
	}
}

// stop runs OnStop hooks, stops components, unloads modules in reverse
// load order and closes the container, all within the graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	keep := func(err error) {
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		keep(err)
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Component shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		keep(err)
	}

	if err := a.Kernel.UnloadAll(ctx); err != nil {
		a.Logger.Error("Module unload completed with errors", logger.Fields(logger.FieldError, err.Error()))
		keep(err)
	}

	if err := a.Container.Close(); err != nil {
		a.Logger.Error("DI container close error", logger.Fields(logger.FieldError, err.Error()))
		keep(err)
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
