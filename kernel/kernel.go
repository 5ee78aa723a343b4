package kernel

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/di"
	"github.com/kbukum/modkit/errors"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/module"
	"github.com/kbukum/modkit/observability"
)

const defaultName = "default"

// Info describes a loaded module.
type Info struct {
	ID         string        `json:"id"`
	Order      int           `json:"order"`
	BatchID    string        `json:"batch_id"`
	RequiredBy string        `json:"required_by,omitempty"`
	LoadedAt   time.Time     `json:"loaded_at"`
	Duration   time.Duration `json:"duration_ns"`
	Bindings   []string      `json:"bindings"`
}

type entry struct {
	module  module.Module
	info    Info
	loading bool
}

// Kernel is a module host backed by a DI container and a component registry.
type Kernel struct {
	name       string
	container  di.Container
	components *component.Registry
	log        *logger.Logger
	metrics    *observability.KernelMetrics
	tracer     trace.Tracer

	mu      sync.RWMutex
	entries []*entry
	lookup  map[string]*entry
	seq     int
}

var _ module.Kernel = (*Kernel)(nil)

// New creates a kernel with an empty container and component registry
// unless options supply them.
func New(opts ...Option) *Kernel {
	k := &Kernel{
		name:   defaultName,
		lookup: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.container == nil {
		k.container = di.NewContainer()
	}
	if k.components == nil {
		k.components = component.NewRegistry()
	}
	if k.log == nil {
		k.log = logger.Get("kernel")
	}
	if k.tracer == nil {
		k.tracer = observability.Tracer(observability.InstrumentationName)
	}
	k.log = k.log.WithFields(logger.Fields(logger.FieldKernel, k.name))
	return k
}

// Name returns the kernel name.
func (k *Kernel) Name() string { return k.name }

// Container returns the unscoped container.
func (k *Kernel) Container() di.Container { return k.container }

// Components returns the component registry.
func (k *Kernel) Components() *component.Registry { return k.components }

// HasModule reports whether id is loaded or currently loading.
func (k *Kernel) HasModule(id string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.lookup[id]
	return ok
}

// Load loads modules in order. It stops at the first module that is
// already loaded or fails; modules before it stay loaded.
func (k *Kernel) Load(ctx context.Context, modules ...module.Module) error {
	if len(modules) == 0 {
		return nil
	}

	batchID := uuid.NewString()
	parent := parentFrom(ctx)

	ctx, span := k.tracer.Start(ctx, observability.SpanKernelLoad, trace.WithAttributes(
		attribute.String(observability.AttrKernel, k.name),
		attribute.String(observability.AttrBatchID, batchID),
		attribute.Int(observability.AttrBatch, len(modules)),
		attribute.String(observability.AttrParent, parent),
	))
	defer span.End()

	if k.metrics != nil {
		k.metrics.RecordBatch(ctx, k.name, len(modules))
	}
	k.log.Debug("loading batch", logger.Fields(
		logger.FieldBatchID, batchID,
		logger.FieldCount, len(modules),
		"required_by", parent,
	))

	for _, m := range modules {
		if err := k.loadOne(ctx, m, batchID, parent); err != nil {
			observability.SetSpanError(span, err)
			return err
		}
	}
	return nil
}

func (k *Kernel) loadOne(ctx context.Context, m module.Module, batchID, parent string) error {
	if m == nil {
		return errors.Internal(fmt.Errorf("kernel %s: nil module in batch %s", k.name, batchID))
	}
	id := module.ID(m)

	e, err := k.reserve(id, m, batchID, parent)
	if err != nil {
		k.recordFailure(ctx, id, err)
		k.log.Warn("module rejected", logger.Fields(
			logger.FieldModule, id,
			logger.FieldBatchID, batchID,
			logger.FieldError, err.Error(),
		))
		return err
	}

	ctx, span := k.tracer.Start(ctx, observability.SpanModuleLoad, trace.WithAttributes(
		attribute.String(observability.AttrModule, id),
		attribute.String(observability.AttrBatchID, batchID),
	))
	defer span.End()

	start := time.Now()
	loadErr := m.Load(withParent(ctx, id), &scope{Kernel: k, id: id})
	elapsed := time.Since(start)

	if loadErr != nil {
		released := k.container.Release(id)
		k.mu.Lock()
		delete(k.lookup, id)
		k.mu.Unlock()

		err := loadFailure(id, loadErr)
		observability.SetSpanError(span, err)
		k.recordFailure(ctx, id, err)
		k.log.Error("module load failed", logger.Fields(
			logger.FieldModule, id,
			logger.FieldBatchID, batchID,
			logger.FieldDuration, elapsed.Milliseconds(),
			"released", len(released),
			logger.FieldError, loadErr.Error(),
		))
		return err
	}

	k.mu.Lock()
	e.loading = false
	e.info.Order = k.seq
	e.info.LoadedAt = start
	e.info.Duration = elapsed
	k.seq++
	k.entries = append(k.entries, e)
	k.mu.Unlock()

	if k.metrics != nil {
		k.metrics.RecordLoad(ctx, k.name, id, elapsed)
	}
	k.log.Info("module loaded", logger.Fields(
		logger.FieldModule, id,
		logger.FieldBatchID, batchID,
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	return nil
}

// reserve claims id for m before its Load runs.
func (k *Kernel) reserve(id string, m module.Module, batchID, parent string) (*entry, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, exists := k.lookup[id]; exists {
		return nil, errors.ModuleAlreadyLoaded(id)
	}
	e := &entry{
		module:  m,
		loading: true,
		info: Info{
			ID:         id,
			BatchID:    batchID,
			RequiredBy: parent,
		},
	}
	k.lookup[id] = e
	return e, nil
}

// loadFailure wraps a module's error unless it already reports a failed
// module load, which happens when a dependency failed first.
func loadFailure(id string, err error) error {
	if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeModuleLoadFailed {
		return err
	}
	return errors.ModuleLoadFailed(id, err)
}

func (k *Kernel) recordFailure(ctx context.Context, id string, err error) {
	if k.metrics == nil {
		return
	}
	reason := string(errors.ErrCodeInternal)
	if appErr, ok := errors.AsAppError(err); ok {
		reason = string(appErr.Code)
	}
	k.metrics.RecordFailure(ctx, k.name, id, reason)
}

// Unload unloads a loaded module: it runs the module's Unload when it
// implements module.Unloader and then releases the module's bindings.
func (k *Kernel) Unload(ctx context.Context, id string) error {
	k.mu.RLock()
	e, ok := k.lookup[id]
	k.mu.RUnlock()
	if !ok || e.loading {
		return errors.ModuleNotLoaded(id)
	}

	ctx, span := k.tracer.Start(ctx, observability.SpanModuleUnload, trace.WithAttributes(
		attribute.String(observability.AttrKernel, k.name),
		attribute.String(observability.AttrModule, id),
	))
	defer span.End()

	if u, ok := e.module.(module.Unloader); ok {
		if err := u.Unload(ctx, &scope{Kernel: k, id: id}); err != nil {
			observability.SetSpanError(span, err)
			return fmt.Errorf("unload module %s: %w", id, err)
		}
	}

	released := k.container.Release(id)

	k.mu.Lock()
	delete(k.lookup, id)
	k.entries = slices.DeleteFunc(k.entries, func(x *entry) bool { return x == e })
	k.mu.Unlock()

	if k.metrics != nil {
		k.metrics.RecordUnload(ctx, k.name, id)
	}
	k.log.Info("module unloaded", logger.Fields(
		logger.FieldModule, id,
		"released", len(released),
	))
	return nil
}

// UnloadAll unloads every module in reverse load order and returns the
// joined errors. Modules whose Unload fails stay loaded.
func (k *Kernel) UnloadAll(ctx context.Context) error {
	infos := k.Modules()
	var errs []error
	for i := len(infos) - 1; i >= 0; i-- {
		if err := k.Unload(ctx, infos[i].ID); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Modules returns the loaded modules in load order. A module's
// dependencies finish loading before it does, so they come first.
func (k *Kernel) Modules() []Info {
	owned := k.bindingsByOwner()

	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make([]Info, 0, len(k.entries))
	for _, e := range k.entries {
		info := e.info
		info.Bindings = owned[info.ID]
		out = append(out, info)
	}
	return out
}

// Get returns the info for a loaded module.
func (k *Kernel) Get(id string) (Info, bool) {
	k.mu.RLock()
	e, ok := k.lookup[id]
	if !ok || e.loading {
		k.mu.RUnlock()
		return Info{}, false
	}
	info := e.info
	k.mu.RUnlock()

	info.Bindings = k.bindingsByOwner()[id]
	return info, true
}

func (k *Kernel) bindingsByOwner() map[string][]string {
	owned := make(map[string][]string)
	for _, r := range k.container.Registrations() {
		if r.Owner != "" {
			owned[r.Owner] = append(owned[r.Owner], r.Key)
		}
	}
	return owned
}

// scope is the kernel as seen by one module: bindings it registers are
// owned by that module.
type scope struct {
	*Kernel
	id string
}

func (s *scope) Container() di.Container { return s.Kernel.container.Scoped(s.id) }

type parentKey struct{}

func withParent(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, parentKey{}, id)
}

func parentFrom(ctx context.Context) string {
	id, _ := ctx.Value(parentKey{}).(string)
	return id
}
