package module

import (
	"context"
	"reflect"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/di"
)

// Module is a unit of configuration. Load is called by a host exactly
// once per successful load; modules bind their services there.
type Module interface {
	Load(ctx context.Context, k Kernel) error
}

// Identifier lets a module choose its own identity instead of its type name.
type Identifier interface {
	ModuleID() string
}

// Unloader is implemented by modules that need to clean up when unloaded.
type Unloader interface {
	Unload(ctx context.Context, k Kernel) error
}

// Host is the container state a Dependencies value consults and loads into.
type Host interface {
	// HasModule reports whether a module with this identity is loaded.
	// It must be free of side effects.
	HasModule(id string) bool
	// Load loads modules in order. Errors come from the modules' own
	// Load and are returned to the caller.
	Load(ctx context.Context, modules ...Module) error
}

// Kernel is the host as seen by a loading module.
type Kernel interface {
	Host
	Container() di.Container
	Components() *component.Registry
}

// ID returns the identity of m: ModuleID() when m implements Identifier,
// otherwise the fully-qualified name of its concrete type with pointer
// indirections removed, e.g. "github.com/acme/app/store.Module".
func ID(m Module) string {
	if ident, ok := m.(Identifier); ok {
		return ident.ModuleID()
	}
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// isNil reports whether m is nil or a typed nil pointer.
func isNil(m Module) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// LoadFunc is the signature of a module's Load.
type LoadFunc func(ctx context.Context, k Kernel) error

type funcModule struct {
	id   string
	load LoadFunc
}

// New returns a module with an explicit identity backed by a function.
// A nil load binds nothing.
func New(id string, load LoadFunc) Module {
	return &funcModule{id: id, load: load}
}

func (m *funcModule) ModuleID() string { return m.id }

func (m *funcModule) Load(ctx context.Context, k Kernel) error {
	if m.load == nil {
		return nil
	}
	return m.load(ctx, k)
}
