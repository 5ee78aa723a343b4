package module

import (
	"context"
	"slices"

	"github.com/kbukum/modkit/logger"
)

// DependencyAware is the two-phase contract of a module with dependencies:
// register candidates, then flush them into the host once.
type DependencyAware interface {
	// RegisterDependency keeps candidate unless the host already has a
	// module with its identity. It reports whether candidate was kept.
	RegisterDependency(candidate Module) bool
	// FlushDependencies loads every kept candidate in one batch and
	// returns how many were submitted.
	FlushDependencies(ctx context.Context) (int, error)
}

var _ DependencyAware = (*Dependencies)(nil)

// Dependencies is the ordered dependency list of one module. It is owned
// by that module and is not safe for concurrent use.
type Dependencies struct {
	host    Host
	modules []Module
}

// NewDependencies returns an empty list that checks against and loads
// into host. It panics if host is nil.
func NewDependencies(host Host) *Dependencies {
	if host == nil {
		panic("module: NewDependencies called with nil host")
	}
	return &Dependencies{host: host, modules: make([]Module, 0)}
}

// RegisterDependency appends candidate to the list unless
// host.HasModule(ID(candidate)) is true, in which case the list is left
// unchanged. The list is never re-checked later, so two candidates with
// one identity both survive if the host had neither when they were
// registered. It panics if candidate is nil.
func (d *Dependencies) RegisterDependency(candidate Module) bool {
	if isNil(candidate) {
		panic("module: RegisterDependency called with nil module")
	}

	id := ID(candidate)
	if d.host.HasModule(id) {
		logger.Get("module").Debug("dependency already loaded, skipping", logger.Fields(logger.FieldModule, id))
		return false
	}
	d.modules = append(d.modules, candidate)
	return true
}

// FlushDependencies calls host.Load once with the whole list and returns
// the number of modules submitted along with the host's error, unchanged.
// An empty list returns (0, nil) without calling the host. The list is
// not cleared, so a second flush submits it again.
func (d *Dependencies) FlushDependencies(ctx context.Context) (int, error) {
	if len(d.modules) == 0 {
		return 0, nil
	}
	batch := slices.Clone(d.modules)
	return len(batch), d.host.Load(ctx, batch...)
}

// Modules returns a copy of the list in registration order.
func (d *Dependencies) Modules() []Module {
	return slices.Clone(d.modules)
}

// Len returns the number of modules in the list.
func (d *Dependencies) Len() int { return len(d.modules) }

// Require registers deps in order against host and flushes them.
func Require(ctx context.Context, host Host, deps ...Module) (int, error) {
	d := NewDependencies(host)
	for _, dep := range deps {
		d.RegisterDependency(dep)
	}
	return d.FlushDependencies(ctx)
}
