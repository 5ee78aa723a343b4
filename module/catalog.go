package module

import (
	"sort"
	"sync"

	"github.com/kbukum/modkit/errors"
)

// Factory builds a fresh module instance.
type Factory func() Module

// Catalog maps configuration names to module factories so the set of root
// modules can come from a config file.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Add registers factory under name, replacing any previous factory.
func (c *Catalog) Add(name string, factory Factory) *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
	return c
}

// Names returns the registered names sorted alphabetically.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build instantiates the named modules in the given order. Unknown names
// fail with MODULE_UNKNOWN before anything is built.
func (c *Catalog) Build(names []string) ([]Module, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, name := range names {
		if _, ok := c.factories[name]; !ok {
			return nil, errors.ModuleUnknown(name)
		}
	}
	modules := make([]Module, 0, len(names))
	for _, name := range names {
		modules = append(modules, c.factories[name]())
	}
	return modules, nil
}
