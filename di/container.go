package di

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/kbukum/modkit/errors"
	"github.com/kbukum/modkit/logger"
)

// RegistrationMode determines how a binding is resolved.
type RegistrationMode int

const (
	Lazy      RegistrationMode = iota // construct on first resolve
	Eager                             // construct at registration
	Singleton                         // pre-created instance
)

func (m RegistrationMode) String() string {
	switch m {
	case Lazy:
		return "lazy"
	case Eager:
		return "eager"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// Container is the binding registry modules register services into.
type Container interface {
	Register(key string, constructor interface{}) error
	RegisterEager(key string, constructor interface{}) error
	RegisterSingleton(key string, instance interface{}) error
	Resolve(key string) (interface{}, error)
	Has(key string) bool

	// Scoped returns a view whose registrations are owned by owner.
	Scoped(owner string) Container
	// Release removes every binding owned by owner and returns their keys.
	Release(owner string) []string

	Registrations() []RegistrationInfo
	Close() error
}

// RegistrationInfo describes a binding for introspection.
type RegistrationInfo struct {
	Key         string           `json:"key"`
	Owner       string           `json:"owner,omitempty"`
	Mode        RegistrationMode `json:"-"`
	ModeName    string           `json:"mode"`
	Initialized bool             `json:"initialized"`
}

type binding struct {
	key         string
	owner       string
	constructor interface{}
	mode        RegistrationMode
	mu          sync.Mutex
	instance    interface{}
	initialized bool
}

// UnifiedContainer is the default Container implementation.
type UnifiedContainer struct {
	bindings map[string]*binding
	mu       sync.RWMutex
	log      *logger.Logger
}

// scoped is a Container view that stamps an owner on registrations.
type scoped struct {
	*UnifiedContainer
	owner string
}

// NewContainer creates an empty container.
func NewContainer() *UnifiedContainer {
	return &UnifiedContainer{
		bindings: make(map[string]*binding),
		log:      logger.Get("di"),
	}
}

// Register binds a lazily constructed component.
func (c *UnifiedContainer) Register(key string, constructor interface{}) error {
	return c.register("", key, constructor)
}

// RegisterEager binds a component and constructs it immediately.
func (c *UnifiedContainer) RegisterEager(key string, constructor interface{}) error {
	return c.registerEager("", key, constructor)
}

// RegisterSingleton binds a pre-created instance.
func (c *UnifiedContainer) RegisterSingleton(key string, instance interface{}) error {
	return c.add(&binding{key: key, instance: instance, mode: Singleton, initialized: true})
}

// Scoped returns a view whose registrations are owned by owner.
func (c *UnifiedContainer) Scoped(owner string) Container {
	return &scoped{UnifiedContainer: c, owner: owner}
}

func (s *scoped) Register(key string, constructor interface{}) error {
	return s.register(s.owner, key, constructor)
}

func (s *scoped) RegisterEager(key string, constructor interface{}) error {
	return s.registerEager(s.owner, key, constructor)
}

func (s *scoped) RegisterSingleton(key string, instance interface{}) error {
	return s.add(&binding{key: key, owner: s.owner, instance: instance, mode: Singleton, initialized: true})
}

func (s *scoped) Scoped(owner string) Container {
	return s.UnifiedContainer.Scoped(owner)
}

func (c *UnifiedContainer) register(owner, key string, constructor interface{}) error {
	if err := checkConstructor(constructor); err != nil {
		return err
	}
	return c.add(&binding{key: key, owner: owner, constructor: constructor, mode: Lazy})
}

func (c *UnifiedContainer) registerEager(owner, key string, constructor interface{}) error {
	if err := checkConstructor(constructor); err != nil {
		return err
	}
	// Construct before taking the lock; the constructor may resolve.
	instance, err := c.callConstructor(constructor)
	if err != nil {
		return errors.BindingFailed(key, err)
	}
	return c.add(&binding{key: key, owner: owner, constructor: constructor, mode: Eager, instance: instance, initialized: true})
}

func (c *UnifiedContainer) add(b *binding) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.bindings[b.key]; ok {
		return errors.BindingConflict(b.key, existing.owner)
	}
	c.bindings[b.key] = b

	c.log.Debug("binding registered", logger.Fields(
		logger.FieldBinding, b.key,
		logger.FieldOwner, b.owner,
		"mode", b.mode.String(),
	))
	return nil
}

// Has reports whether key is bound.
func (c *UnifiedContainer) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[key]
	return ok
}

// Resolve returns the instance bound to key, constructing it if lazy.
func (c *UnifiedContainer) Resolve(key string) (interface{}, error) {
	c.mu.RLock()
	b, ok := c.bindings[key]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.BindingNotFound(key)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return b.instance, nil
	}

	instance, err := c.callConstructor(b.constructor)
	if err != nil {
		c.log.Debug("lazy binding failed", logger.Fields(logger.FieldBinding, key, logger.FieldError, err.Error()))
		return nil, errors.BindingFailed(key, err)
	}
	b.instance = instance
	b.initialized = true
	return instance, nil
}

// Release removes every binding owned by owner, closing initialized
// instances that implement Close() error. Keys are returned sorted.
func (c *UnifiedContainer) Release(owner string) []string {
	c.mu.Lock()
	var released []*binding
	for key, b := range c.bindings {
		if b.owner == owner {
			released = append(released, b)
			delete(c.bindings, key)
		}
	}
	c.mu.Unlock()

	keys := make([]string, 0, len(released))
	for _, b := range released {
		keys = append(keys, b.key)
		closeInstance(b, c.log)
	}
	sort.Strings(keys)

	if len(keys) > 0 {
		c.log.Debug("bindings released", logger.Fields(logger.FieldOwner, owner, logger.FieldCount, len(keys)))
	}
	return keys
}

// Registrations returns every binding sorted by key.
func (c *UnifiedContainer) Registrations() []RegistrationInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]RegistrationInfo, 0, len(c.bindings))
	for _, b := range c.bindings {
		b.mu.Lock()
		result = append(result, RegistrationInfo{
			Key:         b.key,
			Owner:       b.owner,
			Mode:        b.mode,
			ModeName:    b.mode.String(),
			Initialized: b.initialized,
		})
		b.mu.Unlock()
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// Close closes every initialized lazy or eager instance that implements
// Close() error. Singletons are owned by whoever created them.
func (c *UnifiedContainer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, b := range c.bindings {
		if b.mode == Singleton {
			continue
		}
		if err := closeInstance(b, c.log); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", b.key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}
	return nil
}

func closeInstance(b *binding, log *logger.Logger) error {
	if !b.initialized || b.instance == nil {
		return nil
	}
	closer, ok := b.instance.(interface{ Close() error })
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		log.Warn("binding close failed", logger.Fields(logger.FieldBinding, b.key, logger.FieldError, err.Error()))
		return err
	}
	return nil
}

var (
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	containerType = reflect.TypeOf((*Container)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)

// checkConstructor rejects anything callConstructor cannot call.
func checkConstructor(constructor interface{}) error {
	fn := reflect.ValueOf(constructor)
	if fn.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function, got %T", constructor)
	}
	ft := fn.Type()
	switch ft.NumIn() {
	case 0:
	case 1:
		if ft.In(0) != contextType && ft.In(0) != containerType {
			return fmt.Errorf("constructor parameter must be context.Context or di.Container, got %s", ft.In(0))
		}
	default:
		return fmt.Errorf("constructor must take at most one parameter, got %d", ft.NumIn())
	}
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return fmt.Errorf("constructor second result must be error, got %s", ft.Out(1))
		}
	default:
		return fmt.Errorf("constructor must return (instance) or (instance, error)")
	}
	return nil
}

func (c *UnifiedContainer) callConstructor(constructor interface{}) (interface{}, error) {
	fn := reflect.ValueOf(constructor)
	ft := fn.Type()

	var args []reflect.Value
	if ft.NumIn() == 1 {
		if ft.In(0) == contextType {
			args = []reflect.Value{reflect.ValueOf(context.Background())}
		} else {
			args = []reflect.Value{reflect.ValueOf(Container(c))}
		}
	}

	results := fn.Call(args)
	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}
