package demo

import (
	"slices"
	"sync"

	"github.com/kbukum/modkit/logger"
)

// Store is an in-memory key/value store.
type Store struct {
	mu     sync.RWMutex
	data   map[string]int
	log    *logger.Logger
	closed bool
}

// NewStore returns an empty store.
func NewStore(log *logger.Logger) *Store {
	return &Store{data: make(map[string]int), log: log}
}

// Incr adds one to key and returns the new value.
func (s *Store) Incr(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key]++
	return s.data[key]
}

// Get returns the value of key.
func (s *Store) Get(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}

// Keys returns the stored keys, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Close drops the data. The container calls it when the store module is
// unloaded.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Debug("store closed", logger.Fields(logger.FieldCount, len(s.data)))
	s.data = make(map[string]int)
	s.closed = true
	return nil
}

// Closed reports whether Close ran.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Greeter greets people and counts how often it greeted each.
type Greeter struct {
	store  *Store
	log    *logger.Logger
	prefix string
}

// Greet returns a greeting for name.
func (g *Greeter) Greet(name string) string {
	n := g.store.Incr("greet:" + name)
	g.log.Info("greeted", logger.Fields("name", name, logger.FieldCount, n))
	if n > 1 {
		return g.prefix + " again, " + name + "!"
	}
	return g.prefix + ", " + name + "!"
}
