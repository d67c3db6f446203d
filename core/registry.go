package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kart-io/unilog/errors"
)

// ConsoleID is the identifier of the built-in console backend.
const ConsoleID = "console"

// Registry maps backend identifiers to factories and tracks the identifier of
// the current global logger. Lookups are case-insensitive. A Registry is safe
// for concurrent use; mutations are visible to all goroutines immediately.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]*Factory
	ids       map[string]string // lower-case key -> id as registered

	defaultID string
	current   atomic.Pointer[string]
}

// NewRegistry creates an empty registry whose current id starts as defaultID.
func NewRegistry(defaultID string) *Registry {
	if defaultID == "" {
		defaultID = ConsoleID
	}
	r := &Registry{
		factories: make(map[string]*Factory),
		ids:       make(map[string]string),
		defaultID: defaultID,
	}
	r.current.Store(&defaultID)
	return r
}

// Register inserts or replaces the factory for id. It reports false, without
// registering anything, when id is empty or factory is nil.
func (r *Registry) Register(id string, factory *Factory) bool {
	if id == "" || factory == nil {
		return false
	}
	key := strings.ToLower(id)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = factory
	r.ids[key] = id
	return true
}

// Resolve returns the factory registered for id.
func (r *Registry) Resolve(id string) (*Factory, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(id)]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NewError(errors.UnsupportedBackend, id,
			fmt.Sprintf("there is no backend registered for [%s]", id), nil)
	}
	return f, nil
}

// Check resolves id and verifies that its backend is supported.
func (r *Registry) Check(id string) error {
	f, err := r.Resolve(id)
	if err != nil {
		return err
	}
	if !f.IsSupported() {
		return errors.NewError(errors.UnsupportedBackend, id,
			fmt.Sprintf("the backend registered for [%s] is not supported", id), f.initErr)
	}
	return nil
}

// SetCurrent makes id the current global logger identifier. It reports false
// and leaves the current id unchanged when id is unknown or unsupported.
func (r *Registry) SetCurrent(id string) bool {
	if err := r.Check(id); err != nil {
		return false
	}
	if *r.current.Load() != id {
		r.current.Store(&id)
	}
	return true
}

// Current returns the current global logger identifier.
func (r *Registry) Current() string {
	return *r.current.Load()
}

// DefaultID returns the identifier used for absent ids.
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// IDs returns the registered identifiers, sorted case-insensitively.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.ids))
	for _, id := range r.ids {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool {
		return strings.ToLower(ids[i]) < strings.ToLower(ids[j])
	})
	return ids
}
