package backend

import (
	"fmt"
	"slices"
	"sync"

	"github.com/c360/scopelink/errors"
)

// Registry maps backend names to factories. It is built once at startup
// and passed explicitly to consumers; no package-level registry exists.
// Registration order is preserved for Names(). Re-registering a name
// replaces its factory but keeps its original position.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	order     []string
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register associates a backend name with a factory. The last
// registration for a given name wins.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register",
			"backend name validation")
	}
	if factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register",
			"factory validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		r.order = append(r.order, name)
	}
	r.factories[name] = factory
	return nil
}

// Names returns the registered backend names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Resolve returns a fresh instance of the named backend.
func (r *Registry) Resolve(name string) (Backend, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.WrapInvalid(errors.ErrUnknownBackend, "Registry", "Resolve",
			fmt.Sprintf("lookup of %q", name))
	}
	return factory(), nil
}
