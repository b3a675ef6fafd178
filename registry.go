// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cfgtree

import (
	"maps"
	"slices"
	"sync"
)

// Registry maps names to constructors, which allows configuration
// sources to select a constructor with a string class value, e.g.
//
//	server:
//	  class: http.Server
//	  addr: :8080
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry returns an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		ctors: make(map[string]Constructor),
	}
}

// Register adds ctor under the given name. Names may only be registered once.
func (r *Registry) Register(name string, ctor Constructor) error {
	if name == "" {
		return RegistrationError{Name: name, Reason: "name must not be empty"}
	}
	if ctor == nil {
		return RegistrationError{Name: name, Reason: "constructor must not be nil"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ctors[name]; exists {
		return RegistrationError{Name: name, Reason: "already registered"}
	}
	r.ctors[name] = ctor
	return nil
}

// MustRegister is like [Registry.Register] but panics on error.
func (r *Registry) MustRegister(name string, ctor Constructor) {
	err := r.Register(name, ctor)
	if err != nil {
		panic(err)
	}
}

// Lookup returns the constructor registered under name.
func (r *Registry) Lookup(name string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ctor, ok := r.ctors[name]
	return ctor, ok
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.ctors))
}
