// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package provider implements a generic factory registry for pluggable backends.
//
// The document source (filestore) and the result store each create a typed
// Registry, and implementations self-register via init(). Blank-import an
// implementation package to activate it, then call Registry.New(name, params)
// to instantiate:
//
//	import _ "github.com/leseb/docparse/pkg/storage/sqlite"
//
//	store, err := storage.Providers.New(ctx, "sqlite", provider.Params{"dsn": "out.db"})
package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Params carries backend configuration as flat string keys.
type Params map[string]string

// Get returns the value for key, or def when the key is missing or empty.
func (p Params) Get(key, def string) string {
	if v := p[key]; v != "" {
		return v
	}
	return def
}

// Require returns the value for key or an error naming the missing key.
func (p Params) Require(key string) (string, error) {
	v := p[key]
	if v == "" {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	return v, nil
}

// Factory is a constructor function that creates a backend instance from
// params. Implementations extract the keys they need and ignore the rest.
type Factory[T any] func(ctx context.Context, params Params) (T, error)

// Registry is a thread-safe registry of named factory functions for a
// given backend interface T.
type Registry[T any] struct {
	subsystem string
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry creates a new Registry. The subsystem name is used in error
// messages (e.g. "file_store", "result_store").
func NewRegistry[T any](subsystem string) *Registry[T] {
	return &Registry[T]{
		subsystem: subsystem,
		factories: make(map[string]Factory[T]),
	}
}

// Register adds a named factory. Panics if the name is already registered.
func (r *Registry[T]) Register(name string, f Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("provider: %s backend %q already registered", r.subsystem, name))
	}
	r.factories[name] = f
}

// New creates a backend instance by name. Returns an error if the name
// is not registered or the factory fails.
func (r *Registry[T]) New(ctx context.Context, name string, params Params) (T, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s provider: %q (available: %v)", r.subsystem, name, r.Available())
	}
	if params == nil {
		params = Params{}
	}
	v, err := f(ctx, params)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", r.subsystem, name, err)
	}
	return v, nil
}

// Available returns the sorted list of registered backend names.
func (r *Registry[T]) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
