package batch

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// BackendFactory creates a new backend instance.
type BackendFactory func() (Backend, error)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
)

// RegisterBackend registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
// RegisterBackend panics if factory is nil.
func RegisterBackend(name string, factory BackendFactory) {
	if factory == nil {
		panic("batch: RegisterBackend factory is nil")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// UnregisterBackend removes a backend from the registry.
// This is useful for testing.
func UnregisterBackend(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Backends returns the sorted names of registered backends.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrBackendNotRegistered is returned by OpenBackend for unknown names.
var ErrBackendNotRegistered = errors.New("batch: backend not registered")

// OpenBackend creates a backend by name.
//
// Example:
//
//	import _ "github.com/gogpu/batch/backend/wgpu"
//
//	be, err := batch.OpenBackend("wgpu")
func OpenBackend(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (forgotten import?)", ErrBackendNotRegistered, name)
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("batch: open backend %q: %w", name, err)
	}
	return b, nil
}
