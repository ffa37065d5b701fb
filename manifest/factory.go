package manifest

import (
	"fmt"
	"sync"

	"github.com/spindle-dev/spindle-host-sdk/capability"
)

// Factory constructs a provider from its declared settings.
type Factory[I, O any] func(settings map[string]any) (capability.Provider[I, O], error)

// FactoryTable maps factory keys (the `uses` field of a declaration) to
// constructors. Factories register once at startup; the table is safe for
// concurrent use afterwards.
type FactoryTable[I, O any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[I, O]
}

// NewFactoryTable creates an empty factory table.
func NewFactoryTable[I, O any]() *FactoryTable[I, O] {
	return &FactoryTable[I, O]{
		factories: make(map[string]Factory[I, O]),
	}
}

// Register adds a factory under the given key.
func (t *FactoryTable[I, O]) Register(key string, f Factory[I, O]) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.factories[key]; exists {
		return fmt.Errorf("factory already registered: %s", key)
	}
	t.factories[key] = f
	return nil
}

// Get returns the factory for the key.
func (t *FactoryTable[I, O]) Get(key string) (Factory[I, O], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.factories[key]
	return f, ok
}
