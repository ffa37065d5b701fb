package registry

import (
	"context"
	"slices"
	"sync"

	"github.com/spindle-dev/spindle-host-sdk/capability"
)

// Thunk constructs one provider. The construction cost, and the risk of
// failure, is paid when the thunk is called, not when it is enumerated.
type Thunk[I, O any] func() (capability.Provider[I, O], error)

// Entry is a lazily realized handle to one provider. An entry may fail to
// materialize independently of other entries.
type Entry[I, O any] struct {
	// ID identifies the provider within its source.
	ID string

	// Source names the source that produced this entry.
	Source string

	// Construct realizes the provider.
	Construct Thunk[I, O]
}

// Source enumerates candidate provider entries for a capability.
// How providers advertise themselves (a manifest file, a directory scan,
// explicit registration) is the source's concern; the registry only requires
// that enumeration order is stable for a fixed configuration.
type Source[I, O any] interface {
	// Name identifies the source in entry metadata and error context.
	Name() string

	// Entries returns candidate entries for the capability, cheaply:
	// no provider construction happens here.
	Entries(ctx context.Context, capabilityName string) ([]Entry[I, O], error)
}

// StaticSource is an explicit in-process registration mechanism: callers add
// providers for the process duration. Registration order is preserved per
// capability. It is safe for concurrent use.
type StaticSource[I, O any] struct {
	name    string
	mu      sync.RWMutex
	entries map[string][]Entry[I, O]
}

// NewStaticSource creates an empty static source.
func NewStaticSource[I, O any](name string) *StaticSource[I, O] {
	return &StaticSource[I, O]{
		name:    name,
		entries: make(map[string][]Entry[I, O]),
	}
}

// Name returns the source name.
func (s *StaticSource[I, O]) Name() string {
	return s.name
}

// Register appends a provider thunk for a capability.
func (s *StaticSource[I, O]) Register(capabilityName, id string, construct Thunk[I, O]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[capabilityName] = append(s.entries[capabilityName], Entry[I, O]{
		ID:        id,
		Source:    s.name,
		Construct: construct,
	})
}

// RegisterProvider appends an already constructed provider for a capability.
func (s *StaticSource[I, O]) RegisterProvider(capabilityName, id string, p capability.Provider[I, O]) {
	s.Register(capabilityName, id, func() (capability.Provider[I, O], error) {
		return p, nil
	})
}

// Entries returns the registered entries in registration order.
func (s *StaticSource[I, O]) Entries(ctx context.Context, capabilityName string) ([]Entry[I, O], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries[capabilityName]), nil
}
