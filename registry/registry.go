// Package registry implements lazy, fault-isolated discovery of capability
// providers. Providers come from pluggable sources; construction happens at
// traversal time so that one malformed entry never aborts discovery for the
// rest.
package registry

import (
	"context"
	"iter"
	"log/slog"
	"sync"

	"github.com/spindle-dev/spindle-host-sdk/capability"
)

// Resolved is one successfully constructed provider together with the
// identity of the entry that produced it.
type Resolved[I, O any] struct {
	// ID is the provider id within its source.
	ID string

	// Source names the source the provider came from.
	Source string

	// Provider is the constructed provider.
	Provider capability.Provider[I, O]
}

// Registry produces, on demand, lazy sequences of providers for a capability.
// It owns enumeration order and failure containment; it does not own provider
// state. Safe for concurrent use.
type Registry[I, O any] struct {
	mu      sync.RWMutex
	sources []Source[I, O]
	logger  *slog.Logger
}

// Option configures a Registry.
type Option[I, O any] func(*Registry[I, O])

// WithLogger sets the logger used for source enumeration diagnostics.
func WithLogger[I, O any](l *slog.Logger) Option[I, O] {
	return func(r *Registry[I, O]) {
		r.logger = l
	}
}

// WithSources seeds the registry with sources, in order.
func WithSources[I, O any](sources ...Source[I, O]) Option[I, O] {
	return func(r *Registry[I, O]) {
		r.sources = append(r.sources, sources...)
	}
}

// New creates a registry with the given options.
func New[I, O any](opts ...Option[I, O]) *Registry[I, O] {
	r := &Registry[I, O]{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddSource appends a source. Sources are scanned in registration order.
func (r *Registry[I, O]) AddSource(s Source[I, O]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, s)
}

// Load returns a lazy sequence of providers for the capability. Each step
// either yields a constructed provider or a *ConfigurationError for the entry
// that failed; a failure at one entry never prevents later entries. A fresh
// Load call re-scans from the start. Zero providers yields an empty sequence,
// which is not an error.
func (r *Registry[I, O]) Load(ctx context.Context, capabilityName string) iter.Seq2[Resolved[I, O], error] {
	r.mu.RLock()
	sources := make([]Source[I, O], len(r.sources))
	copy(sources, r.sources)
	r.mu.RUnlock()

	return func(yield func(Resolved[I, O], error) bool) {
		for _, src := range sources {
			entries, err := src.Entries(ctx, capabilityName)
			if err != nil {
				// A source that cannot enumerate is contained the same
				// way as a failing entry: surfaced once, then skipped.
				cerr := &ConfigurationError{Source: src.Name(), Err: err}
				if !yield(Resolved[I, O]{}, cerr) {
					return
				}
				continue
			}

			for _, entry := range entries {
				provider, err := entry.Construct()
				if err != nil {
					cerr := &ConfigurationError{EntryID: entry.ID, Source: entry.Source, Err: err}
					if !yield(Resolved[I, O]{}, cerr) {
						return
					}
					continue
				}

				res := Resolved[I, O]{
					ID:       entry.ID,
					Source:   entry.Source,
					Provider: provider,
				}
				if !yield(res, nil) {
					return
				}
			}
		}
	}
}
