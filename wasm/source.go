package wasm

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/spindle-dev/spindle-host-sdk/artifact"
	"github.com/spindle-dev/spindle-host-sdk/capability"
	"github.com/spindle-dev/spindle-host-sdk/registry"
)

// ModuleRef names one WASM module serving a capability. Either Path points
// at a local module file, or Ref names an artifact acquired through the
// artifact service.
type ModuleRef struct {
	ID     string
	Path   string
	Ref    string
	Digest string
}

// Source enumerates WASM modules as provider entries. Modules are read,
// compiled and instantiated lazily, one entry at a time, so a missing or
// corrupt module surfaces as that entry's configuration error and never
// blocks the others.
type Source struct {
	name     string
	executor *Executor
	service  *artifact.Service

	mu      sync.RWMutex
	modules map[string][]ModuleRef
}

var _ registry.Source[[]byte, []byte] = (*Source)(nil)

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithArtifactService enables artifact-backed module references.
func WithArtifactService(svc *artifact.Service) SourceOption {
	return func(s *Source) { s.service = svc }
}

// NewSource creates a WASM module source backed by the executor.
func NewSource(name string, executor *Executor, opts ...SourceOption) *Source {
	s := &Source{
		name:     name,
		executor: executor,
		modules:  make(map[string][]ModuleRef),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source name.
func (s *Source) Name() string {
	return s.name
}

// AddModule registers a local module file for a capability.
func (s *Source) AddModule(capabilityName, id, path string) {
	s.add(capabilityName, ModuleRef{ID: id, Path: path})
}

// AddArtifact registers an artifact-backed module for a capability. The
// artifact is acquired, verified and cached on first construction.
func (s *Source) AddArtifact(capabilityName, id, ref, digest string) {
	s.add(capabilityName, ModuleRef{ID: id, Ref: ref, Digest: digest})
}

func (s *Source) add(capabilityName string, ref ModuleRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[capabilityName] = append(s.modules[capabilityName], ref)
}

// Entries returns one lazily constructed entry per registered module, in
// registration order.
func (s *Source) Entries(ctx context.Context, capabilityName string) ([]registry.Entry[[]byte, []byte], error) {
	s.mu.RLock()
	refs := slices.Clone(s.modules[capabilityName])
	s.mu.RUnlock()

	entries := make([]registry.Entry[[]byte, []byte], 0, len(refs))
	for _, ref := range refs {
		entries = append(entries, registry.Entry[[]byte, []byte]{
			ID:        ref.ID,
			Source:    s.name,
			Construct: s.thunk(ctx, capabilityName, ref),
		})
	}
	return entries, nil
}

// thunk builds the construction closure for one module reference.
func (s *Source) thunk(ctx context.Context, capabilityName string, ref ModuleRef) registry.Thunk[[]byte, []byte] {
	return func() (capability.Provider[[]byte, []byte], error) {
		path, err := s.modulePath(ctx, ref)
		if err != nil {
			return nil, err
		}

		moduleBytes, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading module %q: %w", path, err)
		}

		provider, err := s.executor.Load(ctx, moduleBytes)
		if err != nil {
			return nil, fmt.Errorf("loading module %q: %w", ref.ID, err)
		}

		if declared := provider.Capability(); declared != "" && declared != capabilityName {
			_ = provider.Close(ctx)
			return nil, fmt.Errorf("module %q declares capability %q, want %q",
				ref.ID, declared, capabilityName)
		}

		return provider, nil
	}
}

// modulePath resolves a reference to a local module file.
func (s *Source) modulePath(ctx context.Context, ref ModuleRef) (string, error) {
	if ref.Path != "" {
		return ref.Path, nil
	}

	if s.service == nil {
		return "", fmt.Errorf("module %q: artifact reference given but no artifact service configured", ref.ID)
	}

	artifactRef, err := artifact.ParseReference(ref.Ref)
	if err != nil {
		return "", fmt.Errorf("module %q: %w", ref.ID, err)
	}

	var expected artifact.Digest
	if ref.Digest != "" {
		expected, err = artifact.ParseDigest(ref.Digest)
		if err != nil {
			return "", fmt.Errorf("module %q: %w", ref.ID, err)
		}
	}

	_, path, err := s.service.Acquire(ctx, artifactRef, expected)
	if err != nil {
		return "", fmt.Errorf("module %q: %w", ref.ID, err)
	}
	return path, nil
}
