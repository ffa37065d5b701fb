package manifest

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/spindle-dev/spindle-host-sdk/capability"
	"github.com/spindle-dev/spindle-host-sdk/registry"
	"github.com/spindle-dev/spindle-host-sdk/validation"
)

// AcceptKey extracts the string an entry's accept patterns are matched
// against (typically a file path or resource name).
type AcceptKey[I any] func(input I) string

// Source turns manifest declarations into registry entries. Settings
// validation and provider construction happen inside each entry's thunk, so
// an invalid declaration surfaces as a per-entry configuration error during
// traversal instead of failing the whole manifest.
type Source[I, O any] struct {
	name        string
	manifest    *Manifest
	factories   *FactoryTable[I, O]
	validator   validation.SettingsValidator
	acceptKey   AcceptKey[I]
	constraints map[string]string
}

// SourceOption configures a Source.
type SourceOption[I, O any] func(*Source[I, O])

// WithValidator enables settings validation during construction.
func WithValidator[I, O any](v validation.SettingsValidator) SourceOption[I, O] {
	return func(s *Source[I, O]) {
		s.validator = v
	}
}

// WithAcceptKey enables glob-pattern gating of Accepts for declarations that
// carry accept patterns.
func WithAcceptKey[I, O any](key AcceptKey[I]) SourceOption[I, O] {
	return func(s *Source[I, O]) {
		s.acceptKey = key
	}
}

// WithVersionConstraint pins the acceptable version range for a capability.
// When several declarations share a provider name, the highest satisfying
// version is selected.
func WithVersionConstraint[I, O any](capabilityName, constraint string) SourceOption[I, O] {
	return func(s *Source[I, O]) {
		s.constraints[capabilityName] = constraint
	}
}

// NewSource creates a manifest-backed source.
func NewSource[I, O any](name string, m *Manifest, factories *FactoryTable[I, O], opts ...SourceOption[I, O]) *Source[I, O] {
	s := &Source[I, O]{
		name:        name,
		manifest:    m,
		factories:   factories,
		constraints: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source name.
func (s *Source[I, O]) Name() string {
	return s.name
}

// Entries enumerates declarations for the capability in declaration order.
// When a provider name appears at several versions, one declaration is
// selected per name; selection failures become entries whose construction
// fails, keeping the failure contained to that name.
func (s *Source[I, O]) Entries(ctx context.Context, capabilityName string) ([]registry.Entry[I, O], error) {
	byName := make(map[string][]ProviderDecl)
	var order []string

	for _, decl := range s.manifest.Providers {
		if decl.Capability != capabilityName || decl.Disabled {
			continue
		}
		if _, seen := byName[decl.Name]; !seen {
			order = append(order, decl.Name)
		}
		byName[decl.Name] = append(byName[decl.Name], decl)
	}

	entries := make([]registry.Entry[I, O], 0, len(order))
	for _, name := range order {
		decl, err := s.pickVersion(capabilityName, byName[name])
		entry := registry.Entry[I, O]{
			ID:     decl.EntryID(),
			Source: s.name,
		}
		if err != nil {
			// Defer the failure to construction time so it is contained
			// per-entry like any other configuration problem.
			entry.Construct = func() (capability.Provider[I, O], error) {
				return nil, err
			}
		} else {
			entry.Construct = s.thunk(decl)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Source[I, O]) pickVersion(capabilityName string, group []ProviderDecl) (ProviderDecl, error) {
	if len(group) == 1 {
		return group[0], nil
	}

	versions := make([]string, 0, len(group))
	for _, d := range group {
		versions = append(versions, d.Version)
	}

	selected, err := resolveVersion(s.constraints[capabilityName], versions)
	if err != nil {
		return group[0], fmt.Errorf("no declared version of %q satisfies the capability constraint: %w", group[0].Name, err)
	}

	for _, d := range group {
		if d.Version == selected {
			return d, nil
		}
	}
	return group[0], nil
}

func (s *Source[I, O]) thunk(decl ProviderDecl) registry.Thunk[I, O] {
	return func() (capability.Provider[I, O], error) {
		if s.validator != nil {
			res, err := s.validator.Validate(decl.Capability, decl.Settings)
			if err != nil {
				return nil, fmt.Errorf("validating settings: %w", err)
			}
			if !res.Valid {
				return nil, fmt.Errorf("invalid settings: %s", strings.Join(res.Errors, "; "))
			}
		}

		factory, ok := s.factories.Get(decl.FactoryKey())
		if !ok {
			return nil, fmt.Errorf("no factory registered for %q", decl.FactoryKey())
		}

		provider, err := factory(decl.Settings)
		if err != nil {
			return nil, err
		}

		if len(decl.Accepts) > 0 && s.acceptKey != nil {
			provider = &patternProvider[I, O]{
				inner:    provider,
				patterns: decl.Accepts,
				key:      s.acceptKey,
			}
		}
		return provider, nil
	}
}

// patternProvider gates Accepts with declared glob patterns before asking the
// wrapped provider.
type patternProvider[I, O any] struct {
	inner    capability.Provider[I, O]
	patterns []string
	key      AcceptKey[I]
}

func (p *patternProvider[I, O]) Describe() string {
	return p.inner.Describe()
}

func (p *patternProvider[I, O]) Accepts(input I) bool {
	name := p.key(input)
	for _, pattern := range p.patterns {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			continue // a malformed pattern matches nothing
		}
		if ok {
			return p.inner.Accepts(input)
		}
	}
	return false
}

func (p *patternProvider[I, O]) Process(ctx context.Context, input I) (O, error) {
	return p.inner.Process(ctx, input)
}
