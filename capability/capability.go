// Package capability defines the contract between the host and capability
// providers. A capability is a named set of operations; a provider is one
// concrete implementation of that contract, registered independently of the
// host core.
package capability

import "context"

// Interface describes a capability contract that providers implement.
type Interface struct {
	// Name is the capability identifier (e.g. "thumbnail", "archive").
	Name string

	// Description is a human-readable explanation of the capability.
	Description string

	// ConfigModel is an optional Go struct used to derive the JSON schema
	// for provider settings of this capability. May be nil.
	ConfigModel any
}

// Provider is the contract every capability provider must satisfy.
// Accepts is expected to be a fast, side-effect-light predicate; Process
// performs the actual work and reports its own failures unmodified.
type Provider[I, O any] interface {
	// Describe returns a human-readable description of the provider.
	Describe() string

	// Accepts reports whether this provider can handle the input.
	Accepts(input I) bool

	// Process handles the input. Errors are the provider's own and are
	// propagated to the caller without interpretation.
	Process(ctx context.Context, input I) (O, error)
}

// ProviderFunc adapts plain functions to the Provider interface.
type ProviderFunc[I, O any] struct {
	Description string
	AcceptsFunc func(input I) bool
	ProcessFunc func(ctx context.Context, input I) (O, error)
}

// Describe returns the provider description.
func (p ProviderFunc[I, O]) Describe() string {
	return p.Description
}

// Accepts reports whether the provider can handle the input.
// A nil AcceptsFunc accepts everything.
func (p ProviderFunc[I, O]) Accepts(input I) bool {
	if p.AcceptsFunc == nil {
		return true
	}
	return p.AcceptsFunc(input)
}

// Process invokes the wrapped processing function.
func (p ProviderFunc[I, O]) Process(ctx context.Context, input I) (O, error) {
	return p.ProcessFunc(ctx, input)
}
