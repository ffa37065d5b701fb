// Package policy controls which providers the dispatcher may select.
package policy

// Policy decides whether a provider may be considered for dispatch.
type Policy interface {
	// Check reports whether the provider is allowed and notifies the
	// denial handler on a deny.
	Check(capabilityName, providerID string) bool

	// Evaluate returns the decision without side effects.
	Evaluate(capabilityName, providerID string) bool
}

// DenialHandler is called when a policy check denies a provider.
type DenialHandler interface {
	// OnDenial is called with the denied capability/provider pair.
	OnDenial(capabilityName, providerID, reason string)
}
