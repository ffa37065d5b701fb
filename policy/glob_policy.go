package policy

import (
	"github.com/bmatcuk/doublestar/v4"
)

// GlobPolicy allows or denies providers by glob rules matched against
// "capability/providerID". Deny rules take precedence over allow rules; with
// no allow rules everything not denied is allowed.
type GlobPolicy struct {
	allow   []string
	deny    []string
	handler DenialHandler
}

// GlobPolicyOption configures a GlobPolicy.
type GlobPolicyOption func(*GlobPolicy)

// WithAllow adds allow rules. Once any allow rule exists, a provider must
// match one to be selectable.
func WithAllow(patterns ...string) GlobPolicyOption {
	return func(p *GlobPolicy) {
		p.allow = append(p.allow, patterns...)
	}
}

// WithDeny adds deny rules.
func WithDeny(patterns ...string) GlobPolicyOption {
	return func(p *GlobPolicy) {
		p.deny = append(p.deny, patterns...)
	}
}

// WithDenialHandler sets the handler notified on denials.
func WithDenialHandler(h DenialHandler) GlobPolicyOption {
	return func(p *GlobPolicy) {
		p.handler = h
	}
}

// NewGlobPolicy creates a policy from the given options.
// A policy with no options allows everything.
func NewGlobPolicy(opts ...GlobPolicyOption) *GlobPolicy {
	p := &GlobPolicy{
		handler: &NopDenialHandler{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Check reports whether the provider is allowed, notifying the denial handler
// on a deny.
func (p *GlobPolicy) Check(capabilityName, providerID string) bool {
	allowed, reason := p.decide(capabilityName, providerID)
	if !allowed {
		p.handler.OnDenial(capabilityName, providerID, reason)
	}
	return allowed
}

// Evaluate returns the decision without side effects.
func (p *GlobPolicy) Evaluate(capabilityName, providerID string) bool {
	allowed, _ := p.decide(capabilityName, providerID)
	return allowed
}

func (p *GlobPolicy) decide(capabilityName, providerID string) (bool, string) {
	subject := capabilityName + "/" + providerID

	for _, pattern := range p.deny {
		if ok, err := doublestar.Match(pattern, subject); err == nil && ok {
			return false, "matched deny rule " + pattern
		}
	}

	if len(p.allow) == 0 {
		return true, ""
	}
	for _, pattern := range p.allow {
		if ok, err := doublestar.Match(pattern, subject); err == nil && ok {
			return true, ""
		}
	}
	return false, "matched no allow rule"
}
