// Package artifact manages distribution of provider artifacts: WASM-packaged
// providers resolved from a local cache or a remote OCI registry, pinned by
// lockfile and verified before use.
package artifact

import (
	"fmt"
	"strings"
)

// Reference uniquely identifies a provider artifact version.
// Format: registry.io/org/repo/name:version, or a bare name for local
// artifacts.
type Reference struct {
	registry string
	org      string
	repo     string
	name     string
	version  string
}

// NewReference creates a reference from components.
func NewReference(registry, org, repo, name, version string) Reference {
	return Reference{
		registry: registry,
		org:      org,
		repo:     repo,
		name:     name,
		version:  version,
	}
}

// ParseReference parses an OCI-style reference string. A bare name with no
// slash or tag ("thumbnail-png") is a local artifact; anything else must be
// the full registry/org/repo/name:version form, e.g.
// "ghcr.io/spindle-dev/providers/thumbnail-png:1.0.2".
func ParseReference(ref string) (Reference, error) {
	if !strings.ContainsAny(ref, "/:") {
		return Reference{name: ref}, nil
	}

	parts := strings.Split(ref, "/")
	if len(parts) < 4 {
		return Reference{}, fmt.Errorf("invalid artifact reference: %s", ref)
	}

	name, version, ok := strings.Cut(parts[len(parts)-1], ":")
	if !ok || name == "" || version == "" {
		return Reference{}, fmt.Errorf("missing version tag: %s", ref)
	}

	return Reference{
		registry: parts[0],
		org:      parts[1],
		repo:     parts[2],
		name:     name,
		version:  version,
	}, nil
}

// String returns the canonical reference string.
func (r Reference) String() string {
	if r.IsLocal() {
		return r.name
	}
	return fmt.Sprintf("%s/%s/%s/%s:%s",
		r.registry, r.org, r.repo, r.name, r.version)
}

// IsLocal reports whether this reference names a local artifact with no
// registry component.
func (r Reference) IsLocal() bool {
	return r.registry == ""
}

// Name returns the artifact name.
func (r Reference) Name() string {
	return r.name
}

// Version returns the version tag.
func (r Reference) Version() string {
	return r.version
}

// Registry returns the registry hostname.
func (r Reference) Registry() string {
	return r.registry
}

// Equals checks equality with another reference.
func (r Reference) Equals(other Reference) bool {
	return r == other
}
