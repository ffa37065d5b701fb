// Package manifest implements manifest-driven provider registration: a YAML
// or JSON document declares providers, and a Source turns those declarations
// into lazily constructed registry entries. Adding a provider means adding a
// declaration; the registry and dispatcher stay untouched.
package manifest

// Manifest is the top-level manifest document.
type Manifest struct {
	Version   int            `yaml:"manifest_version" json:"manifest_version"`
	Providers []ProviderDecl `yaml:"providers" json:"providers"`
}

// ProviderDecl declares one provider. Declaration order is the enumeration
// order the registry sees.
type ProviderDecl struct {
	// Name identifies the provider. Several declarations may share a name
	// at different versions; the source selects one per name.
	Name string `yaml:"name" json:"name"`

	// Capability is the capability this provider implements.
	Capability string `yaml:"capability" json:"capability"`

	// Version is the provider's semantic version. Optional.
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Uses names the registered factory that constructs the provider.
	// Defaults to Name when empty.
	Uses string `yaml:"uses,omitempty" json:"uses,omitempty"`

	// Disabled declarations are skipped during enumeration.
	Disabled bool `yaml:"disabled,omitempty" json:"disabled,omitempty"`

	// Accepts lists glob patterns gating the provider's Accepts check
	// (e.g. "**/*.png"). Empty means the provider decides alone.
	Accepts []string `yaml:"accepts,omitempty" json:"accepts,omitempty"`

	// Settings is free-form provider configuration, validated against the
	// capability's schema at construction time.
	Settings map[string]any `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// FactoryKey returns the factory name for the declaration.
func (d ProviderDecl) FactoryKey() string {
	if d.Uses != "" {
		return d.Uses
	}
	return d.Name
}

// EntryID returns the registry entry id for the declaration.
func (d ProviderDecl) EntryID() string {
	if d.Version == "" {
		return d.Name
	}
	return d.Name + "@" + d.Version
}
