package validation

// SchemaLookup resolves the settings schema for a capability name.
// The schema registry satisfies this.
type SchemaLookup interface {
	GetSchema(name string) (string, bool)
}

// SettingsValidator validates provider settings against a capability schema.
type SettingsValidator interface {
	// Validate checks settings for the named capability.
	Validate(capabilityName string, settings map[string]any) (*Result, error)
}

// Result reports the outcome of a validation.
type Result struct {
	Valid  bool
	Errors []string
}
