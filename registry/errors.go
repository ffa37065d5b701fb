package registry

import (
	"errors"
	"fmt"
)

// ErrProviderConfiguration is the sentinel for per-entry construction
// failures. These are non-fatal to discovery: callers log and skip.
var ErrProviderConfiguration = errors.New("provider configuration failed")

// ConfigurationError indicates one registry entry failed to materialize.
// It carries enough context (which entry, which source, underlying cause)
// to log and continue.
type ConfigurationError struct {
	EntryID string
	Source  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("provider %s (source %s): configuration failed: %v", e.EntryID, e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, registry.ErrProviderConfiguration)
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrProviderConfiguration
}
