package hostlib

import (
	"errors"
	"fmt"
)

// ErrNoProvider is the sentinel returned by Handle when no provider accepted
// the input. It signals "unsupported input", not a fault.
var ErrNoProvider = errors.New("no provider found")

// NoProviderError reports that no provider accepted an input for a
// capability.
type NoProviderError struct {
	Capability string
}

func (e *NoProviderError) Error() string {
	return fmt.Sprintf("no provider found for capability %q", e.Capability)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, hostlib.ErrNoProvider)
func (e *NoProviderError) Is(target error) bool {
	return target == ErrNoProvider
}
