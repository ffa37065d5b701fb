package capability

import (
	"errors"
	"fmt"
)

// ErrProcessing is the sentinel for provider processing failures.
// It allows errors.Is() checks without losing the detailed error.
var ErrProcessing = errors.New("provider processing failed")

// ProcessingError indicates a selected provider failed while processing an
// input. The dispatcher propagates it verbatim; it performs no retry and no
// fallback to later candidates.
type ProcessingError struct {
	Provider string
	Err      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("provider %s: processing failed: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is() checks.
func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessing
}
