package artifact

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure classes. These allow errors.Is() checks
// while errors.As() recovers the detailed information.
var (
	// ErrNotFound is returned when an artifact cannot be found in any source.
	ErrNotFound = errors.New("artifact not found")

	// ErrIntegrityCheckFailed is returned when digest verification fails.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")

	// ErrNotTrusted is returned when an unsigned artifact is not in the
	// trust store and could not be approved.
	ErrNotTrusted = errors.New("artifact not trusted")
)

// IntegrityError indicates a digest mismatch.
type IntegrityError struct {
	Expected Digest
	Actual   Digest
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf(
		"integrity check failed: expected %s, got %s",
		e.Expected.String(),
		e.Actual.String(),
	)
}

// Is implements error matching for errors.Is() checks.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrityCheckFailed
}

// NotFoundError indicates the artifact doesn't exist in any source.
type NotFoundError struct {
	Reference Reference
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("artifact not found: %s", e.Reference.String())
}

// Is implements error matching for errors.Is() checks.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotTrustedError indicates an unsigned artifact was rejected.
type NotTrustedError struct {
	Reference Reference
	Reason    string
}

func (e *NotTrustedError) Error() string {
	return fmt.Sprintf("artifact not trusted: %s: %s", e.Reference.String(), e.Reason)
}

// Is implements error matching for errors.Is() checks.
func (e *NotTrustedError) Is(target error) bool {
	return target == ErrNotTrusted
}
