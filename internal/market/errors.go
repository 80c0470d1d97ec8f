// Package market implements the thread and disclosure manager: the
// lifecycle of a negotiation between two companies over one resource,
// and the visibility rules for identity and contact data.
package market

import (
	"errors"
	"fmt"
)

// Sentinel errors for business-rule violations. Callers match with
// errors.Is and translate to their own error surface.
var (
	// ErrValidation marks rejected input (blank content, bad ids).
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyDisclosed is returned when a second disclosure is
	// attempted on a thread. Disclosure is monotonic: the second call
	// is rejected, not a no-op.
	ErrAlreadyDisclosed = errors.New("contact already disclosed for thread")

	// ErrAlreadyTaken is returned when the is_taken transition was
	// already won by another caller.
	ErrAlreadyTaken = errors.New("resource already taken")

	// ErrNotFound is returned for unknown or dangling references.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when a company touches a thread or
	// resource it does not participate in.
	ErrForbidden = errors.New("not a participant")
)

// validationErrorf wraps ErrValidation with a caller-facing detail.
func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
