package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariant marks a caller contract breach, such as Next past the terminal state.
	ErrInvariant = errors.New("wizard invariant violated")

	ErrSessionNotFound   = errors.New("quote session not found or expired")
	// ErrSessionDiscarded is an invariant breach: nothing may drive a discarded session.
	ErrSessionDiscarded  = fmt.Errorf("%w: quote session discarded", ErrInvariant)
	ErrSessionSubmitted  = errors.New("quote session already submitted")
	ErrSubmissionPending = errors.New("payment submission already in progress")
)

// FieldNotEditableError is returned when a patch touches a field whose step
// the customer has not reached yet.
type FieldNotEditableError struct {
	Field string
}

func (e *FieldNotEditableError) Error() string {
	return fmt.Sprintf("field %s belongs to a step that has not been reached", e.Field)
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
