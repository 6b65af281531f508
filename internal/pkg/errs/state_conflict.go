package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrStateConflict marks every error of this kind.
	ErrStateConflict = errors.New("state conflict")

	// ErrStaleVersion marks a conflict caused by a concurrent write rather than by the
	// state itself. Reloading and reapplying the operation may succeed.
	ErrStaleVersion = errors.New("stale version")
)

// StateConflictError reports an operation the current state of an aggregate forbids,
// for example an invalid transition or a reservation of a busy drone. From and To are
// set for transitions only.
type StateConflictError struct {
	Entity  string
	ID      any
	From    string
	To      string
	Message string
	Cause   error
}

// NewStateConflictError builds a conflict without an underlying cause.
func NewStateConflictError(entity string, id any, message string) *StateConflictError {
	return &StateConflictError{Entity: entity, ID: id, Message: message}
}

// NewStateConflictErrorWithCause keeps cause reachable through errors.Is and errors.As.
func NewStateConflictErrorWithCause(entity string, id any, message string, cause error) *StateConflictError {
	return &StateConflictError{Entity: entity, ID: id, Message: message, Cause: cause}
}

// NewStaleVersionError reports a compare-and-swap write that lost against a
// concurrent update of the same aggregate.
func NewStaleVersionError(entity string, id any, message string) *StateConflictError {
	return &StateConflictError{Entity: entity, ID: id, Message: message, Cause: ErrStaleVersion}
}

// NewTransitionError reports a rejected status change of entity from one state to another.
func NewTransitionError(entity string, id any, from, to string) *StateConflictError {
	return &StateConflictError{
		Entity:  entity,
		ID:      id,
		From:    from,
		To:      to,
		Message: fmt.Sprintf("transition from %s to %s is not allowed", from, to),
	}
}

func (e *StateConflictError) Error() string {
	msg := fmt.Sprintf("%s: %s %v: %s", ErrStateConflict, e.Entity, e.ID, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *StateConflictError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrStateConflict, e.Cause}
	}
	return []error{ErrStateConflict}
}
