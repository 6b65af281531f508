package errs

import (
	"errors"
	"fmt"
	"maps"
)

// ErrValidation is the sentinel matched by errors.Is for every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError carries a machine readable Reason and the offending values, so that
// a rejected flight plan can be explained to the user and asserted on in tests.
type ValidationError struct {
	Reason  string
	Message string
	Values  map[string]any
	Cause   error
}

// NewValidationError copies values so the caller may reuse its map.
//
// Example:
//
//	err := errs.NewValidationError("PAYLOAD_EXCEEDED", "order weighs 2500g", map[string]any{"payloadMaxGrams": 2000})
func NewValidationError(reason, message string, values map[string]any) *ValidationError {
	return &ValidationError{Reason: reason, Message: message, Values: maps.Clone(values)}
}

func NewValidationErrorWithCause(reason, message string, values map[string]any, cause error) *ValidationError {
	return &ValidationError{Reason: reason, Message: message, Values: maps.Clone(values), Cause: cause}
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValidation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ReasonOf returns the reason of the first ValidationError in err's chain.
func ReasonOf(err error) string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Reason
	}
	return ""
}
