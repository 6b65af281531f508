package errs

import (
	"errors"
	"fmt"
)

// ErrExternalDependency is the sentinel matched by errors.Is for every
// ExternalDependencyError.
var ErrExternalDependency = errors.New("external dependency failed")

// ExternalDependencyError wraps a failure of a collaborator such as the database.
// The original error stays reachable through errors.As on Cause.
type ExternalDependencyError struct {
	Dependency string
	Cause      error
}

// NewExternalDependencyError names the failing dependency, e.g. "database" or "kafka".
func NewExternalDependencyError(dependency string, cause error) *ExternalDependencyError {
	return &ExternalDependencyError{Dependency: dependency, Cause: cause}
}

func (e *ExternalDependencyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrExternalDependency, e.Dependency, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrExternalDependency, e.Dependency)
}

// Unwrap exposes both the sentinel and the cause.
func (e *ExternalDependencyError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrExternalDependency}
	}
	return []error{ErrExternalDependency, e.Cause}
}
