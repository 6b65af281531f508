// Package errs provides standardized error types for the dispatch service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package is built around four kinds of failure that callers branch on:
//   - Validation: a request or a flight plan is not acceptable (ErrValidation).
//     ValueIsRequiredError, ValueIsInvalidError and ValueIsOutOfRangeError are
//     validation errors too and match ErrValidation with errors.Is.
//   - NotFound: an order, drone or mission does not exist (ErrObjectNotFound)
//   - StateConflict: the current state forbids the operation (ErrStateConflict)
//   - ExternalDependency: a collaborator such as the database failed (ErrExternalDependency)
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// Only the inbound adapters translate these kinds into transport status codes.
package errs
