package commands

import (
	"errors"
	"time"

	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/guard"
)

var ErrReportStaleMissionsCommandIsNotConstructed = errors.New(
	"ReportStaleMissionsCommand must be created via NewReportStaleMissionsCommand constructor",
)

// ReportStaleMissionsCommand asks for an alert on every open mission that has not
// changed for staleAfter. Nothing is aborted.
type ReportStaleMissionsCommand struct {
	staleAfter time.Duration

	guard guard.ConstructorGuard
}

// NewReportStaleMissionsCommand requires a positive staleAfter.
func NewReportStaleMissionsCommand(staleAfter time.Duration) (ReportStaleMissionsCommand, error) {
	if staleAfter <= 0 {
		return ReportStaleMissionsCommand{}, errs.NewValueIsInvalidErrorWithCause("staleAfter", errors.New("must be positive"))
	}

	return ReportStaleMissionsCommand{
		staleAfter: staleAfter,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrReportStaleMissionsCommandIsNotConstructed if validation fails.
func (c ReportStaleMissionsCommand) Validate() error {
	return c.guard.Validate(ErrReportStaleMissionsCommandIsNotConstructed)
}

// StaleAfter returns how long a mission may stay silent.
func (c ReportStaleMissionsCommand) StaleAfter() time.Duration {
	return c.staleAfter
}
