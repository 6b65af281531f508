package commands

import (
	"context"
	"errors"

	"dronedispatch/internal/pkg/errs"
)

// MaxAttempts bounds how often a handler reloads and reapplies a change that lost
// a compare-and-swap against a concurrent writer.
const MaxAttempts = 3

// retryOnStaleVersion runs fn until it succeeds, fails for another reason, or
// MaxAttempts is reached. fn must open its own unit of work on every call.
func retryOnStaleVersion(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err = fn(); err == nil || !errors.Is(err, errs.ErrStaleVersion) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
