package commands

import (
	"context"
	"errors"
	"testing"

	"dronedispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryOnStaleVersion(t *testing.T) {
	stale := errs.NewStaleVersionError("mission", "m-1", "mission MSN2610180001 was modified concurrently")

	t.Run("succeeds after a lost race", func(t *testing.T) {
		calls := 0
		err := retryOnStaleVersion(t.Context(), func() error {
			calls++
			if calls == 1 {
				return stale
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after MaxAttempts", func(t *testing.T) {
		calls := 0
		err := retryOnStaleVersion(t.Context(), func() error {
			calls++
			return stale
		})

		require.ErrorIs(t, err, errs.ErrStaleVersion)
		assert.Equal(t, MaxAttempts, calls)
	})

	t.Run("other conflicts are final", func(t *testing.T) {
		calls := 0
		err := retryOnStaleVersion(t.Context(), func() error {
			calls++
			return errs.NewStateConflictError("drone", "d-1", "drone DR-001 is already reserved")
		})

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		calls := 0
		err := retryOnStaleVersion(ctx, func() error {
			calls++
			cancel()
			return stale
		})

		require.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, 1, calls)
	})
}
