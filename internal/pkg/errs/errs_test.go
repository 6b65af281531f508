package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"dronedispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("droneId", "d-1")

		assert.Equal(t, "droneId", err.ParamName)
		assert.Equal(t, "d-1", err.ID)
		assert.Nil(t, err.Cause)
		assert.Equal(t, "object not found: d-1", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("record not found")
		err := errs.NewObjectNotFoundErrorWithCause("missionId", "m-7", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: missionId, ID is: m-7 (cause: record not found)",
			err.Error())
	})
}

func TestValueErrors(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("serial")
		assert.Equal(t, "value is required: serial", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("required with cause", func(t *testing.T) {
		err := errs.NewValueIsRequiredErrorWithCause("serial", errors.New("empty"))
		assert.Equal(t, "value is required: serial (cause: empty)", err.Error())
	})

	t.Run("invalid", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("status", errors.New("UNKNOWN is not a drone status"))
		assert.Equal(t, "value is invalid: status (cause: UNKNOWN is not a drone status)", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("out of range", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("lat", 91.0, -90.0, 90.0)
		assert.Equal(t, "value is invalid: 91 is lat, min value is -90, max value is 90", err.Error())
		assert.Equal(t, 91.0, err.Value)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("out of range with cause", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeErrorWithCause("battery", -5, 0, 100, errors.New("sensor fault"))
		assert.Equal(t,
			"value is invalid: -5 is battery, min value is 0, max value is 100 (cause: sensor fault)",
			err.Error())
	})

	t.Run("out of range strips newlines", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("serial", "DR\n01", 0, 10)
		assert.Contains(t, err.Error(), "DR 01")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValidationError(t *testing.T) {
	values := map[string]any{"distanceKm": 12.4, "rangeKm": 10.0}
	err := errs.NewValidationError("RANGE_EXCEEDED", "delivery location 12.4km exceeds drone range 10km", values)

	values["distanceKm"] = 0.0

	assert.Equal(t, "validation failed: delivery location 12.4km exceeds drone range 10km", err.Error())
	assert.InDelta(t, 12.4, err.Values["distanceKm"], 1e-9, "values must be copied")
	require.ErrorIs(t, err, errs.ErrValidation)

	wrapped := fmt.Errorf("plan: %w", err)
	assert.Equal(t, "RANGE_EXCEEDED", errs.ReasonOf(wrapped))
	assert.Empty(t, errs.ReasonOf(errors.New("other")))
}

func TestStateConflictError(t *testing.T) {
	t.Run("transition", func(t *testing.T) {
		err := errs.NewTransitionError("mission", "m-1", "QUEUED", "COMPLETED")

		assert.Equal(t, "QUEUED", err.From)
		assert.Equal(t, "COMPLETED", err.To)
		assert.Equal(t, "state conflict: mission m-1: transition from QUEUED to COMPLETED is not allowed", err.Error())
		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.NotErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("0 rows")
		err := errs.NewStateConflictErrorWithCause("drone", "d-1", "already reserved", cause)
		assert.Equal(t, "state conflict: drone d-1: already reserved (cause: 0 rows)", err.Error())
		require.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, errs.ErrStaleVersion)
	})

	t.Run("stale version", func(t *testing.T) {
		err := errs.NewStaleVersionError("mission", "m-1", "mission MSN2610180001 was modified concurrently")
		require.ErrorIs(t, err, errs.ErrStateConflict)
		require.ErrorIs(t, err, errs.ErrStaleVersion)
	})
}

func TestExternalDependencyError(t *testing.T) {
	cause := errors.New("connection refused")
	err := errs.NewExternalDependencyError("postgres", cause)

	assert.Equal(t, "external dependency failed: postgres (cause: connection refused)", err.Error())
	require.ErrorIs(t, err, errs.ErrExternalDependency)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "external dependency failed: kafka", errs.NewExternalDependencyError("kafka", nil).Error())
}

func TestSentinelErrors(t *testing.T) {
	assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
	assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
	assert.Equal(t, "value is out of range", errs.ErrValueIsOutOfRange.Error())
	assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
	assert.Equal(t, "validation failed", errs.ErrValidation.Error())
	assert.Equal(t, "state conflict", errs.ErrStateConflict.Error())
	assert.Equal(t, "external dependency failed", errs.ErrExternalDependency.Error())
}
