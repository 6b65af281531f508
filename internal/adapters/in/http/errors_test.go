package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"dronedispatch/internal/pkg/errs"

	"github.com/getkin/kin-openapi/openapi3filter"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"echo error", echo.NewHTTPError(http.StatusForbidden, "no"), http.StatusForbidden},
		{"openapi request error", &openapi3filter.RequestError{Err: errors.New("lat above maximum")}, http.StatusBadRequest},
		{"value error", errs.NewValueIsRequiredError("serial"), http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("load: %w", errs.NewObjectNotFoundError("missionId", "m-1")), http.StatusNotFound},
		{"transition", errs.NewTransitionError("mission", "m-1", "QUEUED", "COMPLETED"), http.StatusConflict},
		{"dependency", errs.NewExternalDependencyError("postgres", errors.New("down")), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, toError(tt.err).Code)
		})
	}

	t.Run("validation error keeps reason and values", func(t *testing.T) {
		body := toError(errs.NewValidationError("RANGE_EXCEEDED", "delivery location 12km exceeds drone range 10km",
			map[string]any{"distanceKm": 12.0}))

		assert.Equal(t, http.StatusUnprocessableEntity, body.Code)
		assert.Equal(t, "RANGE_EXCEEDED", body.Reason)
		assert.Equal(t, "delivery location 12km exceeds drone range 10km", body.Message)
		assert.Equal(t, map[string]any{"distanceKm": 12.0}, body.Values)
	})

	t.Run("dependency details stay private", func(t *testing.T) {
		body := toError(errs.NewExternalDependencyError("postgres", errors.New("password authentication failed")))
		assert.NotContains(t, body.Message, "password")
	})
}

func TestParseToken(t *testing.T) {
	const secret = "s3cret"

	t.Run("valid", func(t *testing.T) {
		token, err := IssueToken(secret, "dispatcher-7", "Dispatcher", time.Minute)
		require.NoError(t, err)

		principal, err := ParseToken(token, secret)
		require.NoError(t, err)
		assert.Equal(t, &Principal{Subject: "dispatcher-7", Role: RoleDispatcher}, principal)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := IssueToken(secret, "dispatcher-7", RoleDispatcher, -time.Minute)
		require.NoError(t, err)

		_, err = ParseToken(token, secret)
		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := IssueToken(secret, "someone", "courier", time.Minute)
		require.NoError(t, err)

		_, err = ParseToken(token, secret)
		require.Error(t, err)
	})

	t.Run("other algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "x", "role": RoleAdmin}).
			SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = ParseToken(token, secret)
		require.Error(t, err)
	})

	t.Run("empty secret", func(t *testing.T) {
		_, err := ParseToken("anything", "")
		require.EqualError(t, err, "jwt secret is empty")
	})
}
