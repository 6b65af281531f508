package http

import (
	"errors"
	"net/http"

	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/logger"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// toError maps an error returned by a handler or middleware to the API error body.
func toError(err error) Error {
	var (
		httpErr       *echo.HTTPError
		requestErr    *openapi3filter.RequestError
		securityErr   *openapi3filter.SecurityRequirementsError
		validationErr *errs.ValidationError
	)

	switch {
	case errors.As(err, &httpErr):
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
		return Error{Code: httpErr.Code, Message: message}
	case errors.As(err, &requestErr):
		return Error{Code: http.StatusBadRequest, Message: requestErr.Error()}
	case errors.As(err, &securityErr):
		return Error{Code: http.StatusUnauthorized, Message: securityErr.Error()}
	case errors.As(err, &validationErr):
		return Error{
			Code:    http.StatusUnprocessableEntity,
			Message: validationErr.Message,
			Reason:  validationErr.Reason,
			Values:  validationErr.Values,
		}
	case errors.Is(err, errs.ErrValidation):
		return Error{Code: http.StatusUnprocessableEntity, Message: err.Error()}
	case errors.Is(err, errs.ErrObjectNotFound):
		return Error{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, errs.ErrStateConflict):
		return Error{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, errs.ErrExternalDependency):
		return Error{Code: http.StatusBadGateway, Message: "a dependency of the dispatch service failed"}
	default:
		return Error{Code: http.StatusInternalServerError, Message: http.StatusText(http.StatusInternalServerError)}
	}
}

// NewErrorHandler renders errors as JSON Error bodies.
func NewErrorHandler(log *logrus.Entry) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		body := toError(err)
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(body.Code)
		} else {
			err = c.JSON(body.Code, body)
		}
		if err != nil {
			logger.FromContext(c.Request().Context(), log).WithError(err).Error("Failed to write error response")
		}
	}
}
