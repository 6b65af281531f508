package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/logger"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const apiPrefix = "/api/"

// apiOnly applies mw to routes under /api/ and passes everything else through.
func apiOnly(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		wrapped := mw(next)
		return func(c echo.Context) error {
			if !strings.HasPrefix(c.Path(), apiPrefix) {
				return next(c)
			}
			return wrapped(c)
		}
	}
}

// RequestLogger tags every request with an id, stores the entry in the request
// context and logs the outcome.
func RequestLogger(log *logrus.Entry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = kernel.NewUUID().String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			entry := log.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     req.Method,
				"path":       req.URL.Path,
			})
			c.SetRequest(req.WithContext(logger.NewContext(req.Context(), entry)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := logrus.Fields{
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if p, ok := PrincipalFromContext(c.Request().Context()); ok {
				fields["actor"] = p.Subject
			}
			switch status := c.Response().Status; {
			case status >= http.StatusInternalServerError:
				entry.WithFields(fields).WithError(err).Error("Request failed")
			case status >= http.StatusBadRequest:
				entry.WithFields(fields).Warn("Request rejected")
			default:
				entry.WithFields(fields).Debug("Request served")
			}
			return nil
		}
	}
}

// OapiRequestValidator checks requests against doc. Paths the document does not
// describe are left to the router.
func OapiRequestValidator(doc *openapi3.T) (echo.MiddlewareFunc, error) {
	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, err
	}

	options := &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				var routeErr *routers.RouteError
				if errors.As(err, &routeErr) {
					return next(c)
				}
				return err
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return err
			}
			return next(c)
		}
	}, nil
}
