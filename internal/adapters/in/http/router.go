package http

import (
	"net/http"

	"dronedispatch/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RouterConfig carries the JWT secret and the base logger. A nil Log discards.
type RouterConfig struct {
	JWTSecret string
	Log       *logrus.Entry
}

// NewRouter assembles the echo instance: request logging and recovery for every
// route, then JWT auth and OpenAPI validation for /api/ routes.
func NewRouter(server ServerInterface, cfg RouterConfig) (*echo.Echo, error) {
	entry := cfg.Log
	if entry == nil {
		entry = logger.Discard()
	}
	entry = logger.Component(entry, "http")

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validator, err := OapiRequestValidator(doc)
	if err != nil {
		return nil, err
	}
	if err = registerSwagger(doc); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.WARN)
	e.HTTPErrorHandler = NewErrorHandler(entry)

	e.Use(RequestLogger(entry))
	e.Use(middleware.Recover())
	e.Use(apiOnly(Authenticate(cfg.JWTSecret)))
	e.Use(apiOnly(validator))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	RegisterHandlers(e, server)
	return e, nil
}
