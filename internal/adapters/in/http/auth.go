package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin      = "admin"
	RoleDispatcher = "dispatcher"
	RoleDrone      = "drone"
)

// droneRoutes are the only routes a drone token may call.
var droneRoutes = map[string]bool{
	http.MethodGet + " /api/v1/missions/:id":            true,
	http.MethodPost + " /api/v1/missions/:id/telemetry": true,
	http.MethodGet + " /api/v1/drones/:id":              true,
	http.MethodPut + " /api/v1/drones/:id/location":     true,
	http.MethodPut + " /api/v1/drones/:id/battery":      true,
}

// Principal is the authenticated caller.
// Principal is the authenticated caller taken from the bearer token.
type Principal struct {
	Subject string
	Role    string
}

type principalKey struct{}

// WithPrincipal stores p in ctx for the handlers and the request logger.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller stored by the auth middleware.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken validates an HS256 token and returns its principal.
func ParseToken(tokenStr, secret string) (*Principal, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}

	tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}

	c, _ := tok.Claims.(*claims)
	if c == nil || c.Subject == "" {
		return nil, errors.New("invalid claims")
	}
	role := strings.ToLower(c.Role)
	switch role {
	case RoleAdmin, RoleDispatcher, RoleDrone:
	default:
		return nil, errors.New("unknown role")
	}
	return &Principal{Subject: c.Subject, Role: role}, nil
}

// IssueToken signs a token for subject. Used by tooling and tests.
func IssueToken(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString([]byte(secret))
}

// Authenticate requires a bearer token and checks the caller's role against the
// matched route. It must run after routing so c.Path() holds the route template.
func Authenticate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			principal, err := ParseToken(strings.TrimSpace(parts[1]), secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}
			if principal.Role == RoleDrone && !droneRoutes[c.Request().Method+" "+c.Path()] {
				return echo.NewHTTPError(http.StatusForbidden, "drone tokens cannot call this route")
			}

			req := c.Request()
			c.SetRequest(req.WithContext(WithPrincipal(req.Context(), principal)))
			return next(c)
		}
	}
}

func actorID(c echo.Context) string {
	if p, ok := PrincipalFromContext(c.Request().Context()); ok {
		return p.Subject
	}
	return ""
}
