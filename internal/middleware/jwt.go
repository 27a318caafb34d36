package middleware

import (
	"context"
	"net/http"

	"corpgate/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims are the claims the external auth provider issues. The
// engine never authenticates users itself; it only scopes requests to the
// tenant named by the token.
type JWTCustomClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	jwt.RegisteredClaims
}

// JWTConfig builds the echo-jwt configuration. On success the user and
// tenant IDs are copied into the request context for downstream handlers.
func JWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, common.TenantIDKey, claims.TenantID)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

// RequireClaims rejects tokens that carry no usable identity. Runs after
// the JWT middleware has populated the request context.
func RequireClaims() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := common.TenantIDFromContext(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing user_id or tenant_id in token")
			}
			if _, err := common.UserIDFromContext(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing user_id or tenant_id in token")
			}
			return next(c)
		}
	}
}
