package middleware // reusable HTTP middleware for the seat API

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seatbook/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ContextAccountID = "account_id"
	ContextEmail     = "email"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the token's id and email claims in the request context under
// ContextAccountID and ContextEmail.  The secret must match the one used
// when issuing tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			setClaims(c, claims)
			return next(c)
		}
	}
}

// Identify sets the same context values as JWTAuth when the request
// carries a valid token, and lets every request through.  It runs ahead
// of the rate limiter so buckets can be keyed by account.
func Identify(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearer(c); ok {
				if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
					setClaims(c, claims)
				}
			}
			return next(c)
		}
	}
}

func bearer(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")), true
}

func setClaims(c echo.Context, claims utils.Claims) {
	c.Set(ContextAccountID, claims.AccountID)
	c.Set(ContextEmail, claims.Email)
}
