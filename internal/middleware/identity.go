package middleware

import "github.com/labstack/echo/v4"

// accountID returns the account set by JWTAuth, or "anon" for
// unauthenticated requests.
func accountID(c echo.Context) string {
	if s, ok := c.Get(ContextAccountID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
