package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identito/auth-service/internal/core/ports"
)

// Context keys written by the Session middleware.
const (
	ContextUserKey  = "auth_user"
	ContextTokenKey = "session_token"
)

// Session resolves the session cookie into the owning user and injects
// both into the request context. Requests with a missing, empty, or
// unresolvable cookie are rejected with 403, matching the transport
// contract for protected routes.
func Session(auth ports.AuthService, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusForbidden, "no active session")
			}

			user, err := auth.GetUserBySession(c.Request().Context(), cookie.Value)
			if err != nil {
				return err
			}
			if user == nil {
				return echo.NewHTTPError(http.StatusForbidden, "invalid session")
			}

			c.Set(ContextUserKey, user)
			c.Set(ContextTokenKey, cookie.Value)
			return next(c)
		}
	}
}
