package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identito/auth-service/internal/api/middleware"
	"github.com/identito/auth-service/internal/core/domain"
)

// sessionUser extracts the user injected by the Session middleware and
// fast-fails when it is missing: its presence proves the middleware ran,
// so a nil here means the route was wired without session protection.
func sessionUser(c echo.Context) (*domain.User, string, error) {
	user, _ := c.Get(middleware.ContextUserKey).(*domain.User)
	if user == nil {
		return nil, "", echo.NewHTTPError(http.StatusForbidden, "no active session")
	}
	token, _ := c.Get(middleware.ContextTokenKey).(string)
	return user, token, nil
}
