package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/messagely/messagely-api/internal/api/middleware"
)

// ctxCaller returns the username injected by the Auth middleware. An empty
// value means the middleware did not run for this route.
func ctxCaller(c echo.Context) (string, error) {
	username, _ := c.Get(middleware.UsernameKey).(string)
	if username == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return username, nil
}
