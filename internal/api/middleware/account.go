package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/messagely/messagely-api/internal/api/metrics"
	"github.com/messagely/messagely-api/internal/core/domain"
	"github.com/messagely/messagely-api/internal/core/guard"
)

// EnsureCorrectUser rejects requests whose path parameter names an account
// other than the authenticated caller's. Must run after Auth.
func EnsureCorrectUser(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, _ := c.Get(UsernameKey).(string)
			if !guard.CanAccessAccount(caller, c.Param(param)) {
				metrics.AccessDeniedTotal.WithLabelValues("account").Inc()
				return domain.ErrNotAccountOwner
			}
			return next(c)
		}
	}
}
