package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SessionChecker is the slice of the Securia service the gate needs.
type SessionChecker interface {
	HasValidSession(ctx context.Context, userID string) (bool, error)
	RefreshSession(ctx context.Context, userID string) error
}

// SecuriaSession gates routes behind an active Securia session. Runs after
// Auth and RequireRole(Admin); a passing request also has its session TTL
// refreshed, sliding-window style.
func SecuriaSession(sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get("user_id").(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			ok, err := sessions.HasValidSession(c.Request().Context(), userID)
			if err != nil {
				return err
			}
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "securia session required")
			}
			if err := sessions.RefreshSession(c.Request().Context(), userID); err != nil {
				return err
			}
			return next(c)
		}
	}
}
