package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldstone/crm-system/internal/core/domain"
)

// RequireRole rejects requests whose actor's role rank does not cover
// minRole. Requests missing claims (Auth not applied) get 401.
func RequireRole(minRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if !domain.HasPermission(role, minRole) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role permissions")
			}
			return next(c)
		}
	}
}
