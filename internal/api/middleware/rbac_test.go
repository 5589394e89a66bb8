package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fieldstone/crm-system/internal/core/domain"
)

func requireRoleStatus(t *testing.T, actorRole, minRole string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actorRole != "" {
		c.Set("role", actorRole)
	}

	handler := RequireRole(minRole)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name      string
		actorRole string
		minRole   string
		want      int
	}{
		{"exact match", domain.RoleBMA, domain.RoleBMA, http.StatusOK},
		{"higher rank passes", domain.RoleAdmin, domain.RoleBMA, http.StatusOK},
		{"lower rank rejected", domain.RoleIBA, domain.RoleBMA, http.StatusForbidden},
		{"alias normalized", "Senior BMA", domain.RoleBMA, http.StatusOK},
		{"unknown role rejected", "Intern", domain.RoleIBA, http.StatusForbidden},
		{"missing claims", "", domain.RoleIBA, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := requireRoleStatus(t, tt.actorRole, tt.minRole); got != tt.want {
				t.Fatalf("status = %d, want %d", got, tt.want)
			}
		})
	}
}
