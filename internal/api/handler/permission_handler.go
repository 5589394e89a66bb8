package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldstone/crm-system/internal/core/ports"
)

type PermissionHandler struct {
	permissions ports.PermissionService
}

func NewPermissionHandler(permissions ports.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

type upsertPermissionRequest struct {
	RolePermissions map[string]bool `json:"role_permissions" validate:"required"`
}

// List returns every page permission. Open to all authenticated users so
// the frontend can drive menu visibility.
func (h *PermissionHandler) List(c echo.Context) error {
	perms, err := h.permissions.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perms)
}

// Upsert sets the per-role access map for a page. Admin only.
func (h *PermissionHandler) Upsert(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req upsertPermissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	perm, err := h.permissions.Upsert(c.Request().Context(), actor, c.Param("page"), req.RolePermissions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perm)
}
