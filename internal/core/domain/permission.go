package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrPagePermissionNotFound = errors.New("page permission not found")

// PagePermission maps a UI page to a per-role visibility flag. It drives
// what the frontend shows; route-level role checks remain the security
// boundary.
type PagePermission struct {
	ID              string          `json:"id" bson:"_id,omitempty"`
	PageName        string          `json:"page_name" bson:"page_name"`
	RolePermissions map[string]bool `json:"role_permissions" bson:"role_permissions"`
	UpdatedBy       string          `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at" bson:"updated_at"`
}

// ValidateRoleKeys rejects a permission map containing roles outside the
// canonical enumeration.
func (p *PagePermission) ValidateRoleKeys() error {
	for role := range p.RolePermissions {
		if !ValidRole(role) {
			return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
		}
	}
	return nil
}
