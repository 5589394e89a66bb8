package domain

import (
	"errors"
	"time"
)

// User status values. IsActive is a system-level kill switch that overrides
// Status; Status is toggled by day-to-day administration.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserInactive = errors.New("account is not active")
var ErrEmailTaken = errors.New("email is already registered")
var ErrConsultantIDTaken = errors.New("consultant id is already assigned")
var ErrPermission = errors.New("insufficient role permissions")
var ErrSelfAction = errors.New("operation not permitted on own account")
var ErrUnauthorized = errors.New("authentication required")
var ErrValidation = errors.New("validation failed")

// User models an authenticated actor in the system.
type User struct {
	ID           string     `json:"id"`
	ConsultantID string     `json:"consultant_id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	IsAdmin      bool       `json:"is_admin"`
	IsActive     bool       `json:"is_active"`
	Status       string     `json:"status"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedBy    string     `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SetRole assigns role and recomputes the derived IsAdmin flag. All role
// writes must go through here so the cached flag never drifts.
func (u *User) SetRole(role string) {
	u.Role = NormalizeRole(role)
	u.IsAdmin = u.Role == RoleAdmin
}

// StatusValidation is the outcome of ValidateStatus.
type StatusValidation struct {
	IsValid bool
	Reason  string
}

// ValidateStatus checks whether a user may be granted access at all.
// Check order matters: the system-level IsActive flag is authoritative and
// is reported before the user-level Status.
func ValidateStatus(u *User) StatusValidation {
	switch {
	case u == nil:
		return StatusValidation{Reason: "user not found"}
	case !u.IsActive:
		return StatusValidation{Reason: "account deactivated by system administrator"}
	case u.Status != StatusActive:
		return StatusValidation{Reason: "account status is inactive"}
	}
	return StatusValidation{IsValid: true}
}
