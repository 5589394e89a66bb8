package domain

import "testing"

func TestValidateStatus(t *testing.T) {
	tests := []struct {
		name   string
		user   *User
		valid  bool
		reason string
	}{
		{
			name:   "nil user",
			user:   nil,
			reason: "user not found",
		},
		{
			name:   "system deactivated",
			user:   &User{IsActive: false, Status: StatusActive},
			reason: "account deactivated by system administrator",
		},
		{
			name:   "status inactive",
			user:   &User{IsActive: true, Status: StatusInactive},
			reason: "account status is inactive",
		},
		{
			// IsActive is checked first even when both flags fail.
			name:   "both flags off",
			user:   &User{IsActive: false, Status: StatusInactive},
			reason: "account deactivated by system administrator",
		},
		{
			name:  "active",
			user:  &User{IsActive: true, Status: StatusActive},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateStatus(tt.user)
			if got.IsValid != tt.valid {
				t.Fatalf("IsValid = %v, want %v", got.IsValid, tt.valid)
			}
			if got.Reason != tt.reason {
				t.Fatalf("Reason = %q, want %q", got.Reason, tt.reason)
			}
		})
	}
}

func TestSetRole_RecomputesIsAdmin(t *testing.T) {
	u := &User{}
	u.SetRole(RoleAdmin)
	if !u.IsAdmin {
		t.Fatalf("expected IsAdmin after assigning Admin")
	}
	u.SetRole(RoleBMA)
	if u.IsAdmin {
		t.Fatalf("IsAdmin should drop after demotion")
	}
	u.SetRole("Senior BMA")
	if u.Role != RoleSrBMA {
		t.Fatalf("role not normalised: %q", u.Role)
	}
}
