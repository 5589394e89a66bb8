package domain

import "testing"

func TestRoleRank_Ordering(t *testing.T) {
	order := Roles()
	for i := 0; i < len(order)-1; i++ {
		if RoleRank(order[i]) <= RoleRank(order[i+1]) {
			t.Fatalf("expected %s to outrank %s", order[i], order[i+1])
		}
	}
	if RoleRank("Made Up Role") != 0 {
		t.Fatalf("unknown role should rank 0, got %d", RoleRank("Made Up Role"))
	}
}

func TestNormalizeRole_Alias(t *testing.T) {
	if got := NormalizeRole("Senior BMA"); got != RoleSrBMA {
		t.Fatalf("expected %q, got %q", RoleSrBMA, got)
	}
	if got := NormalizeRole(RoleBMA); got != RoleBMA {
		t.Fatalf("canonical role changed by normalisation: %q", got)
	}
	if !ValidRole("Senior BMA") {
		t.Fatalf("alias should be a valid role")
	}
	if ValidRole("Manager") {
		t.Fatalf("unknown role should not validate")
	}
}

func TestHasPermission_Matrix(t *testing.T) {
	roles := Roles()
	for _, actor := range roles {
		for _, required := range roles {
			want := RoleRank(actor) >= RoleRank(required)
			if got := HasPermission(actor, required); got != want {
				t.Errorf("HasPermission(%s, %s) = %v, want %v", actor, required, got, want)
			}
		}
	}
}

func TestHasPermission_UnknownRoles(t *testing.T) {
	if HasPermission("Manager", RoleIBA) {
		t.Fatalf("unknown actor role must never grant access")
	}
	if HasPermission(RoleAdmin, "Manager") {
		t.Fatalf("unknown required role must never grant access")
	}
}

func TestCanAssignRole_AdminCarveOut(t *testing.T) {
	// Only Admin hands out or revokes Admin, numeric rank notwithstanding.
	if CanAssignRole(RoleFieldBuilder, RoleAdmin) {
		t.Fatalf("Field Builder must not assign Admin")
	}
	if !CanAssignRole(RoleAdmin, RoleAdmin) {
		t.Fatalf("Admin must be able to assign Admin")
	}

	// Below Admin, plain rank comparison applies.
	if !CanAssignRole(RoleBMA, RoleIBA) {
		t.Fatalf("BMA should assign IBA")
	}
	if CanAssignRole(RoleBMA, RoleFieldTrainer) {
		t.Fatalf("BMA must not assign Field Trainer")
	}
	if !CanAssignRole(RoleAdmin, "Senior BMA") {
		t.Fatalf("alias spelling should be assignable")
	}
}
