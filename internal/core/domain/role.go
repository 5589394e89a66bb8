package domain

// Canonical role names. "Sr. BMA" is authoritative; "Senior BMA" is
// accepted as an input alias and normalised on the way in.
const (
	RoleAdmin        = "Admin"
	RoleFieldBuilder = "Field Builder"
	RoleFieldTrainer = "Field Trainer"
	RoleSrBMA        = "Sr. BMA"
	RoleBMA          = "BMA"
	RoleIBA          = "IBA"
)

// roleRanks is the total order over roles. Higher outranks lower.
var roleRanks = map[string]int{
	RoleAdmin:        6,
	RoleFieldBuilder: 5,
	RoleFieldTrainer: 4,
	RoleSrBMA:        3,
	RoleBMA:          2,
	RoleIBA:          1,
}

var roleAliases = map[string]string{
	"Senior BMA": RoleSrBMA,
}

// Roles returns the canonical role names ordered from highest rank to lowest.
func Roles() []string {
	return []string{RoleAdmin, RoleFieldBuilder, RoleFieldTrainer, RoleSrBMA, RoleBMA, RoleIBA}
}

// NormalizeRole maps accepted aliases onto canonical spellings. Unknown
// names pass through unchanged so validation can report them.
func NormalizeRole(role string) string {
	if canonical, ok := roleAliases[role]; ok {
		return canonical
	}
	return role
}

// ValidRole reports whether role (after normalisation) is a known role.
func ValidRole(role string) bool {
	_, ok := roleRanks[NormalizeRole(role)]
	return ok
}

// RoleRank returns the rank of a role, 0 for unknown roles. An unknown
// role therefore never outranks anything.
func RoleRank(role string) int {
	return roleRanks[NormalizeRole(role)]
}

// HasPermission reports whether actorRole's rank covers requiredRole.
// Unknown roles on either side never grant access.
func HasPermission(actorRole, requiredRole string) bool {
	actor := RoleRank(actorRole)
	required := RoleRank(requiredRole)
	if actor == 0 || required == 0 {
		return false
	}
	return actor >= required
}

// CanAssignRole reports whether an actor may grant or revoke targetRole.
// Only an Admin may hand out or take away the Admin role itself; plain
// rank comparison would let a Field Builder self-escalate.
func CanAssignRole(actorRole, targetRole string) bool {
	actor := NormalizeRole(actorRole)
	target := NormalizeRole(targetRole)
	if target == RoleAdmin {
		return actor == RoleAdmin
	}
	return HasPermission(actor, target)
}
