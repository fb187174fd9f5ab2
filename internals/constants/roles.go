package constants

import "fmt"

// Roles carried in the JWT "role" claim
const (
	RoleAdmin      = "admin"
	RolePrincipal  = "principal"
	RoleAccountant = "accountant"
	RoleReception  = "reception"
	RoleTeacher    = "teacher"
)

const ErrOnlyRolesCanAccess = "❌ Only %s may access %s."

func RoleError(feature string, roles ...string) string {
	return fmt.Sprintf(ErrOnlyRolesCanAccess, joinRoles(roles), feature)
}

func joinRoles(roles []string) string {
	out := ""
	for i, r := range roles {
		switch {
		case i == 0:
			out = r
		case i == len(roles)-1:
			out += " or " + r
		default:
			out += ", " + r
		}
	}
	return out
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	// fee structure writes, invoice issuance
	FinanceManagers = []string{
		RoleAdmin,
		RolePrincipal,
		RoleAccountant,
	}

	// recording payments, starting an online checkout
	FinanceCollectors = []string{
		RoleAdmin,
		RolePrincipal,
		RoleAccountant,
		RoleReception,
	}

	// deleting fee structures
	SchoolHeads = []string{
		RoleAdmin,
		RolePrincipal,
	}
)
