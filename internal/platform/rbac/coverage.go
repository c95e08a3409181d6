package rbac

import (
	membershipdomain "budget-control-plane/internal/membership/domain"
	roledomain "budget-control-plane/internal/role/domain"
)

// AdminHolders returns how many memberships are bound to a role that grants ALL.
// An organization is admin-less when this is zero.
func AdminHolders(roles []*roledomain.Role, memberships []*membershipdomain.Membership) int {
	admin := make(map[string]bool, len(roles))
	for _, r := range roles {
		if r.IsAdminEquivalent() {
			admin[r.ID] = true
		}
	}
	n := 0
	for _, m := range memberships {
		if admin[m.RoleID] {
			n++
		}
	}
	return n
}
