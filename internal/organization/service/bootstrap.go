package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	membershipdomain "budget-control-plane/internal/membership/domain"
	orgdomain "budget-control-plane/internal/organization/domain"
	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/platform/rbac"
	roledomain "budget-control-plane/internal/role/domain"
	"budget-control-plane/internal/store"
)

// Seeded role names.
const (
	RoleAdmin     = "Admin"
	RoleTreasurer = "Treasurer"
	RoleMember    = "Member"
	RoleViewer    = "Viewer"
)

type seedRole struct {
	name        string
	description string
	isDefault   bool
	permissions []permission.Permission
}

// seedMatrix is the role set every organization starts with. Admin holds ALL so it keeps up with
// catalog growth; the other rows are frozen at seed time.
var seedMatrix = []seedRole{
	{
		name:        RoleAdmin,
		description: "Full access to the organization",
		permissions: []permission.Permission{permission.All},
	},
	{
		name:        RoleTreasurer,
		description: "Manages transactions, categories and budgets",
		permissions: []permission.Permission{
			permission.ViewDashboard,
			permission.ViewReport,
			permission.CreateTransactions,
			permission.EditTransactions,
			permission.DeleteTransaction,
			permission.ApproveTransactions,
			permission.ViewMembers,
			permission.ManageCategory,
			permission.ManageBudget,
		},
	},
	{
		name:        RoleMember,
		description: "Records transactions and reads reports",
		permissions: []permission.Permission{
			permission.ViewDashboard,
			permission.ViewReport,
			permission.CreateTransactions,
			permission.ViewMembers,
		},
	},
	{
		name:        RoleViewer,
		description: "Read-only access",
		isDefault:   true,
		permissions: []permission.Permission{
			permission.ViewDashboard,
			permission.ViewReport,
			permission.ViewMembers,
		},
	},
}

// Result is what Bootstrap created.
type Result struct {
	Org               *orgdomain.Org
	Roles             []*roledomain.Role
	FounderMembership *membershipdomain.Membership
}

// Role returns the seeded role called name, or nil.
func (r *Result) Role(name string) *roledomain.Role {
	for _, role := range r.Roles {
		if role.Name == name {
			return role
		}
	}
	return nil
}

// Bootstrapper seeds the permanent roles of a new organization and binds its founder to Admin.
type Bootstrapper struct{}

// Bootstrap writes the seed roles and the founder membership through r. It must run inside the
// same store unit of work that created org so a failure leaves nothing behind.
func (Bootstrapper) Bootstrap(ctx context.Context, r store.Repos, org *orgdomain.Org) (*Result, error) {
	existing, err := r.Roles.ListByOrg(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, &rbac.ValidationError{Field: "org_id", Reason: "organization already has roles"}
	}
	founder, err := r.Users.GetByID(ctx, org.FounderID)
	if err != nil {
		return nil, err
	}
	if !founder.Active() {
		return nil, &rbac.ValidationError{Field: "founder_id", Reason: "founder must be an active user"}
	}

	now := time.Now().UTC()
	res := &Result{Org: org, Roles: make([]*roledomain.Role, 0, len(seedMatrix))}
	for i, seed := range seedMatrix {
		role := &roledomain.Role{
			ID:          uuid.New().String(),
			OrgID:       org.ID,
			Name:        seed.name,
			Description: seed.description,
			IsDefault:   seed.isDefault,
			Permanent:   true,
			Permissions: permission.NewSet(seed.permissions...),
			// Distinct timestamps keep ListRoles in seed order.
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
			UpdatedAt: now,
		}
		if err := r.Roles.Create(ctx, role); err != nil {
			return nil, err
		}
		res.Roles = append(res.Roles, role)
	}

	founderMembership := &membershipdomain.Membership{
		ID:        uuid.New().String(),
		UserID:    founder.ID,
		OrgID:     org.ID,
		RoleID:    res.Role(RoleAdmin).ID,
		CreatedAt: now,
	}
	if err := r.Memberships.CreateMembership(ctx, founderMembership); err != nil {
		return nil, err
	}
	res.FounderMembership = founderMembership
	return res, nil
}
