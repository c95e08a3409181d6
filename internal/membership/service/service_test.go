package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	orgservice "budget-control-plane/internal/organization/service"
	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/platform/rbac"
	roleservice "budget-control-plane/internal/role/service"
	"budget-control-plane/internal/store"
	userdomain "budget-control-plane/internal/user/domain"
)

type fixture struct {
	mem     *store.Memory
	checker *rbac.Checker
	svc     *Service
	orgs    *orgservice.Service
	acme    *orgservice.Result
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()
	err := mem.Update(ctx, "", func(ctx context.Context, r store.Repos) error {
		for _, id := range []string{"alice", "bob", "carol", "dave"} {
			if err := r.Users.Create(ctx, &userdomain.User{ID: id, Email: id + "@example.com", Status: userdomain.UserStatusActive}); err != nil {
				return err
			}
		}
		return r.Users.Create(ctx, &userdomain.User{ID: "erin", Email: "erin@example.com", Status: userdomain.UserStatusDisabled})
	})
	if err != nil {
		t.Fatalf("create users: %v", err)
	}
	checker := rbac.NewChecker(mem, nil)
	orgs := orgservice.NewService(mem, checker, nil)
	acme, err := orgs.CreateOrganization(ctx, "alice", "acme")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	return &fixture{mem: mem, checker: checker, svc: NewService(mem, checker, nil), orgs: orgs, acme: acme}
}

func (f *fixture) orgID() string { return f.acme.Org.ID }

func (f *fixture) roleID(name string) string { return f.acme.Role(name).ID }

func TestAddMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.AddMember(ctx, "alice", f.orgID(), "bob", "")
	if err != nil {
		t.Fatalf("AddMember without role: %v", err)
	}
	if m.RoleID != f.roleID(orgservice.RoleViewer) {
		t.Errorf("role = %q, want the default Viewer role", m.RoleID)
	}

	other, err := f.orgs.CreateOrganization(ctx, "dave", "globex")
	if err != nil {
		t.Fatalf("CreateOrganization(globex): %v", err)
	}

	testCases := []struct {
		name    string
		actorID string
		userID  string
		roleID  string
		wantErr error
	}{
		{"duplicate", "alice", "bob", f.roleID(orgservice.RoleMember), rbac.ErrDuplicateMembership},
		{"founder again", "alice", "alice", "", rbac.ErrDuplicateMembership},
		{"role of another org", "alice", "carol", other.Role(orgservice.RoleViewer).ID, rbac.ErrCrossOrgRole},
		{"unknown role", "alice", "carol", "missing", rbac.ErrNotFound},
		{"unknown user", "alice", "nobody", "", rbac.ErrValidation},
		{"disabled user", "alice", "erin", "", rbac.ErrValidation},
		{"viewer lacks MANAGE_MEMBERS", "bob", "carol", "", rbac.ErrForbidden},
		{"outsider", "dave", "carol", "", rbac.ErrForbidden},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.AddMember(ctx, tc.actorID, f.orgID(), tc.userID, tc.roleID); !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}

	var cross *rbac.CrossOrgRoleError
	_, err = f.svc.AddMember(ctx, "alice", f.orgID(), "carol", other.Role(orgservice.RoleAdmin).ID)
	if !errors.As(err, &cross) || cross.RoleOrgID != other.Org.ID || cross.OrgID != f.orgID() {
		t.Errorf("cross-org err = %#v", err)
	}
}

func TestAddMember_NoDefaultRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	roles := roleservice.NewService(f.mem, f.checker, nil)
	temp, err := roles.CreateRole(ctx, "alice", f.orgID(), roleservice.CreateInput{Name: "Temp", IsDefault: true})
	if err != nil {
		t.Fatalf("CreateRole: %v", err)
	}
	if err := roles.DeleteRole(ctx, "alice", f.orgID(), temp.ID); err != nil {
		t.Fatalf("DeleteRole: %v", err)
	}
	if _, err := f.svc.AddMember(ctx, "alice", f.orgID(), "bob", ""); !errors.Is(err, rbac.ErrValidation) {
		t.Errorf("AddMember with no default role err = %v, want ValidationError", err)
	}
	if _, err := f.svc.AddMember(ctx, "alice", f.orgID(), "bob", f.roleID(orgservice.RoleMember)); err != nil {
		t.Errorf("AddMember with explicit role: %v", err)
	}
}

func TestChangeMemberRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob, err := f.svc.AddMember(ctx, "alice", f.orgID(), "bob", "")
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	var lastAdmin *rbac.LastAdminError
	_, err = f.svc.ChangeMemberRole(ctx, "alice", f.orgID(), f.acme.FounderMembership.ID, f.roleID(orgservice.RoleViewer))
	if !errors.As(err, &lastAdmin) {
		t.Fatalf("demoting the sole admin err = %v, want LastAdminError", err)
	}

	same, err := f.svc.ChangeMemberRole(ctx, "alice", f.orgID(), bob.ID, bob.RoleID)
	if err != nil || same.RoleID != bob.RoleID {
		t.Errorf("no-op change = %+v, %v", same, err)
	}

	promoted, err := f.svc.ChangeMemberRole(ctx, "alice", f.orgID(), bob.ID, f.roleID(orgservice.RoleAdmin))
	if err != nil {
		t.Fatalf("promote bob: %v", err)
	}
	if promoted.RoleID != f.roleID(orgservice.RoleAdmin) {
		t.Errorf("role = %q, want Admin", promoted.RoleID)
	}
	// With two admins, one may step down.
	if _, err := f.svc.ChangeMemberRole(ctx, "bob", f.orgID(), f.acme.FounderMembership.ID, f.roleID(orgservice.RoleMember)); err != nil {
		t.Fatalf("demote alice with bob as admin: %v", err)
	}
	if _, err := f.svc.ChangeMemberRole(ctx, "alice", f.orgID(), bob.ID, f.roleID(orgservice.RoleMember)); !errors.Is(err, rbac.ErrForbidden) {
		t.Errorf("demoted alice changing roles err = %v, want ForbiddenError", err)
	}
	if _, err := f.svc.ChangeMemberRole(ctx, "bob", f.orgID(), "missing", f.roleID(orgservice.RoleMember)); !errors.Is(err, rbac.ErrNotFound) {
		t.Errorf("unknown membership err = %v, want NotFoundError", err)
	}
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob, err := f.svc.AddMember(ctx, "alice", f.orgID(), "bob", "")
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := f.svc.RemoveMember(ctx, "alice", f.orgID(), f.acme.FounderMembership.ID); !errors.Is(err, rbac.ErrLastAdmin) {
		t.Errorf("removing the sole admin err = %v, want LastAdminError", err)
	}
	if err := f.svc.RemoveMember(ctx, "bob", f.orgID(), f.acme.FounderMembership.ID); !errors.Is(err, rbac.ErrForbidden) {
		t.Errorf("viewer removing admin err = %v, want ForbiddenError", err)
	}
	if err := f.svc.RemoveMember(ctx, "alice", f.orgID(), bob.ID); err != nil {
		t.Fatalf("RemoveMember(bob): %v", err)
	}
	ok, err := f.checker.HasPermission(ctx, "bob", f.orgID(), permission.ViewDashboard)
	if err != nil || ok {
		t.Errorf("removed bob HasPermission = %v, %v, want false, nil", ok, err)
	}
	if err := f.svc.RemoveMember(ctx, "alice", f.orgID(), bob.ID); !errors.Is(err, rbac.ErrNotFound) {
		t.Errorf("second removal err = %v, want NotFoundError", err)
	}
}

func TestLeaveOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.AddMember(ctx, "alice", f.orgID(), "bob", ""); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := f.svc.LeaveOrganization(ctx, "alice", f.orgID()); !errors.Is(err, rbac.ErrLastAdmin) {
		t.Errorf("sole admin leaving err = %v, want LastAdminError", err)
	}
	if err := f.svc.LeaveOrganization(ctx, "bob", f.orgID()); err != nil {
		t.Errorf("bob leaving: %v", err)
	}
	if err := f.svc.LeaveOrganization(ctx, "carol", f.orgID()); !errors.Is(err, rbac.ErrNotFound) {
		t.Errorf("non-member leaving err = %v, want NotFoundError", err)
	}
}

func TestListMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, u := range []string{"carol", "bob"} {
		if _, err := f.svc.AddMember(ctx, "alice", f.orgID(), u, ""); err != nil {
			t.Fatalf("AddMember(%s): %v", u, err)
		}
	}
	list, err := f.svc.ListMembers(ctx, "bob", f.orgID())
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	want := []string{"alice", "carol", "bob"}
	if len(list) != len(want) {
		t.Fatalf("members = %d, want %d", len(list), len(want))
	}
	for i, u := range want {
		if list[i].UserID != u {
			t.Errorf("members[%d] = %q, want %q (join order)", i, list[i].UserID, u)
		}
	}
	if _, err := f.svc.ListMembers(ctx, "dave", f.orgID()); !errors.Is(err, rbac.ErrForbidden) {
		t.Errorf("outsider ListMembers err = %v, want ForbiddenError", err)
	}
}

func TestListMyMemberships(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	globex, err := f.orgs.CreateOrganization(ctx, "dave", "globex")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	if _, err := f.svc.AddMember(ctx, "dave", globex.Org.ID, "alice", ""); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	mine, err := f.svc.ListMyMemberships(ctx, "alice")
	if err != nil {
		t.Fatalf("ListMyMemberships: %v", err)
	}
	if len(mine) != 2 || mine[0].OrgID != f.orgID() || mine[1].OrgID != globex.Org.ID {
		t.Errorf("memberships = %+v, want acme then globex", mine)
	}
	none, err := f.svc.ListMyMemberships(ctx, "carol")
	if err != nil || len(none) != 0 {
		t.Errorf("ListMyMemberships(carol) = %v, %v", none, err)
	}
}

// Two admins demoting each other at once must not both succeed.
func TestConcurrentDemotions_KeepOneAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob, err := f.svc.AddMember(ctx, "alice", f.orgID(), "bob", f.roleID(orgservice.RoleAdmin))
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	viewer := f.roleID(orgservice.RoleViewer)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, c := range []struct{ actor, target string }{
		{"alice", bob.ID},
		{"bob", f.acme.FounderMembership.ID},
	} {
		wg.Add(1)
		go func(i int, actor, target string) {
			defer wg.Done()
			_, errs[i] = f.svc.ChangeMemberRole(ctx, actor, f.orgID(), target, viewer)
		}(i, c.actor, c.target)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, rbac.ErrForbidden), errors.Is(err, rbac.ErrLastAdmin):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("succeeded = %d, want exactly 1", succeeded)
	}
	admins := 0
	for _, u := range []string{"alice", "bob"} {
		if ok, _ := f.checker.HasPermission(ctx, u, f.orgID(), permission.All); ok {
			admins++
		}
	}
	if admins != 1 {
		t.Errorf("admins = %d, want 1", admins)
	}
}
