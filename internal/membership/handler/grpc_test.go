package handler

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	membershipv1 "budget-control-plane/api/membership/v1"
	"budget-control-plane/internal/membership/service"
	orgservice "budget-control-plane/internal/organization/service"
	"budget-control-plane/internal/platform/rbac"
	"budget-control-plane/internal/server/interceptors"
	"budget-control-plane/internal/store/storetest"
)

func setup(t *testing.T) (*Server, *orgservice.Result) {
	t.Helper()
	mem := storetest.NewMemory(t, "alice", "bob", "carol")
	checker := rbac.NewChecker(mem, nil)
	acme, err := orgservice.NewService(mem, checker, nil).CreateOrganization(context.Background(), "alice", "acme")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	return NewServer(service.NewService(mem, checker, nil)), acme
}

func as(userID, orgID string) context.Context {
	return interceptors.WithIdentity(context.Background(), userID, orgID)
}

func TestNilService_Unimplemented(t *testing.T) {
	srv := NewServer(nil)
	ctx := as("alice", "org")
	if _, err := srv.AddMember(ctx, &membershipv1.AddMemberRequest{UserId: "bob"}); status.Code(err) != codes.Unimplemented {
		t.Errorf("AddMember code = %v, want Unimplemented", status.Code(err))
	}
	if _, err := srv.ListMyMemberships(ctx, &membershipv1.ListMyMembershipsRequest{}); status.Code(err) != codes.Unimplemented {
		t.Errorf("ListMyMemberships code = %v, want Unimplemented", status.Code(err))
	}
}

func TestAddMember_StatusCodes(t *testing.T) {
	srv, acme := setup(t)
	orgID := acme.Org.ID

	tests := []struct {
		name string
		ctx  context.Context
		req  *membershipv1.AddMemberRequest
		want codes.Code
	}{
		{"missing user", as("alice", orgID), &membershipv1.AddMemberRequest{}, codes.InvalidArgument},
		{"unauthenticated", context.Background(), &membershipv1.AddMemberRequest{UserId: "bob"}, codes.Unauthenticated},
		{"outsider", as("carol", orgID), &membershipv1.AddMemberRequest{UserId: "bob"}, codes.PermissionDenied},
		{"default role", as("alice", orgID), &membershipv1.AddMemberRequest{UserId: "bob"}, codes.OK},
		{"duplicate", as("alice", orgID), &membershipv1.AddMemberRequest{UserId: "bob"}, codes.AlreadyExists},
		{"unknown role", as("alice", orgID), &membershipv1.AddMemberRequest{UserId: "carol", RoleId: "missing"}, codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.AddMember(tt.ctx, tt.req)
			if status.Code(err) != tt.want {
				t.Errorf("code = %v, want %v (%v)", status.Code(err), tt.want, err)
			}
		})
	}
}

func TestMembershipLifecycle(t *testing.T) {
	srv, acme := setup(t)
	orgID := acme.Org.ID
	admin := as("alice", orgID)

	added, err := srv.AddMember(admin, &membershipv1.AddMemberRequest{UserId: "bob"})
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if added.Membership.RoleId != acme.Role(orgservice.RoleViewer).ID {
		t.Errorf("role = %q, want default Viewer", added.Membership.RoleId)
	}

	changed, err := srv.ChangeMemberRole(admin, &membershipv1.ChangeMemberRoleRequest{
		MembershipId: added.Membership.Id,
		RoleId:       acme.Role(orgservice.RoleTreasurer).ID,
	})
	if err != nil {
		t.Fatalf("ChangeMemberRole: %v", err)
	}
	if changed.Membership.RoleId != acme.Role(orgservice.RoleTreasurer).ID {
		t.Errorf("role after change = %q", changed.Membership.RoleId)
	}

	list, err := srv.ListMembers(as("bob", orgID), &membershipv1.ListMembersRequest{})
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(list.Memberships) != 2 || list.Memberships[0].UserId != "alice" || list.Memberships[1].UserId != "bob" {
		t.Errorf("members = %+v", list.Memberships)
	}

	mine, err := srv.ListMyMemberships(interceptors.WithIdentity(context.Background(), "bob", ""), &membershipv1.ListMyMembershipsRequest{})
	if err != nil {
		t.Fatalf("ListMyMemberships: %v", err)
	}
	if len(mine.Memberships) != 1 || mine.Memberships[0].OrgId != orgID {
		t.Errorf("bob's memberships = %+v", mine.Memberships)
	}

	if _, err := srv.LeaveOrganization(as("bob", orgID), &membershipv1.LeaveOrganizationRequest{}); err != nil {
		t.Fatalf("LeaveOrganization: %v", err)
	}
	_, err = srv.RemoveMember(admin, &membershipv1.RemoveMemberRequest{MembershipId: added.Membership.Id})
	if status.Code(err) != codes.NotFound {
		t.Errorf("remove after leave code = %v, want NotFound", status.Code(err))
	}
}

func TestLastAdmin_FailedPrecondition(t *testing.T) {
	srv, acme := setup(t)
	orgID := acme.Org.ID
	admin := as("alice", orgID)

	_, err := srv.LeaveOrganization(admin, &membershipv1.LeaveOrganizationRequest{})
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("founder leave code = %v, want FailedPrecondition", status.Code(err))
	}
	_, err = srv.ChangeMemberRole(admin, &membershipv1.ChangeMemberRoleRequest{
		MembershipId: acme.FounderMembership.ID,
		RoleId:       acme.Role(orgservice.RoleMember).ID,
	})
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("founder demotion code = %v, want FailedPrecondition", status.Code(err))
	}
	_, err = srv.RemoveMember(admin, &membershipv1.RemoveMemberRequest{MembershipId: acme.FounderMembership.ID})
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("founder removal code = %v, want FailedPrecondition", status.Code(err))
	}
}

func TestListMyMemberships_Unauthenticated(t *testing.T) {
	srv, _ := setup(t)
	_, err := srv.ListMyMemberships(context.Background(), &membershipv1.ListMyMembershipsRequest{})
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("code = %v, want Unauthenticated", status.Code(err))
	}
}
