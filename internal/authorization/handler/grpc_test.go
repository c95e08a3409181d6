package handler

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	authorizationv1 "budget-control-plane/api/authorization/v1"
	membershipservice "budget-control-plane/internal/membership/service"
	orgservice "budget-control-plane/internal/organization/service"
	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/platform/rbac"
	"budget-control-plane/internal/server/interceptors"
	"budget-control-plane/internal/store/storetest"
)

func setup(t *testing.T) (*Server, string) {
	t.Helper()
	ctx := context.Background()
	mem := storetest.NewMemory(t, "alice", "bob", "carol")
	checker := rbac.NewChecker(mem, nil)
	acme, err := orgservice.NewService(mem, checker, nil).CreateOrganization(ctx, "alice", "acme")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	members := membershipservice.NewService(mem, checker, nil)
	if _, err := members.AddMember(ctx, "alice", acme.Org.ID, "bob", acme.Role(orgservice.RoleMember).ID); err != nil {
		t.Fatalf("AddMember(bob): %v", err)
	}
	if _, err := members.AddMember(ctx, "alice", acme.Org.ID, "carol", acme.Role(orgservice.RoleViewer).ID); err != nil {
		t.Fatalf("AddMember(carol): %v", err)
	}
	return NewServer(checker), acme.Org.ID
}

func TestCheckPermission(t *testing.T) {
	srv, orgID := setup(t)
	as := func(u string) context.Context { return interceptors.WithIdentity(context.Background(), u, orgID) }

	tests := []struct {
		name     string
		ctx      context.Context
		req      *authorizationv1.CheckPermissionRequest
		wantCode codes.Code
		allowed  bool
	}{
		{"admin via ALL", as("alice"), &authorizationv1.CheckPermissionRequest{Permission: "MANAGE_BUDGET"}, codes.OK, true},
		{"member allowed", as("bob"), &authorizationv1.CheckPermissionRequest{Permission: "CREATE_TRANSACTIONS"}, codes.OK, true},
		{"member denied", as("bob"), &authorizationv1.CheckPermissionRequest{Permission: "APPROVE_TRANSACTIONS"}, codes.OK, false},
		{"ask about another user", as("bob"), &authorizationv1.CheckPermissionRequest{UserId: "carol", Permission: "CREATE_TRANSACTIONS"}, codes.OK, false},
		{"non-member subject", as("alice"), &authorizationv1.CheckPermissionRequest{UserId: "mallory", Permission: "VIEW_DASHBOARD"}, codes.OK, false},
		{"unknown permission", as("alice"), &authorizationv1.CheckPermissionRequest{Permission: "FLY"}, codes.InvalidArgument, false},
		{"unauthenticated", context.Background(), &authorizationv1.CheckPermissionRequest{Permission: "VIEW_DASHBOARD"}, codes.Unauthenticated, false},
		{"outsider asks about member", interceptors.WithIdentity(context.Background(), "mallory", orgID), &authorizationv1.CheckPermissionRequest{UserId: "bob", Permission: "VIEW_DASHBOARD"}, codes.PermissionDenied, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := srv.CheckPermission(tt.ctx, tt.req)
			if status.Code(err) != tt.wantCode {
				t.Fatalf("code = %v, want %v (%v)", status.Code(err), tt.wantCode, err)
			}
			if err == nil && resp.Allowed != tt.allowed {
				t.Errorf("allowed = %v, want %v", resp.Allowed, tt.allowed)
			}
		})
	}
}

func TestEffectivePermissions(t *testing.T) {
	srv, orgID := setup(t)

	resp, err := srv.EffectivePermissions(interceptors.WithIdentity(context.Background(), "alice", orgID), &authorizationv1.EffectivePermissionsRequest{})
	if err != nil {
		t.Fatalf("EffectivePermissions(alice): %v", err)
	}
	if len(resp.Permissions) != len(permission.Concrete()) {
		t.Errorf("admin permissions = %v, want every concrete permission", resp.Permissions)
	}
	for _, b := range resp.Categories {
		if b.Granted != b.Total {
			t.Errorf("admin badge %+v not fully granted", b)
		}
	}

	resp, err = srv.EffectivePermissions(interceptors.WithIdentity(context.Background(), "carol", orgID), &authorizationv1.EffectivePermissionsRequest{})
	if err != nil {
		t.Fatalf("EffectivePermissions(carol): %v", err)
	}
	want := []string{"VIEW_DASHBOARD", "VIEW_REPORT", "VIEW_MEMBERS"}
	if len(resp.Permissions) != len(want) {
		t.Fatalf("viewer permissions = %v, want %v", resp.Permissions, want)
	}
	for i, w := range want {
		if resp.Permissions[i] != w {
			t.Errorf("permissions[%d] = %q, want %q", i, resp.Permissions[i], w)
		}
	}

	resp, err = srv.EffectivePermissions(interceptors.WithIdentity(context.Background(), "mallory", orgID), &authorizationv1.EffectivePermissionsRequest{})
	if err != nil {
		t.Fatalf("EffectivePermissions(mallory): %v", err)
	}
	if len(resp.Permissions) != 0 {
		t.Errorf("non-member permissions = %v, want none", resp.Permissions)
	}
}

func TestNilChecker_Unimplemented(t *testing.T) {
	srv := NewServer(nil)
	_, err := srv.CheckPermission(context.Background(), &authorizationv1.CheckPermissionRequest{Permission: "VIEW_DASHBOARD"})
	if status.Code(err) != codes.Unimplemented {
		t.Errorf("code = %v, want Unimplemented", status.Code(err))
	}
}
