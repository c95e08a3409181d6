package handler

import (
	"context"
	"sync"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	organizationv1 "budget-control-plane/api/organization/v1"
	"budget-control-plane/internal/audit"
	auditdomain "budget-control-plane/internal/audit/domain"
	"budget-control-plane/internal/organization/service"
	"budget-control-plane/internal/platform/rbac"
	"budget-control-plane/internal/server/interceptors"
	"budget-control-plane/internal/store/storetest"
)

// mockAuditRepo implements auditrepo.Repository for tests.
type mockAuditRepo struct {
	mu      sync.Mutex
	entries []*auditdomain.AuditLog
}

func (m *mockAuditRepo) ListByOrg(_ context.Context, orgID string, _, _ int32) ([]*auditdomain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*auditdomain.AuditLog
	for _, e := range m.entries {
		if e.OrgID == orgID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockAuditRepo) Create(_ context.Context, a *auditdomain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, a)
	return nil
}

func setup(t *testing.T) (*Server, *mockAuditRepo) {
	t.Helper()
	mem := storetest.NewMemory(t, "alice", "carol")
	checker := rbac.NewChecker(mem, nil)
	repo := &mockAuditRepo{}
	return NewServer(service.NewService(mem, checker, nil), audit.NewLogger(repo, nil)), repo
}

func TestNilService_Unimplemented(t *testing.T) {
	srv := NewServer(nil, nil)
	ctx := interceptors.WithIdentity(context.Background(), "alice", "")
	if _, err := srv.CreateOrganization(ctx, &organizationv1.CreateOrganizationRequest{Name: "acme"}); status.Code(err) != codes.Unimplemented {
		t.Errorf("CreateOrganization code = %v, want Unimplemented", status.Code(err))
	}
	if _, err := srv.GetOrganization(ctx, &organizationv1.GetOrganizationRequest{}); status.Code(err) != codes.Unimplemented {
		t.Errorf("GetOrganization code = %v, want Unimplemented", status.Code(err))
	}
}

func TestCreateOrganization(t *testing.T) {
	srv, repo := setup(t)
	ctx := interceptors.WithIdentity(context.Background(), "alice", "")

	resp, err := srv.CreateOrganization(ctx, &organizationv1.CreateOrganizationRequest{Name: " acme "})
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	if resp.Organization.Name != "acme" || resp.Organization.FounderId != "alice" || resp.Organization.Status != "active" {
		t.Errorf("organization = %+v", resp.Organization)
	}
	if len(resp.Roles) != 4 || resp.FounderMembershipId == "" {
		t.Errorf("roles = %d, founder membership = %q", len(resp.Roles), resp.FounderMembershipId)
	}
	if resp.Roles[0].Name != service.RoleAdmin || len(resp.Roles[0].Permissions) != 1 || resp.Roles[0].Permissions[0] != "ALL" {
		t.Errorf("first role = %+v, want Admin with ALL", resp.Roles[0])
	}

	logs, _ := repo.ListByOrg(ctx, resp.Organization.Id, 10, 0)
	if len(logs) != 1 || logs[0].Action != "organization_created" || logs[0].UserID != "alice" || logs[0].IP != "unknown" {
		t.Errorf("audit entries = %+v", logs)
	}
}

func TestCreateOrganization_Rejections(t *testing.T) {
	srv, repo := setup(t)

	tests := []struct {
		name string
		ctx  context.Context
		req  *organizationv1.CreateOrganizationRequest
		want codes.Code
	}{
		{"unauthenticated", context.Background(), &organizationv1.CreateOrganizationRequest{Name: "acme"}, codes.Unauthenticated},
		{"blank name", interceptors.WithIdentity(context.Background(), "alice", ""), &organizationv1.CreateOrganizationRequest{Name: "  "}, codes.InvalidArgument},
		{"unknown founder", interceptors.WithIdentity(context.Background(), "ghost", ""), &organizationv1.CreateOrganizationRequest{Name: "acme"}, codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.CreateOrganization(tt.ctx, tt.req)
			if status.Code(err) != tt.want {
				t.Errorf("code = %v, want %v (%v)", status.Code(err), tt.want, err)
			}
		})
	}
	if len(repo.entries) != 0 {
		t.Errorf("audit entries after rejections = %d, want 0", len(repo.entries))
	}
}

func TestGetOrganization(t *testing.T) {
	srv, _ := setup(t)
	created, err := srv.CreateOrganization(interceptors.WithIdentity(context.Background(), "alice", ""), &organizationv1.CreateOrganizationRequest{Name: "acme"})
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	orgID := created.Organization.Id

	got, err := srv.GetOrganization(interceptors.WithIdentity(context.Background(), "alice", orgID), &organizationv1.GetOrganizationRequest{})
	if err != nil {
		t.Fatalf("GetOrganization: %v", err)
	}
	if got.Organization.Id != orgID {
		t.Errorf("id = %q, want %q", got.Organization.Id, orgID)
	}

	_, err = srv.GetOrganization(interceptors.WithIdentity(context.Background(), "carol", orgID), &organizationv1.GetOrganizationRequest{})
	if status.Code(err) != codes.PermissionDenied {
		t.Errorf("outsider code = %v, want PermissionDenied", status.Code(err))
	}
	_, err = srv.GetOrganization(interceptors.WithIdentity(context.Background(), "alice", ""), &organizationv1.GetOrganizationRequest{})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("missing org code = %v, want InvalidArgument", status.Code(err))
	}
}
