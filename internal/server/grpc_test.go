package server

import (
	"context"
	"net"
	"sync"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"budget-control-plane/api/codec"
	healthv1 "budget-control-plane/api/health/v1"
	membershipv1 "budget-control-plane/api/membership/v1"
	organizationv1 "budget-control-plane/api/organization/v1"
	rolev1 "budget-control-plane/api/role/v1"
	"budget-control-plane/api/rpc"
	auditdomain "budget-control-plane/internal/audit/domain"
	membershipservice "budget-control-plane/internal/membership/service"
	organizationservice "budget-control-plane/internal/organization/service"
	"budget-control-plane/internal/platform/rbac"
	roleservice "budget-control-plane/internal/role/service"
	"budget-control-plane/internal/security"
	"budget-control-plane/internal/store/storetest"
)

// mockServiceRegistrar implements grpc.ServiceRegistrar for testing.
type mockServiceRegistrar struct {
	services []string
}

func (m *mockServiceRegistrar) RegisterService(desc *grpc.ServiceDesc, _ interface{}) {
	m.services = append(m.services, desc.ServiceName)
}

func TestRegisterServices_AllServicesRegistered(t *testing.T) {
	reg := &mockServiceRegistrar{}
	RegisterServices(reg, Deps{})

	want := []string{
		organizationv1.ServiceName,
		rolev1.ServiceName,
		membershipv1.ServiceName,
		"budget.authorization.v1.AuthorizationService",
		"budget.audit.v1.AuditService",
		healthv1.ServiceName,
	}
	if len(reg.services) != len(want) {
		t.Fatalf("registered %v, want %v", reg.services, want)
	}
	for i, w := range want {
		if reg.services[i] != w {
			t.Errorf("services[%d] = %q, want %q", i, reg.services[i], w)
		}
	}
}

// memAuditRepo implements auditrepo.Repository in memory.
type memAuditRepo struct {
	mu      sync.Mutex
	entries []*auditdomain.AuditLog
}

func (m *memAuditRepo) ListByOrg(_ context.Context, orgID string, _, _ int32) ([]*auditdomain.AuditLog, error) {
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

func (m *memAuditRepo) Create(_ context.Context, a *auditdomain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, a)
	return nil
}

func (m *memAuditRepo) actions(orgID string) []string {
	logs, _ := m.ListByOrg(context.Background(), orgID, 0, 0)
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

type harness struct {
	conn   *grpc.ClientConn
	tokens *security.TokenProvider
	audit  *memAuditRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mem := storetest.NewMemory(t, "alice", "bob")
	checker := rbac.NewChecker(mem, nil)
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	auditRepo := &memAuditRepo{}
	s := NewGRPCServer(Deps{
		Organizations: organizationservice.NewService(mem, checker, nil),
		Roles:         roleservice.NewService(mem, checker, nil),
		Memberships:   membershipservice.NewService(mem, checker, nil),
		Checker:       checker,
		AuditRepo:     auditRepo,
		Tokens:        tokens,
	})
	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &harness{conn: conn, tokens: tokens, audit: auditRepo}
}

func (h *harness) ctx(t *testing.T, userID, orgID string) context.Context {
	t.Helper()
	md := metadata.MD{}
	if userID != "" {
		token, _, err := h.tokens.IssueAccess(userID)
		if err != nil {
			t.Fatalf("IssueAccess: %v", err)
		}
		md.Set("authorization", "Bearer "+token)
	}
	if orgID != "" {
		md.Set("x-org-id", orgID)
	}
	return metadata.NewOutgoingContext(context.Background(), md)
}

func call[Req, Resp any](ctx context.Context, h *harness, service, method string, req *Req) (*Resp, error) {
	return rpc.Invoke[Req, Resp](ctx, h.conn, service, method, codec.Name, req)
}

func TestEndToEnd(t *testing.T) {
	h := newHarness(t)

	health, err := call[healthv1.HealthCheckRequest, healthv1.HealthCheckResponse](h.ctx(t, "", ""), h, healthv1.ServiceName, "HealthCheck", &healthv1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("HealthCheck without token: %v", err)
	}
	if health.Status != healthv1.StatusServing {
		t.Errorf("health = %v, want SERVING", health.Status)
	}

	_, err = call[rolev1.ListRolesRequest, rolev1.ListRolesResponse](h.ctx(t, "", "org"), h, rolev1.ServiceName, "ListRoles", &rolev1.ListRolesRequest{})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("ListRoles without token code = %v, want Unauthenticated", status.Code(err))
	}

	created, err := call[organizationv1.CreateOrganizationRequest, organizationv1.CreateOrganizationResponse](
		h.ctx(t, "alice", ""), h, organizationv1.ServiceName, "CreateOrganization", &organizationv1.CreateOrganizationRequest{Name: "acme"})
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	orgID := created.Organization.Id
	if len(created.Roles) != 4 {
		t.Fatalf("seeded roles = %d, want 4", len(created.Roles))
	}

	added, err := call[membershipv1.AddMemberRequest, membershipv1.MembershipResponse](
		h.ctx(t, "alice", orgID), h, membershipv1.ServiceName, "AddMember", &membershipv1.AddMemberRequest{UserId: "bob"})
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if added.Membership.UserId != "bob" {
		t.Errorf("membership = %+v", added.Membership)
	}

	_, err = call[rolev1.CreateRoleRequest, rolev1.RoleResponse](
		h.ctx(t, "bob", orgID), h, rolev1.ServiceName, "CreateRole", &rolev1.CreateRoleRequest{Name: "Auditor"})
	if status.Code(err) != codes.PermissionDenied {
		t.Errorf("bob CreateRole code = %v, want PermissionDenied", status.Code(err))
	}

	roles, err := call[rolev1.ListRolesRequest, rolev1.ListRolesResponse](h.ctx(t, "bob", orgID), h, rolev1.ServiceName, "ListRoles", &rolev1.ListRolesRequest{})
	if err != nil {
		t.Fatalf("bob ListRoles: %v", err)
	}
	if len(roles.Roles) != 4 || len(roles.Roles[0].Categories) == 0 {
		t.Errorf("roles = %+v", roles.Roles)
	}

	got := h.audit.actions(orgID)
	want := []string{"organization_created", "member_added", "role_created", "list"}
	if len(got) != len(want) {
		t.Fatalf("audit actions = %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("audit[%d] = %q, want %q", i, got[i], w)
		}
	}
}
