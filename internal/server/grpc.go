package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	auditv1 "budget-control-plane/api/audit/v1"
	authorizationv1 "budget-control-plane/api/authorization/v1"
	"budget-control-plane/api/codec"
	healthv1 "budget-control-plane/api/health/v1"
	membershipv1 "budget-control-plane/api/membership/v1"
	organizationv1 "budget-control-plane/api/organization/v1"
	rolev1 "budget-control-plane/api/role/v1"

	"budget-control-plane/internal/audit"
	audithandler "budget-control-plane/internal/audit/handler"
	auditrepo "budget-control-plane/internal/audit/repository"
	authorizationhandler "budget-control-plane/internal/authorization/handler"
	healthhandler "budget-control-plane/internal/health/handler"
	membershiphandler "budget-control-plane/internal/membership/handler"
	membershipservice "budget-control-plane/internal/membership/service"
	organizationhandler "budget-control-plane/internal/organization/handler"
	organizationservice "budget-control-plane/internal/organization/service"
	"budget-control-plane/internal/platform/rbac"
	rolehandler "budget-control-plane/internal/role/handler"
	roleservice "budget-control-plane/internal/role/service"
	"budget-control-plane/internal/security"
	"budget-control-plane/internal/server/interceptors"
	"budget-control-plane/internal/telemetry"
)

// HealthCheckMethod is public and excluded from audit and telemetry.
const HealthCheckMethod = "/" + healthv1.ServiceName + "/HealthCheck"

// Deps holds optional service dependencies for gRPC handlers.
type Deps struct {
	// Organizations, Roles and Memberships back their services. A nil service leaves its RPCs Unimplemented.
	Organizations *organizationservice.Service
	Roles         *roleservice.Service
	Memberships   *membershipservice.Service
	// Checker backs AuthorizationService, the audit permission check and the health policy check.
	// If nil, AuthorizationService and ListAuditLogs return Unimplemented.
	Checker *rbac.Checker
	// AuditRepo is the audit log repository for AuditService and the audit interceptor. If nil, ListAuditLogs returns Unimplemented and no RPCs are audited.
	AuditRepo auditrepo.Repository
	// HealthPinger is used by HealthService for readiness (e.g. *sql.DB). If nil, HealthCheck skips DB ping.
	HealthPinger healthhandler.Pinger
	// Tokens validates bearer access tokens. Required by NewGRPCServer.
	Tokens *security.TokenProvider
	// Events receives grpc_request telemetry. May be nil.
	Events telemetry.EventEmitter
}

// RegisterServices registers all gRPC services with the given server.
//
// Service → handler mapping:
//   - OrganizationService  → internal/organization/handler
//   - RoleService          → internal/role/handler
//   - MembershipService    → internal/membership/handler
//   - AuthorizationService → internal/authorization/handler
//   - AuditService         → internal/audit/handler
//   - HealthService        → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	var auditLogger *audit.Logger
	if deps.AuditRepo != nil {
		auditLogger = audit.NewLogger(deps.AuditRepo, interceptors.ClientIP)
	}
	organizationv1.RegisterOrganizationServiceServer(s, organizationhandler.NewServer(deps.Organizations, auditLogger))
	rolev1.RegisterRoleServiceServer(s, rolehandler.NewServer(deps.Roles))
	membershipv1.RegisterMembershipServiceServer(s, membershiphandler.NewServer(deps.Memberships))

	var checker authorizationhandler.Checker
	var permChecker rbac.PermissionChecker
	var policyChecker healthhandler.PolicyChecker
	if deps.Checker != nil {
		checker, permChecker, policyChecker = deps.Checker, deps.Checker, deps.Checker
	}
	authorizationv1.RegisterAuthorizationServiceServer(s, authorizationhandler.NewServer(checker))
	auditv1.RegisterAuditServiceServer(s, audithandler.NewServer(deps.AuditRepo, permChecker))
	healthv1.RegisterHealthServiceServer(s, healthhandler.NewServer(deps.HealthPinger, policyChecker))
}

// NewGRPCServer returns a server speaking the JSON codec with authentication, telemetry and audit
// interceptors, OpenTelemetry instrumentation and every service registered.
func NewGRPCServer(deps Deps, opts ...grpc.ServerOption) *grpc.Server {
	skip := map[string]bool{HealthCheckMethod: true}
	base := []grpc.ServerOption{
		grpc.ForceServerCodec(codec.JSON{}),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.AuthUnary(deps.Tokens, skip),
			interceptors.TelemetryUnary(deps.Events, skip),
			interceptors.AuditUnary(deps.AuditRepo, skip),
		),
	}
	s := grpc.NewServer(append(base, opts...)...)
	RegisterServices(s, deps)
	return s
}
