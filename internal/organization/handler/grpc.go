package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	organizationv1 "budget-control-plane/api/organization/v1"
	"budget-control-plane/internal/audit"
	"budget-control-plane/internal/organization/domain"
	"budget-control-plane/internal/organization/service"
	"budget-control-plane/internal/platform/rbac"
	"budget-control-plane/internal/server/interceptors"
)

// Server implements OrganizationService.
type Server struct {
	organizationv1.UnimplementedOrganizationServiceServer
	svc         *service.Service
	auditLogger *audit.Logger
}

// NewServer returns a new Organization gRPC server. If svc is nil, every RPC returns Unimplemented.
// auditLogger may be nil.
func NewServer(svc *service.Service, auditLogger *audit.Logger) *Server {
	return &Server{svc: svc, auditLogger: auditLogger}
}

// CreateOrganization founds an organization with the caller as its first admin. It needs no
// x-org-id; the audit entry is written against the new organization.
func (s *Server) CreateOrganization(ctx context.Context, req *organizationv1.CreateOrganizationRequest) (*organizationv1.CreateOrganizationResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method CreateOrganization not implemented")
	}
	userID, ok := interceptors.GetUserID(ctx)
	if !ok || userID == "" {
		return nil, status.Error(codes.Unauthenticated, "user context required")
	}
	res, err := s.svc.CreateOrganization(ctx, userID, req.Name)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	s.auditLogger.LogEvent(ctx, res.Org.ID, userID, "organization_created", "organization", "")

	roles := make([]*organizationv1.SeededRole, 0, len(res.Roles))
	for _, r := range res.Roles {
		roles = append(roles, &organizationv1.SeededRole{
			Id:          r.ID,
			Name:        r.Name,
			IsDefault:   r.IsDefault,
			Permanent:   r.Permanent,
			Permissions: r.Permissions.Strings(),
		})
	}
	return &organizationv1.CreateOrganizationResponse{
		Organization:        domainToProto(res.Org),
		Roles:               roles,
		FounderMembershipId: res.FounderMembership.ID,
	}, nil
}

// GetOrganization returns the caller's organization. Caller needs VIEW_DASHBOARD.
func (s *Server) GetOrganization(ctx context.Context, _ *organizationv1.GetOrganizationRequest) (*organizationv1.GetOrganizationResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method GetOrganization not implemented")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	org, err := s.svc.GetOrganization(ctx, userID, orgID)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &organizationv1.GetOrganizationResponse{Organization: domainToProto(org)}, nil
}

func domainToProto(o *domain.Org) *organizationv1.Organization {
	if o == nil {
		return nil
	}
	return &organizationv1.Organization{
		Id:        o.ID,
		Name:      o.Name,
		FounderId: o.FounderID,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}
