package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	membershipv1 "budget-control-plane/api/membership/v1"
	"budget-control-plane/internal/membership/domain"
	"budget-control-plane/internal/membership/service"
	"budget-control-plane/internal/platform/rbac"
	"budget-control-plane/internal/server/interceptors"
)

// Server implements MembershipService over the membership service.
type Server struct {
	membershipv1.UnimplementedMembershipServiceServer
	svc *service.Service
}

// NewServer returns a new Membership gRPC server. If svc is nil, every RPC returns Unimplemented.
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// AddMember adds a user to the caller's organization. Caller needs MANAGE_MEMBERS.
func (s *Server) AddMember(ctx context.Context, req *membershipv1.AddMemberRequest) (*membershipv1.MembershipResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method AddMember not implemented")
	}
	if req.UserId == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id required")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.svc.AddMember(ctx, userID, orgID, req.UserId, req.RoleId)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &membershipv1.MembershipResponse{Membership: domainToProto(m)}, nil
}

// ChangeMemberRole moves a membership to another role of the same organization.
func (s *Server) ChangeMemberRole(ctx context.Context, req *membershipv1.ChangeMemberRoleRequest) (*membershipv1.MembershipResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ChangeMemberRole not implemented")
	}
	if req.MembershipId == "" || req.RoleId == "" {
		return nil, status.Error(codes.InvalidArgument, "membership_id and role_id required")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.svc.ChangeMemberRole(ctx, userID, orgID, req.MembershipId, req.RoleId)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &membershipv1.MembershipResponse{Membership: domainToProto(m)}, nil
}

// RemoveMember removes a membership. Caller needs MANAGE_MEMBERS.
func (s *Server) RemoveMember(ctx context.Context, req *membershipv1.RemoveMemberRequest) (*membershipv1.Empty, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method RemoveMember not implemented")
	}
	if req.MembershipId == "" {
		return nil, status.Error(codes.InvalidArgument, "membership_id required")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.RemoveMember(ctx, userID, orgID, req.MembershipId); err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &membershipv1.Empty{}, nil
}

// LeaveOrganization removes the caller's own membership. No permission is required.
func (s *Server) LeaveOrganization(ctx context.Context, _ *membershipv1.LeaveOrganizationRequest) (*membershipv1.Empty, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method LeaveOrganization not implemented")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.LeaveOrganization(ctx, userID, orgID); err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &membershipv1.Empty{}, nil
}

// ListMembers lists the caller's organization by join time. Caller needs VIEW_MEMBERS.
func (s *Server) ListMembers(ctx context.Context, _ *membershipv1.ListMembersRequest) (*membershipv1.ListMembershipsResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ListMembers not implemented")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.svc.ListMembers(ctx, userID, orgID)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &membershipv1.ListMembershipsResponse{Memberships: listToProto(list)}, nil
}

// ListMyMemberships lists every organization the caller belongs to. It needs no x-org-id.
func (s *Server) ListMyMemberships(ctx context.Context, _ *membershipv1.ListMyMembershipsRequest) (*membershipv1.ListMembershipsResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ListMyMemberships not implemented")
	}
	userID, ok := interceptors.GetUserID(ctx)
	if !ok || userID == "" {
		return nil, status.Error(codes.Unauthenticated, "user context required")
	}
	list, err := s.svc.ListMyMemberships(ctx, userID)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &membershipv1.ListMembershipsResponse{Memberships: listToProto(list)}, nil
}

func listToProto(list []*domain.Membership) []*membershipv1.Membership {
	out := make([]*membershipv1.Membership, 0, len(list))
	for _, m := range list {
		out = append(out, domainToProto(m))
	}
	return out
}

func domainToProto(m *domain.Membership) *membershipv1.Membership {
	if m == nil {
		return nil
	}
	return &membershipv1.Membership{
		Id:        m.ID,
		UserId:    m.UserID,
		OrgId:     m.OrgID,
		RoleId:    m.RoleID,
		CreatedAt: m.CreatedAt,
	}
}
