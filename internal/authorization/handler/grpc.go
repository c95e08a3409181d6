// Package handler exposes the authorization checker over gRPC so other services of the budgeting
// app can ask permission questions without reading roles themselves.
package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	authorizationv1 "budget-control-plane/api/authorization/v1"
	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/platform/rbac"
)

// Checker is the subset of *rbac.Checker the server needs.
type Checker interface {
	rbac.PermissionChecker
	EffectivePermissions(ctx context.Context, userID, orgID string) ([]permission.Permission, error)
}

// Server implements AuthorizationService.
type Server struct {
	authorizationv1.UnimplementedAuthorizationServiceServer
	checker Checker
}

// NewServer returns a new Authorization gRPC server. If checker is nil, every RPC returns Unimplemented.
func NewServer(checker Checker) *Server {
	return &Server{checker: checker}
}

// CheckPermission reports whether a user holds a permission in the caller's organization. Asking
// about another user requires VIEW_MEMBERS.
func (s *Server) CheckPermission(ctx context.Context, req *authorizationv1.CheckPermissionRequest) (*authorizationv1.CheckPermissionResponse, error) {
	if s.checker == nil {
		return nil, status.Error(codes.Unimplemented, "method CheckPermission not implemented")
	}
	p, err := permission.Parse(req.Permission)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	orgID, callerID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	subject := req.UserId
	if subject == "" {
		subject = callerID
	}
	if subject != callerID {
		if _, _, err := rbac.RequirePermission(ctx, s.checker, permission.ViewMembers); err != nil {
			return nil, err
		}
	}
	allowed, err := s.checker.HasPermission(ctx, subject, orgID, p)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &authorizationv1.CheckPermissionResponse{Allowed: allowed}, nil
}

// EffectivePermissions lists what the caller may do in the organization, with ALL expanded.
func (s *Server) EffectivePermissions(ctx context.Context, _ *authorizationv1.EffectivePermissionsRequest) (*authorizationv1.EffectivePermissionsResponse, error) {
	if s.checker == nil {
		return nil, status.Error(codes.Unimplemented, "method EffectivePermissions not implemented")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	effective, err := s.checker.EffectivePermissions(ctx, userID, orgID)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	set := permission.NewSet(effective...)
	all, err := s.checker.HasPermission(ctx, userID, orgID, permission.All)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	if all {
		set.Add(permission.All)
	}

	out := make([]string, 0, len(effective))
	for _, p := range effective {
		out = append(out, string(p))
	}
	counts := permission.CategoriesOf(set)
	badges := make([]authorizationv1.CategoryBadge, 0, len(counts))
	for _, c := range permission.Categories() {
		badges = append(badges, authorizationv1.CategoryBadge{Category: string(c), Granted: counts[c].Granted, Total: counts[c].Total})
	}
	return &authorizationv1.EffectivePermissionsResponse{Permissions: out, Categories: badges}, nil
}
