package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	rolev1 "budget-control-plane/api/role/v1"
	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/platform/rbac"
	"budget-control-plane/internal/role/domain"
	"budget-control-plane/internal/role/service"
)

// Server implements RoleService over the role service. The caller's organization comes from
// the x-org-id metadata.
type Server struct {
	rolev1.UnimplementedRoleServiceServer
	svc *service.Service
}

// NewServer returns a new Role gRPC server. A nil svc leaves every role RPC Unimplemented
// except ListPermissions.
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// CreateRole creates a custom role. Caller needs MANAGE_ROLES.
func (s *Server) CreateRole(ctx context.Context, req *rolev1.CreateRoleRequest) (*rolev1.RoleResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method CreateRole not implemented")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	role, err := s.svc.CreateRole(ctx, userID, orgID, service.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: toPermissions(req.Permissions),
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &rolev1.RoleResponse{Role: domainToProto(role)}, nil
}

// UpdateRole applies a partial update. Caller needs MANAGE_ROLES.
func (s *Server) UpdateRole(ctx context.Context, req *rolev1.UpdateRoleRequest) (*rolev1.RoleResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method UpdateRole not implemented")
	}
	if req.RoleId == "" {
		return nil, status.Error(codes.InvalidArgument, "role_id required")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	patch := domain.Patch{Name: req.Name, Description: req.Description, IsDefault: req.IsDefault}
	if req.Permissions != nil {
		ps := toPermissions(*req.Permissions)
		patch.Permissions = &ps
	}
	role, err := s.svc.UpdateRole(ctx, userID, orgID, req.RoleId, patch)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &rolev1.RoleResponse{Role: domainToProto(role)}, nil
}

// DeleteRole deletes an unused custom role. Caller needs MANAGE_ROLES.
func (s *Server) DeleteRole(ctx context.Context, req *rolev1.DeleteRoleRequest) (*rolev1.DeleteRoleResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method DeleteRole not implemented")
	}
	if req.RoleId == "" {
		return nil, status.Error(codes.InvalidArgument, "role_id required")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.DeleteRole(ctx, userID, orgID, req.RoleId); err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &rolev1.DeleteRoleResponse{}, nil
}

// GrantPermission adds one permission to a role.
func (s *Server) GrantPermission(ctx context.Context, req *rolev1.PermissionRequest) (*rolev1.RoleResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method GrantPermission not implemented")
	}
	return s.changePermission(ctx, req, s.svc.GrantPermission)
}

// RevokePermission removes one permission from a role.
func (s *Server) RevokePermission(ctx context.Context, req *rolev1.PermissionRequest) (*rolev1.RoleResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method RevokePermission not implemented")
	}
	return s.changePermission(ctx, req, s.svc.RevokePermission)
}

func (s *Server) changePermission(
	ctx context.Context,
	req *rolev1.PermissionRequest,
	apply func(ctx context.Context, actorID, orgID, roleID string, p permission.Permission) (*domain.Role, error),
) (*rolev1.RoleResponse, error) {
	if req.RoleId == "" {
		return nil, status.Error(codes.InvalidArgument, "role_id required")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	role, err := apply(ctx, userID, orgID, req.RoleId, permission.Permission(req.Permission))
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &rolev1.RoleResponse{Role: domainToProto(role)}, nil
}

// ToggleCategory grants or revokes a whole category.
func (s *Server) ToggleCategory(ctx context.Context, req *rolev1.ToggleCategoryRequest) (*rolev1.RoleResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ToggleCategory not implemented")
	}
	if req.RoleId == "" {
		return nil, status.Error(codes.InvalidArgument, "role_id required")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	role, err := s.svc.ToggleCategory(ctx, userID, orgID, req.RoleId, permission.Category(req.Category), req.Granted)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &rolev1.RoleResponse{Role: domainToProto(role)}, nil
}

// GetRole returns one role. Caller needs VIEW_MEMBERS.
func (s *Server) GetRole(ctx context.Context, req *rolev1.GetRoleRequest) (*rolev1.RoleResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method GetRole not implemented")
	}
	if req.RoleId == "" {
		return nil, status.Error(codes.InvalidArgument, "role_id required")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	role, err := s.svc.GetRole(ctx, userID, orgID, req.RoleId)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	return &rolev1.RoleResponse{Role: domainToProto(role)}, nil
}

// ListRoles returns the organization's roles in creation order. Caller needs VIEW_MEMBERS.
func (s *Server) ListRoles(ctx context.Context, _ *rolev1.ListRolesRequest) (*rolev1.ListRolesResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ListRoles not implemented")
	}
	orgID, userID, err := rbac.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := s.svc.ListRoles(ctx, userID, orgID)
	if err != nil {
		return nil, rbac.ToStatus(err)
	}
	out := make([]*rolev1.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, domainToProto(r))
	}
	return &rolev1.ListRolesResponse{Roles: out}, nil
}

// ListPermissions returns the permission catalog in display order. Any authenticated caller may read it.
func (s *Server) ListPermissions(context.Context, *rolev1.ListPermissionsRequest) (*rolev1.ListPermissionsResponse, error) {
	entries := permission.List()
	out := make([]rolev1.PermissionEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, rolev1.PermissionEntry{Permission: string(e.Permission), Category: string(e.Category)})
	}
	return &rolev1.ListPermissionsResponse{Permissions: out}, nil
}

// toPermissions converts wire identifiers without parsing; the service rejects unknown ones.
func toPermissions(values []string) []permission.Permission {
	out := make([]permission.Permission, 0, len(values))
	for _, v := range values {
		out = append(out, permission.Permission(v))
	}
	return out
}

func domainToProto(r *domain.Role) *rolev1.Role {
	if r == nil {
		return nil
	}
	return &rolev1.Role{
		Id:          r.ID,
		OrgId:       r.OrgID,
		Name:        r.Name,
		Description: r.Description,
		IsDefault:   r.IsDefault,
		Permanent:   r.Permanent,
		Permissions: r.Permissions.Strings(),
		Categories:  badges(r.Permissions),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// badges returns the per-category granted/total counts in category display order.
func badges(s permission.Set) []rolev1.CategoryBadge {
	counts := permission.CategoriesOf(s)
	out := make([]rolev1.CategoryBadge, 0, len(counts))
	for _, c := range permission.Categories() {
		cc := counts[c]
		out = append(out, rolev1.CategoryBadge{Category: string(c), Granted: cc.Granted, Total: cc.Total})
	}
	return out
}
