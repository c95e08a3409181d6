// Package rolev1 is the wire contract of budget.role.v1.RoleService.
package rolev1

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"budget-control-plane/api/rpc"
)

const ServiceName = "budget.role.v1.RoleService"

// CategoryBadge is the granted/total count shown next to a category checkbox.
type CategoryBadge struct {
	Category string `json:"category"`
	Granted  int    `json:"granted"`
	Total    int    `json:"total"`
}

type Role struct {
	Id          string          `json:"id"`
	OrgId       string          `json:"org_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	IsDefault   bool            `json:"is_default"`
	Permanent   bool            `json:"permanent"`
	Permissions []string        `json:"permissions"`
	Categories  []CategoryBadge `json:"categories"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type PermissionEntry struct {
	Permission string `json:"permission"`
	Category   string `json:"category"`
}

type CreateRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	IsDefault   bool     `json:"is_default,omitempty"`
}

// UpdateRoleRequest leaves absent fields unchanged. Permissions replaces the whole set when present.
type UpdateRoleRequest struct {
	RoleId      string    `json:"role_id"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
	IsDefault   *bool     `json:"is_default,omitempty"`
}

type DeleteRoleRequest struct {
	RoleId string `json:"role_id"`
}

type DeleteRoleResponse struct{}

type PermissionRequest struct {
	RoleId     string `json:"role_id"`
	Permission string `json:"permission"`
}

type ToggleCategoryRequest struct {
	RoleId   string `json:"role_id"`
	Category string `json:"category"`
	Granted  bool   `json:"granted"`
}

type GetRoleRequest struct {
	RoleId string `json:"role_id"`
}

type RoleResponse struct {
	Role *Role `json:"role"`
}

type ListRolesRequest struct{}

type ListRolesResponse struct {
	Roles []*Role `json:"roles"`
}

type ListPermissionsRequest struct{}

type ListPermissionsResponse struct {
	Permissions []PermissionEntry `json:"permissions"`
}

// RoleServiceServer is the server API for RoleService.
type RoleServiceServer interface {
	CreateRole(context.Context, *CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(context.Context, *UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(context.Context, *DeleteRoleRequest) (*DeleteRoleResponse, error)
	GrantPermission(context.Context, *PermissionRequest) (*RoleResponse, error)
	RevokePermission(context.Context, *PermissionRequest) (*RoleResponse, error)
	ToggleCategory(context.Context, *ToggleCategoryRequest) (*RoleResponse, error)
	GetRole(context.Context, *GetRoleRequest) (*RoleResponse, error)
	ListRoles(context.Context, *ListRolesRequest) (*ListRolesResponse, error)
	ListPermissions(context.Context, *ListPermissionsRequest) (*ListPermissionsResponse, error)
}

// UnimplementedRoleServiceServer returns Unimplemented for every method.
type UnimplementedRoleServiceServer struct{}

func (UnimplementedRoleServiceServer) CreateRole(context.Context, *CreateRoleRequest) (*RoleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateRole not implemented")
}
func (UnimplementedRoleServiceServer) UpdateRole(context.Context, *UpdateRoleRequest) (*RoleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateRole not implemented")
}
func (UnimplementedRoleServiceServer) DeleteRole(context.Context, *DeleteRoleRequest) (*DeleteRoleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteRole not implemented")
}
func (UnimplementedRoleServiceServer) GrantPermission(context.Context, *PermissionRequest) (*RoleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GrantPermission not implemented")
}
func (UnimplementedRoleServiceServer) RevokePermission(context.Context, *PermissionRequest) (*RoleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RevokePermission not implemented")
}
func (UnimplementedRoleServiceServer) ToggleCategory(context.Context, *ToggleCategoryRequest) (*RoleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ToggleCategory not implemented")
}
func (UnimplementedRoleServiceServer) GetRole(context.Context, *GetRoleRequest) (*RoleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRole not implemented")
}
func (UnimplementedRoleServiceServer) ListRoles(context.Context, *ListRolesRequest) (*ListRolesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListRoles not implemented")
}
func (UnimplementedRoleServiceServer) ListPermissions(context.Context, *ListPermissionsRequest) (*ListPermissionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListPermissions not implemented")
}

func server(srv interface{}) RoleServiceServer { return srv.(RoleServiceServer) }

// RoleService_ServiceDesc is the grpc.ServiceDesc for RoleService.
var RoleService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RoleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "CreateRole", func(srv interface{}, ctx context.Context, req *CreateRoleRequest) (*RoleResponse, error) {
			return server(srv).CreateRole(ctx, req)
		}),
		rpc.Unary(ServiceName, "UpdateRole", func(srv interface{}, ctx context.Context, req *UpdateRoleRequest) (*RoleResponse, error) {
			return server(srv).UpdateRole(ctx, req)
		}),
		rpc.Unary(ServiceName, "DeleteRole", func(srv interface{}, ctx context.Context, req *DeleteRoleRequest) (*DeleteRoleResponse, error) {
			return server(srv).DeleteRole(ctx, req)
		}),
		rpc.Unary(ServiceName, "GrantPermission", func(srv interface{}, ctx context.Context, req *PermissionRequest) (*RoleResponse, error) {
			return server(srv).GrantPermission(ctx, req)
		}),
		rpc.Unary(ServiceName, "RevokePermission", func(srv interface{}, ctx context.Context, req *PermissionRequest) (*RoleResponse, error) {
			return server(srv).RevokePermission(ctx, req)
		}),
		rpc.Unary(ServiceName, "ToggleCategory", func(srv interface{}, ctx context.Context, req *ToggleCategoryRequest) (*RoleResponse, error) {
			return server(srv).ToggleCategory(ctx, req)
		}),
		rpc.Unary(ServiceName, "GetRole", func(srv interface{}, ctx context.Context, req *GetRoleRequest) (*RoleResponse, error) {
			return server(srv).GetRole(ctx, req)
		}),
		rpc.Unary(ServiceName, "ListRoles", func(srv interface{}, ctx context.Context, req *ListRolesRequest) (*ListRolesResponse, error) {
			return server(srv).ListRoles(ctx, req)
		}),
		rpc.Unary(ServiceName, "ListPermissions", func(srv interface{}, ctx context.Context, req *ListPermissionsRequest) (*ListPermissionsResponse, error) {
			return server(srv).ListPermissions(ctx, req)
		}),
	},
	Metadata: "budget/role/v1/role.proto",
}

// RegisterRoleServiceServer registers srv with s.
func RegisterRoleServiceServer(s grpc.ServiceRegistrar, srv RoleServiceServer) {
	s.RegisterService(&RoleService_ServiceDesc, srv)
}
