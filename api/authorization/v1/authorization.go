// Package authorizationv1 is the wire contract of budget.authorization.v1.AuthorizationService.
package authorizationv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"budget-control-plane/api/rpc"
)

const ServiceName = "budget.authorization.v1.AuthorizationService"

// CheckPermissionRequest asks about the caller when UserId is empty.
type CheckPermissionRequest struct {
	UserId     string `json:"user_id,omitempty"`
	Permission string `json:"permission"`
}

type CheckPermissionResponse struct {
	Allowed bool `json:"allowed"`
}

type EffectivePermissionsRequest struct{}

type CategoryBadge struct {
	Category string `json:"category"`
	Granted  int    `json:"granted"`
	Total    int    `json:"total"`
}

type EffectivePermissionsResponse struct {
	Permissions []string        `json:"permissions"`
	Categories  []CategoryBadge `json:"categories"`
}

// AuthorizationServiceServer is the server API for AuthorizationService.
type AuthorizationServiceServer interface {
	CheckPermission(context.Context, *CheckPermissionRequest) (*CheckPermissionResponse, error)
	EffectivePermissions(context.Context, *EffectivePermissionsRequest) (*EffectivePermissionsResponse, error)
}

// UnimplementedAuthorizationServiceServer returns Unimplemented for every method.
type UnimplementedAuthorizationServiceServer struct{}

func (UnimplementedAuthorizationServiceServer) CheckPermission(context.Context, *CheckPermissionRequest) (*CheckPermissionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CheckPermission not implemented")
}
func (UnimplementedAuthorizationServiceServer) EffectivePermissions(context.Context, *EffectivePermissionsRequest) (*EffectivePermissionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method EffectivePermissions not implemented")
}

// AuthorizationService_ServiceDesc is the grpc.ServiceDesc for AuthorizationService.
var AuthorizationService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthorizationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "CheckPermission", func(srv interface{}, ctx context.Context, req *CheckPermissionRequest) (*CheckPermissionResponse, error) {
			return srv.(AuthorizationServiceServer).CheckPermission(ctx, req)
		}),
		rpc.Unary(ServiceName, "EffectivePermissions", func(srv interface{}, ctx context.Context, req *EffectivePermissionsRequest) (*EffectivePermissionsResponse, error) {
			return srv.(AuthorizationServiceServer).EffectivePermissions(ctx, req)
		}),
	},
	Metadata: "budget/authorization/v1/authorization.proto",
}

// RegisterAuthorizationServiceServer registers srv with s.
func RegisterAuthorizationServiceServer(s grpc.ServiceRegistrar, srv AuthorizationServiceServer) {
	s.RegisterService(&AuthorizationService_ServiceDesc, srv)
}
