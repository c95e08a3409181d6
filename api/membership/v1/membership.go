// Package membershipv1 is the wire contract of budget.membership.v1.MembershipService.
package membershipv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"budget-control-plane/api/rpc"
)

const ServiceName = "budget.membership.v1.MembershipService"

type Membership struct {
	Id        string    `json:"id"`
	UserId    string    `json:"user_id"`
	OrgId     string    `json:"org_id"`
	RoleId    string    `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AddMemberRequest assigns the organization's default role when RoleId is empty.
type AddMemberRequest struct {
	UserId string `json:"user_id"`
	RoleId string `json:"role_id,omitempty"`
}

type ChangeMemberRoleRequest struct {
	MembershipId string `json:"membership_id"`
	RoleId       string `json:"role_id"`
}

type RemoveMemberRequest struct {
	MembershipId string `json:"membership_id"`
}

type LeaveOrganizationRequest struct{}

type MembershipResponse struct {
	Membership *Membership `json:"membership"`
}

type Empty struct{}

type ListMembersRequest struct{}

type ListMyMembershipsRequest struct{}

type ListMembershipsResponse struct {
	Memberships []*Membership `json:"memberships"`
}

// MembershipServiceServer is the server API for MembershipService.
type MembershipServiceServer interface {
	AddMember(context.Context, *AddMemberRequest) (*MembershipResponse, error)
	ChangeMemberRole(context.Context, *ChangeMemberRoleRequest) (*MembershipResponse, error)
	RemoveMember(context.Context, *RemoveMemberRequest) (*Empty, error)
	LeaveOrganization(context.Context, *LeaveOrganizationRequest) (*Empty, error)
	ListMembers(context.Context, *ListMembersRequest) (*ListMembershipsResponse, error)
	ListMyMemberships(context.Context, *ListMyMembershipsRequest) (*ListMembershipsResponse, error)
}

// UnimplementedMembershipServiceServer returns Unimplemented for every method.
type UnimplementedMembershipServiceServer struct{}

func (UnimplementedMembershipServiceServer) AddMember(context.Context, *AddMemberRequest) (*MembershipResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddMember not implemented")
}
func (UnimplementedMembershipServiceServer) ChangeMemberRole(context.Context, *ChangeMemberRoleRequest) (*MembershipResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ChangeMemberRole not implemented")
}
func (UnimplementedMembershipServiceServer) RemoveMember(context.Context, *RemoveMemberRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveMember not implemented")
}
func (UnimplementedMembershipServiceServer) LeaveOrganization(context.Context, *LeaveOrganizationRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method LeaveOrganization not implemented")
}
func (UnimplementedMembershipServiceServer) ListMembers(context.Context, *ListMembersRequest) (*ListMembershipsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMembers not implemented")
}
func (UnimplementedMembershipServiceServer) ListMyMemberships(context.Context, *ListMyMembershipsRequest) (*ListMembershipsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMyMemberships not implemented")
}

func server(srv interface{}) MembershipServiceServer { return srv.(MembershipServiceServer) }

// MembershipService_ServiceDesc is the grpc.ServiceDesc for MembershipService.
var MembershipService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MembershipServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "AddMember", func(srv interface{}, ctx context.Context, req *AddMemberRequest) (*MembershipResponse, error) {
			return server(srv).AddMember(ctx, req)
		}),
		rpc.Unary(ServiceName, "ChangeMemberRole", func(srv interface{}, ctx context.Context, req *ChangeMemberRoleRequest) (*MembershipResponse, error) {
			return server(srv).ChangeMemberRole(ctx, req)
		}),
		rpc.Unary(ServiceName, "RemoveMember", func(srv interface{}, ctx context.Context, req *RemoveMemberRequest) (*Empty, error) {
			return server(srv).RemoveMember(ctx, req)
		}),
		rpc.Unary(ServiceName, "LeaveOrganization", func(srv interface{}, ctx context.Context, req *LeaveOrganizationRequest) (*Empty, error) {
			return server(srv).LeaveOrganization(ctx, req)
		}),
		rpc.Unary(ServiceName, "ListMembers", func(srv interface{}, ctx context.Context, req *ListMembersRequest) (*ListMembershipsResponse, error) {
			return server(srv).ListMembers(ctx, req)
		}),
		rpc.Unary(ServiceName, "ListMyMemberships", func(srv interface{}, ctx context.Context, req *ListMyMembershipsRequest) (*ListMembershipsResponse, error) {
			return server(srv).ListMyMemberships(ctx, req)
		}),
	},
	Metadata: "budget/membership/v1/membership.proto",
}

// RegisterMembershipServiceServer registers srv with s.
func RegisterMembershipServiceServer(s grpc.ServiceRegistrar, srv MembershipServiceServer) {
	s.RegisterService(&MembershipService_ServiceDesc, srv)
}
