// Package organizationv1 is the wire contract of budget.organization.v1.OrganizationService.
package organizationv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"budget-control-plane/api/rpc"
)

const ServiceName = "budget.organization.v1.OrganizationService"

type Organization struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	FounderId string    `json:"founder_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SeededRole is one role created when the organization was founded.
type SeededRole struct {
	Id          string   `json:"id"`
	Name        string   `json:"name"`
	IsDefault   bool     `json:"is_default"`
	Permanent   bool     `json:"permanent"`
	Permissions []string `json:"permissions"`
}

type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

type CreateOrganizationResponse struct {
	Organization        *Organization `json:"organization"`
	Roles               []*SeededRole `json:"roles"`
	FounderMembershipId string        `json:"founder_membership_id"`
}

type GetOrganizationRequest struct{}

type GetOrganizationResponse struct {
	Organization *Organization `json:"organization"`
}

// OrganizationServiceServer is the server API for OrganizationService.
type OrganizationServiceServer interface {
	CreateOrganization(context.Context, *CreateOrganizationRequest) (*CreateOrganizationResponse, error)
	GetOrganization(context.Context, *GetOrganizationRequest) (*GetOrganizationResponse, error)
}

// UnimplementedOrganizationServiceServer returns Unimplemented for every method.
type UnimplementedOrganizationServiceServer struct{}

func (UnimplementedOrganizationServiceServer) CreateOrganization(context.Context, *CreateOrganizationRequest) (*CreateOrganizationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateOrganization not implemented")
}
func (UnimplementedOrganizationServiceServer) GetOrganization(context.Context, *GetOrganizationRequest) (*GetOrganizationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOrganization not implemented")
}

// OrganizationService_ServiceDesc is the grpc.ServiceDesc for OrganizationService.
var OrganizationService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrganizationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "CreateOrganization", func(srv interface{}, ctx context.Context, req *CreateOrganizationRequest) (*CreateOrganizationResponse, error) {
			return srv.(OrganizationServiceServer).CreateOrganization(ctx, req)
		}),
		rpc.Unary(ServiceName, "GetOrganization", func(srv interface{}, ctx context.Context, req *GetOrganizationRequest) (*GetOrganizationResponse, error) {
			return srv.(OrganizationServiceServer).GetOrganization(ctx, req)
		}),
	},
	Metadata: "budget/organization/v1/organization.proto",
}

// RegisterOrganizationServiceServer registers srv with s.
func RegisterOrganizationServiceServer(s grpc.ServiceRegistrar, srv OrganizationServiceServer) {
	s.RegisterService(&OrganizationService_ServiceDesc, srv)
}
