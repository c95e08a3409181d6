// Package healthv1 is the wire contract of budget.health.v1.HealthService.
package healthv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"budget-control-plane/api/rpc"
)

const ServiceName = "budget.health.v1.HealthService"

type ServingStatus string

const (
	StatusServing    ServingStatus = "SERVING"
	StatusNotServing ServingStatus = "NOT_SERVING"
)

type HealthCheckRequest struct{}

type HealthCheckResponse struct {
	Status ServingStatus `json:"status"`
}

// HealthServiceServer is the server API for HealthService.
type HealthServiceServer interface {
	HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error)
}

// UnimplementedHealthServiceServer returns Unimplemented for every method.
type UnimplementedHealthServiceServer struct{}

func (UnimplementedHealthServiceServer) HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method HealthCheck not implemented")
}

// HealthService_ServiceDesc is the grpc.ServiceDesc for HealthService.
var HealthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HealthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "HealthCheck", func(srv interface{}, ctx context.Context, req *HealthCheckRequest) (*HealthCheckResponse, error) {
			return srv.(HealthServiceServer).HealthCheck(ctx, req)
		}),
	},
	Metadata: "budget/health/v1/health.proto",
}

// RegisterHealthServiceServer registers srv with s.
func RegisterHealthServiceServer(s grpc.ServiceRegistrar, srv HealthServiceServer) {
	s.RegisterService(&HealthService_ServiceDesc, srv)
}
