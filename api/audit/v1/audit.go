// Package auditv1 is the wire contract of budget.audit.v1.AuditService.
package auditv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"budget-control-plane/api/rpc"
)

const ServiceName = "budget.audit.v1.AuditService"

type AuditLog struct {
	Id        string    `json:"id"`
	OrgId     string    `json:"org_id"`
	UserId    string    `json:"user_id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Ip        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListAuditLogsRequest pages the caller's organization log, newest first.
type ListAuditLogsRequest struct {
	PageSize  int32  `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

type ListAuditLogsResponse struct {
	Logs          []*AuditLog `json:"logs"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

// AuditServiceServer is the server API for AuditService.
type AuditServiceServer interface {
	ListAuditLogs(context.Context, *ListAuditLogsRequest) (*ListAuditLogsResponse, error)
}

// UnimplementedAuditServiceServer returns Unimplemented for every method.
type UnimplementedAuditServiceServer struct{}

func (UnimplementedAuditServiceServer) ListAuditLogs(context.Context, *ListAuditLogsRequest) (*ListAuditLogsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAuditLogs not implemented")
}

// AuditService_ServiceDesc is the grpc.ServiceDesc for AuditService.
var AuditService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuditServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "ListAuditLogs", func(srv interface{}, ctx context.Context, req *ListAuditLogsRequest) (*ListAuditLogsResponse, error) {
			return srv.(AuditServiceServer).ListAuditLogs(ctx, req)
		}),
	},
	Metadata: "budget/audit/v1/audit.proto",
}

// RegisterAuditServiceServer registers srv with s.
func RegisterAuditServiceServer(s grpc.ServiceRegistrar, srv AuditServiceServer) {
	s.RegisterService(&AuditService_ServiceDesc, srv)
}
