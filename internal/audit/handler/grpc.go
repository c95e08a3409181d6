package handler

import (
	"context"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	auditv1 "budget-control-plane/api/audit/v1"
	"budget-control-plane/internal/audit/domain"
	auditrepo "budget-control-plane/internal/audit/repository"
	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/platform/rbac"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Server implements AuditService. Callers read their own organization's log and need MANAGE_MEMBERS.
type Server struct {
	auditv1.UnimplementedAuditServiceServer
	repo    auditrepo.Repository
	checker rbac.PermissionChecker
}

// NewServer returns a new Audit gRPC server. If repo or checker is nil, ListAuditLogs returns Unimplemented.
func NewServer(repo auditrepo.Repository, checker rbac.PermissionChecker) *Server {
	return &Server{repo: repo, checker: checker}
}

// ListAuditLogs returns a page of the caller's organization log, newest first. The page token
// is the offset of the next page.
func (s *Server) ListAuditLogs(ctx context.Context, req *auditv1.ListAuditLogsRequest) (*auditv1.ListAuditLogsResponse, error) {
	if s.repo == nil || s.checker == nil {
		return nil, status.Error(codes.Unimplemented, "method ListAuditLogs not implemented")
	}
	orgID, _, err := rbac.RequirePermission(ctx, s.checker, permission.ManageMembers)
	if err != nil {
		return nil, err
	}
	limit := req.PageSize
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	var offset int32
	if req.PageToken != "" {
		n, err := strconv.ParseInt(req.PageToken, 10, 32)
		if err != nil || n < 0 {
			return nil, status.Error(codes.InvalidArgument, "invalid page_token")
		}
		offset = int32(n)
	}
	logs, err := s.repo.ListByOrg(ctx, orgID, limit, offset)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to list audit logs")
	}
	out := make([]*auditv1.AuditLog, 0, len(logs))
	for _, l := range logs {
		out = append(out, domainToProto(l))
	}
	var next string
	if int32(len(logs)) == limit {
		next = strconv.FormatInt(int64(offset+limit), 10)
	}
	return &auditv1.ListAuditLogsResponse{Logs: out, NextPageToken: next}, nil
}

func domainToProto(a *domain.AuditLog) *auditv1.AuditLog {
	return &auditv1.AuditLog{
		Id:        a.ID,
		OrgId:     a.OrgID,
		UserId:    a.UserID,
		Action:    a.Action,
		Resource:  a.Resource,
		Ip:        a.IP,
		Metadata:  a.Metadata,
		CreatedAt: a.CreatedAt,
	}
}
