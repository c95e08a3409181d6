package interceptors

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"budget-control-plane/internal/audit"
	"budget-control-plane/internal/audit/domain"
	auditrepo "budget-control-plane/internal/audit/repository"
)

type auditMetadata struct {
	Code string `json:"code"`
}

// AuditUnary returns a unary server interceptor that records an audit log entry after each RPC
// scoped to an organization, including rejected ones. skipMethods lists full method names not to
// audit (e.g. HealthCheck). Writes are best-effort: failures are logged and do not fail the RPC.
func AuditUnary(auditRepo auditrepo.Repository, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if auditRepo == nil || skipMethods[info.FullMethod] {
			return resp, err
		}
		orgID, _ := GetOrgID(ctx)
		if orgID == "" {
			return resp, err
		}
		userID, _ := GetUserID(ctx)
		ar := audit.ParseFullMethod(info.FullMethod)
		meta, _ := json.Marshal(auditMetadata{Code: status.Code(err).String()})
		entry := &domain.AuditLog{
			ID:        uuid.New().String(),
			OrgID:     orgID,
			UserID:    userID,
			Action:    ar.Action,
			Resource:  ar.Resource,
			IP:        ClientIP(ctx),
			Metadata:  string(meta),
			CreatedAt: time.Now().UTC(),
		}
		if createErr := auditRepo.Create(ctx, entry); createErr != nil {
			log.Printf("audit: create entry for %s: %v", info.FullMethod, createErr)
		}
		return resp, err
	}
}

// ClientIP returns the client IP from x-forwarded-for (first hop), x-real-ip, or the peer address;
// "unknown" when none is available.
func ClientIP(ctx context.Context) string {
	if s := metadataValue(ctx, "x-forwarded-for"); s != "" {
		if i := strings.Index(s, ","); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		return s
	}
	if s := metadataValue(ctx, "x-real-ip"); s != "" {
		return s
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}
