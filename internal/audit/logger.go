package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"budget-control-plane/internal/audit/domain"
	auditrepo "budget-control-plane/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context (e.g. gRPC metadata or peer).
type IPExtractor func(context.Context) string

// Logger writes audit entries whose organization is not known until the handler runs, such as
// the organization_created entry written for the organization a call just created.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger returns a Logger that persists to repo. ipExtractor may be nil; the IP is then "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// LogEvent writes one audit entry. Best-effort: errors are logged and not returned. Entries
// without an organization are dropped.
func (l *Logger) LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	if l == nil || l.repo == nil || orgID == "" {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: log event %s/%s: %v", action, resource, err)
	}
}
