package audit

import (
	"context"
	"errors"
	"testing"

	"budget-control-plane/internal/audit/domain"
)

type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return m.entries, nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &mockAuditRepo{}
	l := NewLogger(repo, func(context.Context) string { return "10.0.0.1" })
	l.LogEvent(context.Background(), "org-1", "user-1", "organization_created", "organization", `{"name":"Acme"}`)

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Error("id and created_at should be set")
	}
	if e.OrgID != "org-1" || e.UserID != "user-1" || e.IP != "10.0.0.1" || e.Metadata != `{"name":"Acme"}` {
		t.Errorf("entry = %+v", e)
	}
}

func TestLogger_NoIPExtractor(t *testing.T) {
	repo := &mockAuditRepo{}
	NewLogger(repo, nil).LogEvent(context.Background(), "org-1", "user-1", "a", "r", "")
	if len(repo.entries) != 1 || repo.entries[0].IP != "unknown" {
		t.Errorf("entries = %+v, want one entry with ip unknown", repo.entries)
	}
}

func TestLogger_DropsWithoutOrg(t *testing.T) {
	repo := &mockAuditRepo{}
	NewLogger(repo, nil).LogEvent(context.Background(), "", "user-1", "a", "r", "")
	if len(repo.entries) != 0 {
		t.Errorf("entries = %d, want 0", len(repo.entries))
	}
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	l.LogEvent(context.Background(), "org-1", "user-1", "a", "r", "")
	NewLogger(nil, nil).LogEvent(context.Background(), "org-1", "user-1", "a", "r", "")
}

func TestLogger_RepositoryError(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	NewLogger(repo, nil).LogEvent(context.Background(), "org-1", "user-1", "a", "r", "")
	if len(repo.entries) != 0 {
		t.Errorf("entries = %d, want 0", len(repo.entries))
	}
}
