package repository

import (
	"context"

	"budget-control-plane/internal/audit/domain"
	"budget-control-plane/internal/db"
)

type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns an audit log repository that runs its queries on q.
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

// ListByOrg returns audit logs for the given org, newest first, paginated by limit and offset.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, org_id, user_id, action, resource, ip, metadata, created_at
		FROM audit_logs WHERE org_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		if err := rows.Scan(&a.ID, &a.OrgID, &a.UserID, &a.Action, &a.Resource, &a.IP, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO audit_logs (id, org_id, user_id, action, resource, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.OrgID, a.UserID, a.Action, a.Resource, a.IP, a.Metadata, a.CreatedAt)
	return err
}
