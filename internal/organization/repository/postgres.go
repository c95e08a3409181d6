package repository

import (
	"context"
	"database/sql"
	"errors"

	"budget-control-plane/internal/db"
	"budget-control-plane/internal/organization/domain"
)

type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns an organization repository that runs its queries on q.
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

// GetByID returns the organization for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Org, error) {
	var o domain.Org
	var status string
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, founder_id, status, created_at FROM organizations WHERE id = $1`, id).
		Scan(&o.ID, &o.Name, &o.FounderID, &status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Status = domain.OrgStatus(status)
	return &o, nil
}

// Create persists the organization. The organization must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Org) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO organizations (id, name, founder_id, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.Name, o.FounderID, string(o.Status), o.CreatedAt)
	return err
}

// Lock takes a row lock on the organization. Must run inside a transaction.
func (r *PostgresRepository) Lock(ctx context.Context, id string) error {
	var locked string
	err := r.q.QueryRowContext(ctx, `SELECT id FROM organizations WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return nil
}
