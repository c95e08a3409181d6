package repository

import (
	"context"
	"database/sql"
	"errors"

	"budget-control-plane/internal/db"
	"budget-control-plane/internal/membership/domain"
)

const membershipColumns = `id, user_id, org_id, role_id, created_at`

type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns a membership repository that runs its queries on q.
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

// GetMembershipByID returns the membership for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetMembershipByID(ctx context.Context, id string) (*domain.Membership, error) {
	return scanMembership(r.q.QueryRowContext(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, id))
}

// GetMembershipByUserAndOrg returns the membership for the given user and org, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	return scanMembership(r.q.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 AND org_id = $2`, userID, orgID))
}

// ListMembershipsByOrg returns all memberships for the given org. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListMembershipsByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error) {
	return r.list(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE org_id = $1 ORDER BY created_at, id`, orgID)
}

// ListMembershipsByUser returns every membership of the user across organizations.
func (r *PostgresRepository) ListMembershipsByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	return r.list(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 ORDER BY created_at, id`, userID)
}

// CreateMembership persists the membership to the database. The membership must have ID set.
func (r *PostgresRepository) CreateMembership(ctx context.Context, m *domain.Membership) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO memberships (`+membershipColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.UserID, m.OrgID, m.RoleID, m.CreatedAt)
	return db.MapError(err)
}

// UpdateRole rebinds the membership to roleID.
func (r *PostgresRepository) UpdateRole(ctx context.Context, id, roleID string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE memberships SET role_id = $2 WHERE id = $1`, id, roleID)
	return err
}

// Delete removes the membership.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	return err
}

// CountByRole returns how many memberships reference roleID.
func (r *PostgresRepository) CountByRole(ctx context.Context, roleID string) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM memberships WHERE role_id = $1`, roleID).Scan(&n)
	return n, err
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg string) ([]*domain.Membership, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrgID, &m.RoleID, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func scanMembership(row *sql.Row) (*domain.Membership, error) {
	var m domain.Membership
	if err := row.Scan(&m.ID, &m.UserID, &m.OrgID, &m.RoleID, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
