package repository

import (
	"context"
	"database/sql"
	"errors"

	"budget-control-plane/internal/db"
	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/role/domain"
)

const roleColumns = `id, org_id, name, description, is_default, permanent, created_at, updated_at`

type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns a role repository that runs its queries on q (a *sql.DB or *sql.Tx).
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

// GetByID returns the role for id with its permissions, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return r.scanOne(ctx, row)
}

// GetByOrgAndName returns the role with the exact (case-sensitive) name in org, or nil if not found.
func (r *PostgresRepository) GetByOrgAndName(ctx context.Context, orgID, name string) (*domain.Role, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE org_id = $1 AND name = $2`, orgID, name)
	return r.scanOne(ctx, row)
}

// GetDefault returns the default role of org, or nil if none is marked default.
func (r *PostgresRepository) GetDefault(ctx context.Context, orgID string) (*domain.Role, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE org_id = $1 AND is_default`, orgID)
	return r.scanOne(ctx, row)
}

// ListByOrg returns every role of org ordered by creation time. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE org_id = $1 ORDER BY created_at, id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Role
	byID := make(map[string]*domain.Role)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
		byID[role.ID] = role
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	permRows, err := r.q.QueryContext(ctx, `
		SELECT rp.role_id, rp.permission
		FROM role_permissions rp
		JOIN roles ro ON ro.id = rp.role_id
		WHERE ro.org_id = $1`, orgID)
	if err != nil {
		return nil, err
	}
	defer permRows.Close()
	for permRows.Next() {
		var roleID, p string
		if err := permRows.Scan(&roleID, &p); err != nil {
			return nil, err
		}
		if role, ok := byID[roleID]; ok {
			role.Permissions.Add(permission.Permission(p))
		}
	}
	return out, permRows.Err()
}

// Create persists the role and its permission set. The role must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, role *domain.Role) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO roles (id, org_id, name, description, is_default, permanent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		role.ID, role.OrgID, role.Name, role.Description, role.IsDefault, role.Permanent, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		return db.MapError(err)
	}
	return r.insertPermissions(ctx, role)
}

// Update overwrites the role row and replaces its permission set.
func (r *PostgresRepository) Update(ctx context.Context, role *domain.Role) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE roles SET name = $2, description = $3, is_default = $4, permanent = $5, updated_at = $6
		WHERE id = $1`,
		role.ID, role.Name, role.Description, role.IsDefault, role.Permanent, role.UpdatedAt)
	if err != nil {
		return db.MapError(err)
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, role.ID); err != nil {
		return err
	}
	return r.insertPermissions(ctx, role)
}

// Delete removes the role; its permission rows cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	return err
}

// ClearDefault unsets the default flag on every role of org.
func (r *PostgresRepository) ClearDefault(ctx context.Context, orgID string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE roles SET is_default = FALSE WHERE org_id = $1 AND is_default`, orgID)
	return err
}

func (r *PostgresRepository) insertPermissions(ctx context.Context, role *domain.Role) error {
	for _, p := range role.Permissions.Sorted() {
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO role_permissions (role_id, permission) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			role.ID, string(p)); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) scanOne(ctx context.Context, row *sql.Row) (*domain.Role, error) {
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rows, err := r.q.QueryContext(ctx, `SELECT permission FROM role_permissions WHERE role_id = $1`, role.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		role.Permissions.Add(permission.Permission(p))
	}
	return role, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRole(s scanner) (*domain.Role, error) {
	var role domain.Role
	if err := s.Scan(&role.ID, &role.OrgID, &role.Name, &role.Description,
		&role.IsDefault, &role.Permanent, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, err
	}
	role.Permissions = permission.NewSet()
	return &role, nil
}
