package store

import (
	"context"
	"database/sql"
	"fmt"

	"budget-control-plane/internal/db"
	membershiprepo "budget-control-plane/internal/membership/repository"
	orgrepo "budget-control-plane/internal/organization/repository"
	rolerepo "budget-control-plane/internal/role/repository"
	userrepo "budget-control-plane/internal/user/repository"
)

// Postgres is a Store backed by a Postgres database.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Store that runs units of work on database.
func NewPostgres(database *sql.DB) *Postgres {
	return &Postgres{db: database}
}

func reposOn(q db.DBTX) Repos {
	return Repos{
		Roles:       rolerepo.NewPostgresRepository(q),
		Memberships: membershiprepo.NewPostgresRepository(q),
		Orgs:        orgrepo.NewPostgresRepository(q),
		Users:       userrepo.NewPostgresRepository(q),
	}
}

// View runs fn with repositories on the connection pool.
func (p *Postgres) View(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	return fn(ctx, reposOn(p.db))
}

// Update runs fn inside a transaction that first locks the organization row.
func (p *Postgres) Update(ctx context.Context, orgID string, fn func(ctx context.Context, r Repos) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	repos := reposOn(tx)
	if orgID != "" {
		if err := repos.Orgs.Lock(ctx, orgID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store: lock organization: %w", err)
		}
	}
	if err := fn(ctx, repos); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}
