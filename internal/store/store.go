// Package store is the record store behind roles, memberships, organizations and the user directory.
// Reads run through View; every write runs through Update, which is atomic and serialized per organization.
package store

import (
	"context"

	membershiprepo "budget-control-plane/internal/membership/repository"
	orgrepo "budget-control-plane/internal/organization/repository"
	rolerepo "budget-control-plane/internal/role/repository"
	userrepo "budget-control-plane/internal/user/repository"
)

// Repos is the set of repositories bound to one unit of work.
type Repos struct {
	Roles       rolerepo.Repository
	Memberships membershiprepo.Repository
	Orgs        orgrepo.Repository
	Users       userrepo.Repository
}

// Store runs units of work against the backing records.
type Store interface {
	// View runs fn against a read-only view of the records.
	View(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
	// Update runs fn atomically. Writers of the same organization are serialized for the
	// whole of fn, so a check made inside fn still holds when fn's writes commit.
	// If fn returns an error nothing it wrote becomes visible.
	Update(ctx context.Context, orgID string, fn func(ctx context.Context, r Repos) error) error
}
