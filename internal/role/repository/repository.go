package repository

import (
	"context"

	"budget-control-plane/internal/role/domain"
)

// Repository defines persistence for roles and their granted permissions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByOrgAndName(ctx context.Context, orgID, name string) (*domain.Role, error)
	// GetDefault returns the org's default role, or nil when none is marked default.
	GetDefault(ctx context.Context, orgID string) (*domain.Role, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Role, error)
	Create(ctx context.Context, r *domain.Role) error
	// Update replaces name, description, flags and the permission set of an existing role.
	Update(ctx context.Context, r *domain.Role) error
	Delete(ctx context.Context, id string) error
	// ClearDefault unsets IsDefault on every role of the org.
	ClearDefault(ctx context.Context, orgID string) error
}
