package repository

import (
	"context"

	"budget-control-plane/internal/membership/domain"
)

// Repository defines persistence for memberships.
type Repository interface {
	GetMembershipByID(ctx context.Context, id string) (*domain.Membership, error)
	GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
	// ListMembershipsByOrg returns the org's memberships by join time ascending, id breaking ties.
	ListMembershipsByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	CreateMembership(ctx context.Context, m *domain.Membership) error
	UpdateRole(ctx context.Context, id, roleID string) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, roleID string) (int64, error)
}
