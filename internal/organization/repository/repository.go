package repository

import (
	"context"

	"budget-control-plane/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Org, error)
	Create(ctx context.Context, o *domain.Org) error
	// Lock blocks other writers of the organization until the enclosing transaction ends.
	// It is a no-op when the organization row does not exist yet.
	Lock(ctx context.Context, id string) error
}
