package repository

import (
	"context"

	"budget-control-plane/internal/user/domain"
)

// Repository is the user directory consulted when adding members.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}
