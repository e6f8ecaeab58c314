package customer

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create returns domain.ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}
