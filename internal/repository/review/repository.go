package review

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create returns domain.ErrAlreadyExists when the customer has already
	// reviewed the product.
	Create(ctx context.Context, r domain.Review) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
}
