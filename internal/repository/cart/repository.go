package cart

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// GetOrCreateActive returns the customer's active cart, creating one if
	// none exists.
	GetOrCreateActive(ctx context.Context, customerID string) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	// AddItem inserts a line for the product or increments the existing one.
	// The unit price is snapshotted from the product at call time.
	AddItem(ctx context.Context, cartID string, product domain.Product, quantity int) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	Clear(ctx context.Context, cartID string) error
	SetCoupon(ctx context.Context, cartID, code string) error
}
