package coupon

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// GetByCode matches the code case-insensitively.
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	// ReserveUse increments the usage counter, honoring the usage limit.
	// Returns domain.ErrNotFound when the limit is already exhausted.
	ReserveUse(ctx context.Context, id string) error
	// ReleaseUse decrements the usage counter, never below zero.
	ReleaseUse(ctx context.Context, id string) error
	Upsert(ctx context.Context, c domain.Coupon) (*domain.Coupon, error)
}
