package paymentsession

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create stores a new session for the order, marking any prior active
	// session for the same order as superseded. Old rows are kept for audit.
	Create(ctx context.Context, s domain.PaymentSession) (*domain.PaymentSession, error)
	GetByPreferenceID(ctx context.Context, preferenceID string) (*domain.PaymentSession, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.PaymentSession, error)
}
