package order

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// StatusUpdate carries the fields a lifecycle transition may set alongside
// the new status. Nil pointers leave the column untouched.
type StatusUpdate struct {
	Status             domain.OrderStatus
	PaymentStatus      *domain.PaymentStatus
	PaymentID          *string
	CancellationReason *string
	TrackingNumber     *string
	EstimatedDelivery  *time.Time
	ShippedAt          *time.Time
	DeliveredAt        *time.Time
}

type Repository interface {
	// CreateFromCart atomically inserts the order with its items, decrements
	// product stock and retires the cart. A stock shortfall rolls the whole
	// unit of work back with an InsufficientStockError.
	CreateFromCart(ctx context.Context, o domain.Order, cartID string) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByPreferenceID(ctx context.Context, preferenceID string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus, paymentID string) (*domain.Order, error)
	SetPreferenceID(ctx context.Context, id, preferenceID string) error
}
