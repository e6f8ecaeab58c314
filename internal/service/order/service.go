package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository/order"
)

// Service is the order lifecycle manager. Every status change goes through
// Transition so the lifecycle table is enforced in exactly one place.
type Service struct {
	orders  orderRepo
	carts   cartRepo
	coupons couponEvaluator
	events  EventPublisher
	logger  *zap.Logger
}

type orderRepo interface {
	CreateFromCart(ctx context.Context, o domain.Order, cartID string) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByPreferenceID(ctx context.Context, preferenceID string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, update order.StatusUpdate) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus, paymentID string) (*domain.Order, error)
	SetPreferenceID(ctx context.Context, id, preferenceID string) error
}

type cartRepo interface {
	GetOrCreateActive(ctx context.Context, customerID string) (*domain.Cart, error)
}

type couponEvaluator interface {
	Evaluate(ctx context.Context, code string, cartTotal decimal.Decimal) (*domain.AppliedDiscount, error)
}

// EventPublisher receives lifecycle notifications. Publishing is best effort:
// a broker failure is logged, never surfaced to the customer.
type EventPublisher interface {
	OrderCreated(ctx context.Context, o *domain.Order) error
	OrderStatusChanged(ctx context.Context, o *domain.Order, from domain.OrderStatus) error
}

func New(orders orderRepo, carts cartRepo, coupons couponEvaluator, events EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orders: orders, carts: carts, coupons: coupons, events: events, logger: logger}
}

// CheckoutInput is everything the customer supplies at checkout. The items
// and the coupon come from the active cart, not from the request.
type CheckoutInput struct {
	Shipping         domain.ShippingInfo
	DeliveryType     string
	DeliveryDate     *time.Time
	DeliveryTimeSlot string
	Notes            string
}

// validate collects every missing field instead of stopping at the first.
func (in CheckoutInput) validate() error {
	var violations []string
	if strings.TrimSpace(in.Shipping.FullName) == "" {
		violations = append(violations, "shipping full name is required")
	}
	if strings.TrimSpace(in.Shipping.Address) == "" {
		violations = append(violations, "shipping address is required")
	}
	if strings.TrimSpace(in.Shipping.Phone) == "" {
		violations = append(violations, "contact phone is required")
	}
	if in.DeliveryDate == nil {
		violations = append(violations, "delivery date is required")
	}
	if strings.TrimSpace(in.DeliveryTimeSlot) == "" {
		violations = append(violations, "delivery time slot is required")
	}
	if len(violations) > 0 {
		return &domain.ValidationError{Violations: violations}
	}
	return nil
}

// Create turns the customer's active cart into an order. The cart's coupon,
// if any, is re-evaluated against the final total; item prices are the
// snapshots frozen when each item was added. Stock is decremented and the
// cart retired in the same transaction as the insert.
func (s *Service) Create(ctx context.Context, customerID string, in CheckoutInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreateActive(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	subtotal := cart.Total()
	discount := decimal.Zero
	couponCode := ""
	if cart.CouponCode != "" {
		applied, err := s.coupons.Evaluate(ctx, cart.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
		discount = applied.DiscountAmount
		couponCode = applied.CouponCode
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}

	created, err := s.orders.CreateFromCart(ctx, domain.Order{
		CustomerID:       customerID,
		Items:            items,
		Status:           domain.OrderCreated,
		PaymentStatus:    domain.PaymentNotStarted,
		Total:            subtotal.Sub(discount),
		CouponCode:       couponCode,
		DiscountAmount:   discount,
		Shipping:         in.Shipping,
		DeliveryType:     in.DeliveryType,
		DeliveryDate:     in.DeliveryDate,
		DeliveryTimeSlot: in.DeliveryTimeSlot,
		Notes:            in.Notes,
	}, cart.ID)
	if err != nil {
		return nil, err
	}

	if err := s.events.OrderCreated(ctx, created); err != nil {
		s.logger.Warn("order created event not published",
			zap.String("order_id", created.ID), zap.Error(err))
	}
	return created, nil
}

// TransitionInput carries the optional fields a transition may record.
type TransitionInput struct {
	Reason            string
	TrackingNumber    string
	EstimatedDelivery *time.Time
}

// Transition moves an order to the given status, enforcing the lifecycle
// table. Cancelling requires a reason; shipping stamps the shipped time and
// optional tracking details; delivering stamps the delivered time.
func (s *Service) Transition(ctx context.Context, id string, to domain.OrderStatus, in TransitionInput) (*domain.Order, error) {
	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(current.Status, to) {
		return nil, &domain.InvalidTransitionError{From: current.Status, To: to}
	}

	update := order.StatusUpdate{Status: to}
	now := time.Now().UTC()
	switch to {
	case domain.OrderCancelled:
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			return nil, domain.ErrMissingReason
		}
		update.CancellationReason = &reason
	case domain.OrderShipped:
		update.ShippedAt = &now
		if in.TrackingNumber != "" {
			update.TrackingNumber = &in.TrackingNumber
		}
		if in.EstimatedDelivery != nil {
			update.EstimatedDelivery = in.EstimatedDelivery
		}
	case domain.OrderDelivered:
		update.DeliveredAt = &now
	case domain.OrderPaid:
		approved := domain.PaymentApproved
		update.PaymentStatus = &approved
	}

	updated, err := s.orders.UpdateStatus(ctx, id, update)
	if err != nil {
		return nil, err
	}

	if err := s.events.OrderStatusChanged(ctx, updated, current.Status); err != nil {
		s.logger.Warn("status change event not published",
			zap.String("order_id", updated.ID),
			zap.String("status", string(updated.Status)),
			zap.Error(err))
	}
	return updated, nil
}

// MarkPaid records an approved payment, transitioning the order to PAID and
// storing the provider's payment id. Orders already at PAID or beyond are
// returned unchanged so replayed confirmations stay idempotent.
func (s *Service) MarkPaid(ctx context.Context, id, paymentID string) (*domain.Order, error) {
	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.AtLeastPaid() {
		return current, nil
	}
	if !domain.CanTransition(current.Status, domain.OrderPaid) {
		return nil, &domain.InvalidTransitionError{From: current.Status, To: domain.OrderPaid}
	}

	approved := domain.PaymentApproved
	updated, err := s.orders.UpdateStatus(ctx, id, order.StatusUpdate{
		Status:        domain.OrderPaid,
		PaymentStatus: &approved,
		PaymentID:     &paymentID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.OrderStatusChanged(ctx, updated, current.Status); err != nil {
		s.logger.Warn("payment approved event not published",
			zap.String("order_id", updated.ID), zap.Error(err))
	}
	return updated, nil
}

// RecordPaymentStatus stores a provider-reported payment state without
// moving the order through its lifecycle.
func (s *Service) RecordPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus, paymentID string) (*domain.Order, error) {
	return s.orders.UpdatePaymentStatus(ctx, id, status, paymentID)
}

// Cancel is a customer-initiated cancellation. Ownership is checked so a
// customer can only cancel their own orders.
func (s *Service) Cancel(ctx context.Context, id, customerID, reason string) (*domain.Order, error) {
	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return s.Transition(ctx, id, domain.OrderCancelled, TransitionInput{Reason: reason})
}

// Get returns an order if it belongs to the customer. An empty customerID
// skips the ownership check for administrative lookups.
func (s *Service) Get(ctx context.Context, id, customerID string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customerID != "" && o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *Service) GetByPreferenceID(ctx context.Context, preferenceID string) (*domain.Order, error) {
	return s.orders.GetByPreferenceID(ctx, preferenceID)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *Service) SetPreferenceID(ctx context.Context, id, preferenceID string) error {
	return s.orders.SetPreferenceID(ctx, id, preferenceID)
}
