package payment

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/gateway"
)

// Service reconciles orders with the payment provider: it opens hosted
// checkout sessions and applies provider callbacks to the order lifecycle.
type Service struct {
	orders   orderManager
	sessions sessionRepo
	provider provider
	urls     RedirectURLs
	logger   *zap.Logger
}

type orderManager interface {
	Get(ctx context.Context, id, customerID string) (*domain.Order, error)
	GetByPreferenceID(ctx context.Context, preferenceID string) (*domain.Order, error)
	MarkPaid(ctx context.Context, id, paymentID string) (*domain.Order, error)
	RecordPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus, paymentID string) (*domain.Order, error)
	SetPreferenceID(ctx context.Context, id, preferenceID string) error
}

type sessionRepo interface {
	Create(ctx context.Context, s domain.PaymentSession) (*domain.PaymentSession, error)
	GetByPreferenceID(ctx context.Context, preferenceID string) (*domain.PaymentSession, error)
}

type provider interface {
	CreatePreference(ctx context.Context, req gateway.PreferenceRequest) (*gateway.Preference, error)
}

// RedirectURLs are the storefront pages the provider sends the customer
// back to, plus the webhook target for server side notifications.
type RedirectURLs struct {
	Success string
	Failure string
	Pending string
	Webhook string
}

func New(orders orderManager, sessions sessionRepo, prov provider, urls RedirectURLs, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orders: orders, sessions: sessions, provider: prov, urls: urls, logger: logger}
}

// CreateSession opens a hosted checkout for the order. Only orders still in
// CREATED are payable. Opening a new session supersedes any earlier one for
// the same order; the latest preference id wins for callback correlation.
func (s *Service) CreateSession(ctx context.Context, orderID, customerID string) (*domain.PaymentSession, error) {
	o, err := s.orders.Get(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OrderCreated {
		return nil, &domain.OrderNotPayableError{Status: o.Status}
	}

	req := gateway.PreferenceRequest{
		OrderID:    o.ID,
		SuccessURL: s.urls.Success,
		FailureURL: s.urls.Failure,
		PendingURL: s.urls.Pending,
		WebhookURL: s.urls.Webhook,
	}
	for _, item := range o.Items {
		req.Items = append(req.Items, gateway.PreferenceItem{
			Title:     item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	if o.DiscountAmount.IsPositive() {
		req.Items = append(req.Items, gateway.PreferenceItem{
			Title:     "Discount " + o.CouponCode,
			Quantity:  1,
			UnitPrice: o.DiscountAmount.Neg(),
		})
	}

	pref, err := s.provider.CreatePreference(ctx, req)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, domain.PaymentSession{
		OrderID:      o.ID,
		PreferenceID: pref.ID,
		RedirectURL:  pref.RedirectURL,
		SuccessURL:   s.urls.Success,
		FailureURL:   s.urls.Failure,
		PendingURL:   s.urls.Pending,
	})
	if err != nil {
		return nil, err
	}
	if err := s.orders.SetPreferenceID(ctx, o.ID, pref.ID); err != nil {
		return nil, err
	}

	s.logger.Info("payment session opened",
		zap.String("order_id", o.ID),
		zap.String("preference_id", pref.ID))
	return session, nil
}

// Callback is a provider notification about a payment's state.
type Callback struct {
	PreferenceID string
	PaymentID    string
	Status       string
}

// HandleCallback applies a provider notification to the matching order.
// Approved payments move the order to PAID; rejections and cancellations
// only record the payment status, leaving the order payable with a fresh
// session. Replayed or out-of-order notifications for an order already at
// PAID or beyond are dropped.
func (s *Service) HandleCallback(ctx context.Context, cb Callback) (*domain.Order, error) {
	o, err := s.lookupOrder(ctx, cb.PreferenceID)
	if err != nil {
		return nil, err
	}

	status := strings.ToLower(strings.TrimSpace(cb.Status))
	if o.Status.AtLeastPaid() {
		s.logger.Info("callback for settled order ignored",
			zap.String("order_id", o.ID),
			zap.String("provider_status", status))
		return o, nil
	}

	switch status {
	case "approved":
		return s.orders.MarkPaid(ctx, o.ID, cb.PaymentID)
	case "rejected", "cancelled":
		return s.orders.RecordPaymentStatus(ctx, o.ID, domain.PaymentRejected, cb.PaymentID)
	case "pending", "in_process":
		return s.orders.RecordPaymentStatus(ctx, o.ID, domain.PaymentPending, cb.PaymentID)
	default:
		return nil, &domain.UnknownPaymentStatusError{Status: cb.Status}
	}
}

// lookupOrder resolves a preference id to its order, preferring the session
// table and falling back to the preference id stamped on the order row.
func (s *Service) lookupOrder(ctx context.Context, preferenceID string) (*domain.Order, error) {
	session, err := s.sessions.GetByPreferenceID(ctx, preferenceID)
	if err == nil {
		return s.orders.Get(ctx, session.OrderID, "")
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.orders.GetByPreferenceID(ctx, preferenceID)
}
