package order

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type stubOrderRepo struct {
	order   *domain.Order
	created *domain.Order

	lastUpdate    *orderrepo.StatusUpdate
	updatedStatus domain.OrderStatus
}

func (s *stubOrderRepo) CreateFromCart(_ context.Context, o domain.Order, _ string) (*domain.Order, error) {
	o.ID = "order-1"
	s.created = &o
	return s.created, nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, _ string) (*domain.Order, error) {
	if s.order == nil {
		return nil, domain.ErrNotFound
	}
	return s.order, nil
}

func (s *stubOrderRepo) GetByPreferenceID(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, nil
}

func (s *stubOrderRepo) ListByCustomer(_ context.Context, _ string) ([]domain.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) List(_ context.Context) ([]domain.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, _ string, update orderrepo.StatusUpdate) (*domain.Order, error) {
	s.lastUpdate = &update
	s.updatedStatus = update.Status
	updated := *s.order
	updated.Status = update.Status
	if update.PaymentStatus != nil {
		updated.PaymentStatus = *update.PaymentStatus
	}
	return &updated, nil
}

func (s *stubOrderRepo) UpdatePaymentStatus(_ context.Context, _ string, status domain.PaymentStatus, paymentID string) (*domain.Order, error) {
	updated := *s.order
	updated.PaymentStatus = status
	updated.PaymentID = paymentID
	return &updated, nil
}

func (s *stubOrderRepo) SetPreferenceID(_ context.Context, _, _ string) error {
	return nil
}

type stubCartRepo struct {
	cart *domain.Cart
}

func (s *stubCartRepo) GetOrCreateActive(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, nil
}

type stubEvaluator struct {
	applied *domain.AppliedDiscount
	err     error
}

func (s *stubEvaluator) Evaluate(_ context.Context, _ string, _ decimal.Decimal) (*domain.AppliedDiscount, error) {
	return s.applied, s.err
}

type recordingPublisher struct {
	created []string
	changed []string
}

func (p *recordingPublisher) OrderCreated(_ context.Context, o *domain.Order) error {
	p.created = append(p.created, o.ID)
	return nil
}

func (p *recordingPublisher) OrderStatusChanged(_ context.Context, o *domain.Order, _ domain.OrderStatus) error {
	p.changed = append(p.changed, o.ID)
	return nil
}

func validCheckout() CheckoutInput {
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	return CheckoutInput{
		Shipping: domain.ShippingInfo{
			FullName: "Ana Gomez",
			Address:  "Av. Siempreviva 742",
			Phone:    "+54 11 5555 0000",
		},
		DeliveryType:     "home",
		DeliveryDate:     &date,
		DeliveryTimeSlot: "09:00-12:00",
	}
}

func filledCart() *domain.Cart {
	return &domain.Cart{
		ID: "cart-1",
		Items: []domain.CartItem{
			{ID: "item-1", ProductID: "prod-1", ProductName: "Roses", UnitPrice: dec("10.00"), Quantity: 2},
			{ID: "item-2", ProductID: "prod-2", ProductName: "Tulips", UnitPrice: dec("5.00"), Quantity: 1},
		},
	}
}

func TestCreate_CollectsAllMissingFields(t *testing.T) {
	svc := New(&stubOrderRepo{}, &stubCartRepo{cart: filledCart()}, &stubEvaluator{}, &recordingPublisher{}, nil)

	in := validCheckout()
	in.Shipping.Phone = ""
	in.DeliveryTimeSlot = ""
	_, err := svc.Create(context.Background(), "cust-1", in)

	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validation.Violations) != 2 {
		t.Fatalf("expected both violations reported, got %v", validation.Violations)
	}
	joined := strings.Join(validation.Violations, "; ")
	if !strings.Contains(joined, "phone") || !strings.Contains(joined, "time slot") {
		t.Fatalf("unexpected violations: %v", validation.Violations)
	}
}

func TestCreate_EmptyCart(t *testing.T) {
	svc := New(&stubOrderRepo{}, &stubCartRepo{cart: &domain.Cart{ID: "cart-1"}}, &stubEvaluator{}, &recordingPublisher{}, nil)

	_, err := svc.Create(context.Background(), "cust-1", validCheckout())

	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCreate_SnapshotsCartAndAppliesDiscount(t *testing.T) {
	cart := filledCart()
	cart.CouponCode = "SAVE10"
	repo := &stubOrderRepo{}
	publisher := &recordingPublisher{}
	evaluator := &stubEvaluator{applied: &domain.AppliedDiscount{CouponCode: "SAVE10", DiscountAmount: dec("2.50")}}
	svc := New(repo, &stubCartRepo{cart: cart}, evaluator, publisher, nil)

	created, err := svc.Create(context.Background(), "cust-1", validCheckout())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Status != domain.OrderCreated {
		t.Fatalf("expected status CREATED, got %s", created.Status)
	}
	if created.PaymentStatus != domain.PaymentNotStarted {
		t.Fatalf("expected payment status NOT_STARTED, got %s", created.PaymentStatus)
	}
	// 10*2 + 5*1 = 25.00, minus 2.50 discount.
	if !created.Total.Equal(dec("22.50")) {
		t.Fatalf("expected total 22.50, got %s", created.Total)
	}
	if len(created.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(created.Items))
	}
	if created.Items[0].ProductName != "Roses" || !created.Items[0].UnitPrice.Equal(dec("10.00")) {
		t.Fatalf("item snapshot lost: %+v", created.Items[0])
	}
	if len(publisher.created) != 1 {
		t.Fatal("expected an order created event")
	}
}

func TestCreate_CouponFailureAborts(t *testing.T) {
	cart := filledCart()
	cart.CouponCode = "GONE"
	evaluator := &stubEvaluator{err: &domain.CouponNotFoundError{Code: "GONE"}}
	repo := &stubOrderRepo{}
	svc := New(repo, &stubCartRepo{cart: cart}, evaluator, &recordingPublisher{}, nil)

	_, err := svc.Create(context.Background(), "cust-1", validCheckout())

	var notFound *domain.CouponNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected CouponNotFoundError, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("order must not be created when the coupon fails")
	}
}

func TestTransition_RejectsIllegalEdge(t *testing.T) {
	repo := &stubOrderRepo{order: &domain.Order{ID: "order-1", Status: domain.OrderCreated}}
	svc := New(repo, &stubCartRepo{}, &stubEvaluator{}, &recordingPublisher{}, nil)

	_, err := svc.Transition(context.Background(), "order-1", domain.OrderShipped, TransitionInput{})

	var invalid *domain.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if invalid.From != domain.OrderCreated || invalid.To != domain.OrderShipped {
		t.Fatalf("unexpected edge in error: %+v", invalid)
	}
}

func TestTransition_CancelRequiresReason(t *testing.T) {
	repo := &stubOrderRepo{order: &domain.Order{ID: "order-1", Status: domain.OrderCreated}}
	svc := New(repo, &stubCartRepo{}, &stubEvaluator{}, &recordingPublisher{}, nil)

	_, err := svc.Transition(context.Background(), "order-1", domain.OrderCancelled, TransitionInput{Reason: "  "})

	if !errors.Is(err, domain.ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}
}

func TestTransition_ShippedStampsTracking(t *testing.T) {
	repo := &stubOrderRepo{order: &domain.Order{ID: "order-1", Status: domain.OrderProcessing}}
	publisher := &recordingPublisher{}
	svc := New(repo, &stubCartRepo{}, &stubEvaluator{}, publisher, nil)

	eta := time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)
	updated, err := svc.Transition(context.Background(), "order-1", domain.OrderShipped, TransitionInput{
		TrackingNumber:    "TRK-42",
		EstimatedDelivery: &eta,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.OrderShipped {
		t.Fatalf("expected SHIPPED, got %s", updated.Status)
	}
	if repo.lastUpdate.ShippedAt == nil {
		t.Fatal("expected shipped timestamp to be set")
	}
	if repo.lastUpdate.TrackingNumber == nil || *repo.lastUpdate.TrackingNumber != "TRK-42" {
		t.Fatal("expected tracking number recorded")
	}
	if len(publisher.changed) != 1 {
		t.Fatal("expected a status change event")
	}
}

func TestMarkPaid_ReplayIsIdempotent(t *testing.T) {
	repo := &stubOrderRepo{order: &domain.Order{ID: "order-1", Status: domain.OrderShipped, PaymentStatus: domain.PaymentApproved}}
	svc := New(repo, &stubCartRepo{}, &stubEvaluator{}, &recordingPublisher{}, nil)

	got, err := svc.MarkPaid(context.Background(), "order-1", "pay-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.OrderShipped {
		t.Fatalf("replay must not change status, got %s", got.Status)
	}
	if repo.lastUpdate != nil {
		t.Fatal("replay must not write an update")
	}
}

func TestMarkPaid_MovesCreatedToPaid(t *testing.T) {
	repo := &stubOrderRepo{order: &domain.Order{ID: "order-1", Status: domain.OrderCreated}}
	svc := New(repo, &stubCartRepo{}, &stubEvaluator{}, &recordingPublisher{}, nil)

	got, err := svc.MarkPaid(context.Background(), "order-1", "pay-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.OrderPaid {
		t.Fatalf("expected PAID, got %s", got.Status)
	}
	if got.PaymentStatus != domain.PaymentApproved {
		t.Fatalf("expected APPROVED payment status, got %s", got.PaymentStatus)
	}
	if repo.lastUpdate.PaymentID == nil || *repo.lastUpdate.PaymentID != "pay-9" {
		t.Fatal("expected payment id recorded")
	}
}

func TestCancel_ChecksOwnership(t *testing.T) {
	repo := &stubOrderRepo{order: &domain.Order{ID: "order-1", CustomerID: "cust-1", Status: domain.OrderCreated}}
	svc := New(repo, &stubCartRepo{}, &stubEvaluator{}, &recordingPublisher{}, nil)

	if _, err := svc.Cancel(context.Background(), "order-1", "cust-2", "changed my mind"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign order, got %v", err)
	}

	got, err := svc.Cancel(context.Background(), "order-1", "cust-1", "changed my mind")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.OrderCancelled {
		t.Fatalf("expected CANCELLED, got %s", got.Status)
	}
}

func TestCancel_DeliveredIsFinal(t *testing.T) {
	repo := &stubOrderRepo{order: &domain.Order{ID: "order-1", CustomerID: "cust-1", Status: domain.OrderDelivered}}
	svc := New(repo, &stubCartRepo{}, &stubEvaluator{}, &recordingPublisher{}, nil)

	_, err := svc.Cancel(context.Background(), "order-1", "cust-1", "too late")

	var invalid *domain.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}
