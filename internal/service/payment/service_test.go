package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/gateway"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type stubOrderManager struct {
	order *domain.Order

	markedPaid     string
	paymentID      string
	recordedStatus domain.PaymentStatus
	recorded       bool
	preferenceID   string
}

func (s *stubOrderManager) Get(_ context.Context, _, _ string) (*domain.Order, error) {
	if s.order == nil {
		return nil, domain.ErrNotFound
	}
	return s.order, nil
}

func (s *stubOrderManager) GetByPreferenceID(_ context.Context, _ string) (*domain.Order, error) {
	if s.order == nil {
		return nil, domain.ErrNotFound
	}
	return s.order, nil
}

func (s *stubOrderManager) MarkPaid(_ context.Context, id, paymentID string) (*domain.Order, error) {
	s.markedPaid = id
	s.paymentID = paymentID
	updated := *s.order
	updated.Status = domain.OrderPaid
	updated.PaymentStatus = domain.PaymentApproved
	return &updated, nil
}

func (s *stubOrderManager) RecordPaymentStatus(_ context.Context, _ string, status domain.PaymentStatus, paymentID string) (*domain.Order, error) {
	s.recorded = true
	s.recordedStatus = status
	s.paymentID = paymentID
	updated := *s.order
	updated.PaymentStatus = status
	return &updated, nil
}

func (s *stubOrderManager) SetPreferenceID(_ context.Context, _, preferenceID string) error {
	s.preferenceID = preferenceID
	return nil
}

type stubSessionRepo struct {
	session *domain.PaymentSession
	created *domain.PaymentSession
}

func (s *stubSessionRepo) Create(_ context.Context, sess domain.PaymentSession) (*domain.PaymentSession, error) {
	sess.ID = "sess-1"
	s.created = &sess
	return s.created, nil
}

func (s *stubSessionRepo) GetByPreferenceID(_ context.Context, _ string) (*domain.PaymentSession, error) {
	if s.session == nil {
		return nil, domain.ErrNotFound
	}
	return s.session, nil
}

type stubProvider struct {
	preference *gateway.Preference
	err        error
	lastReq    gateway.PreferenceRequest
}

func (s *stubProvider) CreatePreference(_ context.Context, req gateway.PreferenceRequest) (*gateway.Preference, error) {
	s.lastReq = req
	return s.preference, s.err
}

func payableOrder() *domain.Order {
	return &domain.Order{
		ID:         "order-1",
		CustomerID: "cust-1",
		Status:     domain.OrderCreated,
		Items: []domain.OrderItem{
			{ProductName: "Roses", UnitPrice: dec("10.00"), Quantity: 2},
		},
	}
}

func testURLs() RedirectURLs {
	return RedirectURLs{
		Success: "https://shop.test/success",
		Failure: "https://shop.test/failure",
		Pending: "https://shop.test/pending",
		Webhook: "https://shop.test/payments/webhook",
	}
}

func TestCreateSession_OpensPreference(t *testing.T) {
	orders := &stubOrderManager{order: payableOrder()}
	sessions := &stubSessionRepo{}
	provider := &stubProvider{preference: &gateway.Preference{ID: "pref-1", RedirectURL: "https://pay.test/pref-1"}}
	svc := New(orders, sessions, provider, testURLs(), nil)

	session, err := svc.CreateSession(context.Background(), "order-1", "cust-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.PreferenceID != "pref-1" || session.RedirectURL != "https://pay.test/pref-1" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if provider.lastReq.OrderID != "order-1" {
		t.Fatal("order id must travel as the external reference")
	}
	if orders.preferenceID != "pref-1" {
		t.Fatal("preference id must be stamped on the order")
	}
}

func TestCreateSession_RejectsNonPayableOrder(t *testing.T) {
	o := payableOrder()
	o.Status = domain.OrderPaid
	svc := New(&stubOrderManager{order: o}, &stubSessionRepo{}, &stubProvider{}, testURLs(), nil)

	_, err := svc.CreateSession(context.Background(), "order-1", "cust-1")

	var notPayable *domain.OrderNotPayableError
	if !errors.As(err, &notPayable) {
		t.Fatalf("expected OrderNotPayableError, got %v", err)
	}
	if notPayable.Status != domain.OrderPaid {
		t.Fatalf("unexpected status in error: %s", notPayable.Status)
	}
}

func TestCreateSession_IncludesDiscountLine(t *testing.T) {
	o := payableOrder()
	o.CouponCode = "SAVE10"
	o.DiscountAmount = dec("2.50")
	provider := &stubProvider{preference: &gateway.Preference{ID: "pref-1"}}
	svc := New(&stubOrderManager{order: o}, &stubSessionRepo{}, provider, testURLs(), nil)

	if _, err := svc.CreateSession(context.Background(), "order-1", "cust-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := provider.lastReq.Items[len(provider.lastReq.Items)-1]
	if !last.UnitPrice.Equal(dec("-2.50")) {
		t.Fatalf("expected negative discount line, got %s", last.UnitPrice)
	}
}

func TestHandleCallback_ApprovedMarksPaid(t *testing.T) {
	orders := &stubOrderManager{order: payableOrder()}
	sessions := &stubSessionRepo{session: &domain.PaymentSession{OrderID: "order-1", PreferenceID: "pref-1"}}
	svc := New(orders, sessions, &stubProvider{}, testURLs(), nil)

	got, err := svc.HandleCallback(context.Background(), Callback{PreferenceID: "pref-1", PaymentID: "pay-9", Status: "approved"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.OrderPaid {
		t.Fatalf("expected PAID, got %s", got.Status)
	}
	if orders.markedPaid != "order-1" || orders.paymentID != "pay-9" {
		t.Fatalf("unexpected mark paid call: %s %s", orders.markedPaid, orders.paymentID)
	}
}

func TestHandleCallback_StatusIsNormalized(t *testing.T) {
	orders := &stubOrderManager{order: payableOrder()}
	sessions := &stubSessionRepo{session: &domain.PaymentSession{OrderID: "order-1"}}
	svc := New(orders, sessions, &stubProvider{}, testURLs(), nil)

	if _, err := svc.HandleCallback(context.Background(), Callback{PreferenceID: "pref-1", Status: "  Approved "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders.markedPaid != "order-1" {
		t.Fatal("mixed-case status should still mark paid")
	}
}

func TestHandleCallback_RejectedKeepsOrderPayable(t *testing.T) {
	orders := &stubOrderManager{order: payableOrder()}
	sessions := &stubSessionRepo{session: &domain.PaymentSession{OrderID: "order-1"}}
	svc := New(orders, sessions, &stubProvider{}, testURLs(), nil)

	got, err := svc.HandleCallback(context.Background(), Callback{PreferenceID: "pref-1", Status: "rejected"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.OrderCreated {
		t.Fatalf("rejected payment must not advance the order, got %s", got.Status)
	}
	if orders.recordedStatus != domain.PaymentRejected {
		t.Fatalf("expected REJECTED recorded, got %s", orders.recordedStatus)
	}
}

func TestHandleCallback_PendingRecordsStatus(t *testing.T) {
	orders := &stubOrderManager{order: payableOrder()}
	sessions := &stubSessionRepo{session: &domain.PaymentSession{OrderID: "order-1"}}
	svc := New(orders, sessions, &stubProvider{}, testURLs(), nil)

	if _, err := svc.HandleCallback(context.Background(), Callback{PreferenceID: "pref-1", Status: "in_process"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders.recordedStatus != domain.PaymentPending {
		t.Fatalf("expected PENDING recorded, got %s", orders.recordedStatus)
	}
}

func TestHandleCallback_SettledOrderIgnoresLateCallback(t *testing.T) {
	o := payableOrder()
	o.Status = domain.OrderPaid
	o.PaymentStatus = domain.PaymentApproved
	orders := &stubOrderManager{order: o}
	sessions := &stubSessionRepo{session: &domain.PaymentSession{OrderID: "order-1"}}
	svc := New(orders, sessions, &stubProvider{}, testURLs(), nil)

	got, err := svc.HandleCallback(context.Background(), Callback{PreferenceID: "pref-1", Status: "pending"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PaymentStatus != domain.PaymentApproved {
		t.Fatal("late pending callback must not regress an approved payment")
	}
	if orders.recorded || orders.markedPaid != "" {
		t.Fatal("no writes expected for a settled order")
	}
}

func TestHandleCallback_UnknownStatus(t *testing.T) {
	orders := &stubOrderManager{order: payableOrder()}
	sessions := &stubSessionRepo{session: &domain.PaymentSession{OrderID: "order-1"}}
	svc := New(orders, sessions, &stubProvider{}, testURLs(), nil)

	_, err := svc.HandleCallback(context.Background(), Callback{PreferenceID: "pref-1", Status: "weird_state"})

	var unknown *domain.UnknownPaymentStatusError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownPaymentStatusError, got %v", err)
	}
	if unknown.Status != "weird_state" {
		t.Fatalf("error should carry the raw status, got %q", unknown.Status)
	}
}

func TestHandleCallback_FallsBackToOrderPreferenceID(t *testing.T) {
	orders := &stubOrderManager{order: payableOrder()}
	sessions := &stubSessionRepo{}
	svc := New(orders, sessions, &stubProvider{}, testURLs(), nil)

	if _, err := svc.HandleCallback(context.Background(), Callback{PreferenceID: "pref-legacy", Status: "approved"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders.markedPaid != "order-1" {
		t.Fatal("fallback lookup by order preference id should resolve")
	}
}
