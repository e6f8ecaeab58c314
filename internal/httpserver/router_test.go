package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
	paymentsvc "storefront/internal/service/payment"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type stubCustomerService struct {
	customer  *domain.Customer
	token     string
	signupErr error
	loginErr  error
	lookupErr error
}

func (s *stubCustomerService) Signup(_ context.Context, _ customersvc.SignupInput) (*domain.Customer, string, error) {
	return s.customer, s.token, s.signupErr
}

func (s *stubCustomerService) Login(_ context.Context, _, _ string) (*domain.Customer, string, error) {
	return s.customer, s.token, s.loginErr
}

func (s *stubCustomerService) Logout(_ context.Context, _ string) error {
	return nil
}

func (s *stubCustomerService) LookupByToken(_ context.Context, _ string) (*domain.Customer, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.customer, nil
}

type stubProductService struct {
	products []domain.Product
	product  *domain.Product
	err      error
}

func (s *stubProductService) List(_ context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) Get(_ context.Context, _ string) (*domain.Product, error) {
	if s.product == nil {
		return nil, domain.ErrNotFound
	}
	return s.product, s.err
}

type stubReviewService struct {
	review  *domain.Review
	reviews []domain.Review
	err     error
}

func (s *stubReviewService) Create(_ context.Context, _, _ string, _ int, _, _ string) (*domain.Review, error) {
	return s.review, s.err
}

func (s *stubReviewService) ListByProduct(_ context.Context, _ string) ([]domain.Review, error) {
	return s.reviews, s.err
}

type stubCartService struct {
	cart *domain.Cart
	err  error
}

func (s *stubCartService) Get(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(_ context.Context, _, _ string, _ int) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) UpdateQuantity(_ context.Context, _, _ string, _ int) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, _, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) Clear(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) SetCoupon(_ context.Context, _, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

type stubCouponService struct {
	applied *domain.AppliedDiscount
	err     error
}

func (s *stubCouponService) Apply(_ context.Context, _ string, _ decimal.Decimal) (*domain.AppliedDiscount, error) {
	return s.applied, s.err
}

func (s *stubCouponService) Evaluate(_ context.Context, _ string, _ decimal.Decimal) (*domain.AppliedDiscount, error) {
	return s.applied, s.err
}

func (s *stubCouponService) Remove(_ context.Context, _ string) error {
	return s.err
}

type stubOrderService struct {
	order  *domain.Order
	orders []domain.Order
	err    error
}

func (s *stubOrderService) Create(_ context.Context, _ string, _ ordersvc.CheckoutInput) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) Get(_ context.Context, _, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) GetByPreferenceID(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) List(_ context.Context) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderService) ListByCustomer(_ context.Context, _ string) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderService) Cancel(_ context.Context, _, _, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) Transition(_ context.Context, _ string, _ domain.OrderStatus, _ ordersvc.TransitionInput) (*domain.Order, error) {
	return s.order, s.err
}

type stubPaymentService struct {
	session *domain.PaymentSession
	order   *domain.Order
	err     error
}

func (s *stubPaymentService) CreateSession(_ context.Context, _, _ string) (*domain.PaymentSession, error) {
	return s.session, s.err
}

func (s *stubPaymentService) HandleCallback(_ context.Context, _ paymentsvc.Callback) (*domain.Order, error) {
	return s.order, s.err
}

func testDeps() Deps {
	return Deps{
		CustomerSvc: &stubCustomerService{customer: &domain.Customer{ID: "cust-1"}},
		ProductSvc:  &stubProductService{},
		ReviewSvc:   &stubReviewService{},
		CartSvc:     &stubCartService{cart: &domain.Cart{ID: "cart-1"}},
		CouponSvc:   &stubCouponService{},
		OrderSvc:    &stubOrderService{},
		PaymentSvc:  &stubPaymentService{},
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(zap.NewNop(), nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, testDeps())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := newTestRouter(t, testDeps())

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	deps := testDeps()
	deps.CustomerSvc = &stubCustomerService{lookupErr: customersvc.ErrInvalidToken}
	router := newTestRouter(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := newTestRouter(t, testDeps())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id":"cust-1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAdminGate_ForbidsNonAdmin(t *testing.T) {
	deps := testDeps()
	deps.OrderSvc = &stubOrderService{order: &domain.Order{ID: "order-1"}}
	router := newTestRouter(t, deps)

	body := `{"status":"PROCESSING"}`
	req := httptest.NewRequest(http.MethodPost, "/orders/order-1/status", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAdminGate_AllowsAdmin(t *testing.T) {
	deps := testDeps()
	deps.CustomerSvc = &stubCustomerService{customer: &domain.Customer{ID: "admin-1", Admin: true}}
	deps.OrderSvc = &stubOrderService{order: &domain.Order{ID: "order-1", Status: domain.OrderProcessing}}
	router := newTestRouter(t, deps)

	body := `{"status":"PROCESSING"}`
	req := httptest.NewRequest(http.MethodPost, "/orders/order-1/status", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}
