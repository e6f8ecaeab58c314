package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
	paymentsvc "storefront/internal/service/payment"
)

// Deps carries the services the router wires handlers to. Each field is a
// consumer-side interface so tests can drop in stubs.
type Deps struct {
	CustomerSvc CustomerService
	ProductSvc  ProductService
	ReviewSvc   ReviewService
	CartSvc     CartService
	CouponSvc   CouponService
	OrderSvc    OrderService
	PaymentSvc  PaymentService
}

type CustomerService interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, string, error)
	Login(ctx context.Context, email, password string) (*domain.Customer, string, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.Customer, error)
}

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type ReviewService interface {
	Create(ctx context.Context, productID, customerID string, rating int, title, comment string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
}

type CartService interface {
	Get(ctx context.Context, customerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, customerID, productID string, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, customerID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, customerID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, customerID string) (*domain.Cart, error)
	SetCoupon(ctx context.Context, customerID, code string) (*domain.Cart, error)
}

type CouponService interface {
	Apply(ctx context.Context, code string, cartTotal decimal.Decimal) (*domain.AppliedDiscount, error)
	Evaluate(ctx context.Context, code string, cartTotal decimal.Decimal) (*domain.AppliedDiscount, error)
	Remove(ctx context.Context, code string) error
}

type OrderService interface {
	Create(ctx context.Context, customerID string, in ordersvc.CheckoutInput) (*domain.Order, error)
	Get(ctx context.Context, id, customerID string) (*domain.Order, error)
	GetByPreferenceID(ctx context.Context, preferenceID string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	Cancel(ctx context.Context, id, customerID, reason string) (*domain.Order, error)
	Transition(ctx context.Context, id string, to domain.OrderStatus, in ordersvc.TransitionInput) (*domain.Order, error)
}

type PaymentService interface {
	CreateSession(ctx context.Context, orderID, customerID string) (*domain.PaymentSession, error)
	HandleCallback(ctx context.Context, cb paymentsvc.Callback) (*domain.Order, error)
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/auth/signup", signupHandler(deps.CustomerSvc))
	router.POST("/auth/login", loginHandler(deps.CustomerSvc))
	router.POST("/auth/logout", logoutHandler(deps.CustomerSvc))

	router.GET("/products", listProductsHandler(deps.ProductSvc))
	router.GET("/products/:id", getProductHandler(deps.ProductSvc))
	router.GET("/products/:id/reviews", listReviewsHandler(deps.ReviewSvc))

	router.GET("/orders/by-preference/:preferenceId", getOrderByPreferenceHandler(deps.OrderSvc))
	router.POST("/payments/webhook", webhookHandler(deps.PaymentSvc, logger))

	authed := router.Group("/", authMiddleware(deps.CustomerSvc))
	{
		authed.GET("/me", meHandler())

		authed.POST("/products/:id/reviews", createReviewHandler(deps.ReviewSvc))

		authed.GET("/cart", getCartHandler(deps.CartSvc))
		authed.POST("/cart/items", addCartItemHandler(deps.CartSvc))
		authed.PUT("/cart/items/:itemId", updateCartItemHandler(deps.CartSvc))
		authed.DELETE("/cart/items/:itemId", removeCartItemHandler(deps.CartSvc))
		authed.DELETE("/cart", clearCartHandler(deps.CartSvc))

		authed.POST("/coupons/apply", applyCouponHandler(deps.CouponSvc, deps.CartSvc))
		authed.POST("/coupons/remove", removeCouponHandler(deps.CouponSvc, deps.CartSvc))
		authed.POST("/coupons/validate", validateCouponHandler(deps.CouponSvc, deps.CartSvc))

		authed.POST("/orders", createOrderHandler(deps.OrderSvc))
		authed.GET("/orders", listOrdersHandler(deps.OrderSvc))
		authed.GET("/orders/:id", getOrderHandler(deps.OrderSvc))
		authed.POST("/orders/:id/cancel", cancelOrderHandler(deps.OrderSvc))
		authed.POST("/orders/:id/status", adminOnly(), transitionOrderHandler(deps.OrderSvc))

		authed.POST("/payments/create", createPaymentHandler(deps.PaymentSvc))
	}

	return router, nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
