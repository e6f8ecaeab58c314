package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/gateway"
	"storefront/internal/httpserver"
	cartrepo "storefront/internal/repository/cart"
	couponrepo "storefront/internal/repository/coupon"
	customerrepo "storefront/internal/repository/customer"
	orderrepo "storefront/internal/repository/order"
	sessionrepo "storefront/internal/repository/paymentsession"
	productrepo "storefront/internal/repository/product"
	reviewrepo "storefront/internal/repository/review"
	tokenrepo "storefront/internal/repository/token"
	cartsvc "storefront/internal/service/cart"
	couponsvc "storefront/internal/service/coupon"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
	paymentsvc "storefront/internal/service/payment"
	productsvc "storefront/internal/service/product"
	reviewsvc "storefront/internal/service/review"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	var publisher ordersvc.EventPublisher = events.Nop{}
	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Fatal("connect to broker", zap.Error(err))
		}
		defer conn.Close()
		amqpPublisher, err := events.NewPublisher(conn)
		if err != nil {
			logger.Fatal("init publisher", zap.Error(err))
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	} else {
		logger.Info("no AMQP_URL configured, order events disabled")
	}

	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	couponRepo := couponrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	sessionRepo := sessionrepo.NewPostgres(dbpool)
	reviewRepo := reviewrepo.NewPostgres(dbpool)
	customerRepo := customerrepo.NewPostgres(dbpool)
	tokenRepo := tokenrepo.NewPostgres(dbpool)

	productService := productsvc.New(productRepo)
	cartService := cartsvc.New(cartRepo, productRepo)
	couponService := couponsvc.New(couponRepo)
	orderService := ordersvc.New(orderRepo, cartRepo, couponService, publisher, logger)
	customerService := customersvc.New(customerRepo, tokenRepo)
	reviewService := reviewsvc.New(reviewRepo, productRepo)

	providerClient := gateway.NewClient(cfg.PaymentAPIURL, cfg.PaymentAccessToken, cfg.PaymentTimeout)
	paymentService := paymentsvc.New(orderService, sessionRepo, providerClient, paymentsvc.RedirectURLs{
		Success: cfg.CheckoutSuccessURL,
		Failure: cfg.CheckoutFailureURL,
		Pending: cfg.CheckoutPendingURL,
		Webhook: cfg.WebhookURL,
	}, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CustomerSvc: customerService,
		ProductSvc:  productService,
		ReviewSvc:   reviewService,
		CartSvc:     cartService,
		CouponSvc:   couponService,
		OrderSvc:    orderService,
		PaymentSvc:  paymentService,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
