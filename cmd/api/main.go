package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"checkout-backend/internal/cache"
	"checkout-backend/internal/config"
	"checkout-backend/internal/db"
	"checkout-backend/internal/events"
	"checkout-backend/internal/httpserver"
	"checkout-backend/internal/metrics"
	"checkout-backend/internal/payment"
	cartrepo "checkout-backend/internal/repository/cart"
	orderrepo "checkout-backend/internal/repository/order"
	productrepo "checkout-backend/internal/repository/product"
	cartsvc "checkout-backend/internal/service/cart"
	checkoutsvc "checkout-backend/internal/service/checkout"
	productsvc "checkout-backend/internal/service/product"
	reconcilesvc "checkout-backend/internal/service/reconcile"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var productCache cache.ProductCache
	if cfg.RedisAddr != "" {
		productCache = cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		logger.Printf("product cache enabled at %s", cfg.RedisAddr)
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
	defer publisher.Close()
	if publisher.Enabled() {
		logger.Printf("order events enabled, topic %s", cfg.KafkaOrderTopic)
	}

	gateway := payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	reconcileMetrics := metrics.NewReconcile(nil)

	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	productService := productsvc.New(productRepo)
	cartService := cartsvc.New(cartRepo, productRepo, productCache, logger)
	checkoutService := checkoutsvc.New(cartRepo, orderRepo, gateway, cfg.Currency, logger)
	reconcileService := reconcilesvc.New(orderRepo, cartRepo, gateway, publisher, reconcileMetrics, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:      cartService,
		CheckoutSvc:  checkoutService,
		ReconcileSvc: reconcileService,
		ProductSvc:   productService,
		Webhook:      gateway,
		MetricsHTTP:  metrics.Handler(),
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
