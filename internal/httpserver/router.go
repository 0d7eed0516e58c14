package httpserver

import (
	"context"
	"log"

	"checkout-backend/internal/domain"
	"checkout-backend/internal/payment"
	"checkout-backend/internal/service/checkout"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"net/http"
)

// CartService is the cart surface the handlers need.
type CartService interface {
	AddItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error)
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	UpdateItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type CheckoutService interface {
	Start(ctx context.Context, sessionID string) (*checkout.StartResult, error)
	OrdersBySession(ctx context.Context, sessionID string) ([]domain.Order, error)
	OrderByID(ctx context.Context, orderID string) (*domain.Order, error)
}

type ReconcileService interface {
	Confirm(ctx context.Context, intentID, customerName, customerEmail string) (*domain.Order, error)
	HandleEvent(ctx context.Context, evt payment.Event) error
}

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// WebhookVerifier decodes a raw webhook delivery after checking its
// signature header.
type WebhookVerifier interface {
	VerifyAndParse(payload []byte, sigHeader string) (payment.Event, error)
}

type Deps struct {
	CartSvc      CartService
	CheckoutSvc  CheckoutService
	ReconcileSvc ReconcileService
	ProductSvc   ProductService
	Webhook      WebhookVerifier
	MetricsHTTP  http.Handler
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/api/health", healthHandler)
	router.GET("/readyz", readyHandler(db))
	if deps.MetricsHTTP != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHTTP))
	}

	products := router.Group("/api/products")
	products.GET("", listProductsHandler(deps.ProductSvc))
	products.GET("/:id", getProductHandler(deps.ProductSvc))

	cart := router.Group("/api/cart")
	cart.POST("/add", addToCartHandler(deps.CartSvc))
	cart.GET("/:sessionId", getCartHandler(deps.CartSvc))
	cart.PUT("/update", updateCartHandler(deps.CartSvc))
	cart.POST("/remove", removeFromCartHandler(deps.CartSvc))
	cart.POST("/clear", clearCartHandler(deps.CartSvc))

	orders := router.Group("/api/orders")
	orders.POST("/create-payment-intent", createPaymentIntentHandler(deps.CheckoutSvc))
	orders.GET("/session/:sessionId", ordersBySessionHandler(deps.CheckoutSvc))
	orders.GET("/:orderId", getOrderHandler(deps.CheckoutSvc))
	orders.POST("/confirm-payment", confirmPaymentHandler(deps.ReconcileSvc))

	router.POST("/api/webhook", webhookHandler(logger, deps.Webhook, deps.ReconcileSvc))

	return router, nil
}
