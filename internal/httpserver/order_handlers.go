package httpserver

import (
	"net/http"
	"strings"

	"checkout-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

type startCheckoutRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type confirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
}

func createPaymentIntentHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req startCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		result, err := svc.Start(c.Request.Context(), req.SessionID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func ordersBySessionHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.Param("sessionId"))
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "sessionId required"})
			return
		}
		orders, err := svc.OrdersBySession(c.Request.Context(), sessionID)
		if err != nil {
			respondError(c, err)
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		c.JSON(http.StatusOK, orders)
	}
}

func getOrderHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := strings.TrimSpace(c.Param("orderId"))
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "orderId required"})
			return
		}
		order, err := svc.OrderByID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func confirmPaymentHandler(svc ReconcileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req confirmPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		order, err := svc.Confirm(c.Request.Context(), req.PaymentIntentID, req.CustomerName, req.CustomerEmail)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment successful", "order": order})
	}
}
