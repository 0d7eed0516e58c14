package httpserver

import (
	"errors"
	"net/http"

	"checkout-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// respondError maps domain sentinels onto HTTP statuses. Anything outside
// the taxonomy is a 500 with the error surfaced as-is, never swallowed into
// a success response.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
	case errors.Is(err, domain.ErrPaymentNotConfirmed):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Payment not confirmed"})
	case errors.Is(err, domain.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid signature"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}
