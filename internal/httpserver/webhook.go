package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// webhookHandler receives provider deliveries on the raw body. Signature
// verification always precedes business dispatch; a delivery that fails it
// is rejected regardless of payload content.
func webhookHandler(logger *log.Logger, verifier WebhookVerifier, svc ReconcileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable body"})
			return
		}

		evt, err := verifier.VerifyAndParse(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			logger.Printf("webhook: rejected delivery: %v", err)
			respondError(c, err)
			return
		}

		if err := svc.HandleEvent(c.Request.Context(), evt); err != nil {
			logger.Printf("webhook: handle %s: %v", evt.RawType, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "event not processed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
