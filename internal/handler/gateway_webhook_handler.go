package handler

import (
	"errors"
	"io"
	"net/http"

	"campus/internal/service"

	"github.com/gin-gonic/gin"
)

type GatewayWebhookHandler struct {
	processor *service.WebhookProcessor
}

func NewGatewayWebhookHandler(processor *service.WebhookProcessor) *GatewayWebhookHandler {
	return &GatewayWebhookHandler{processor: processor}
}

// Handle receives asynchronous gateway events. The raw body bytes are the
// exact signature input; re-encoding the JSON would invalidate a legitimate
// signature.
func (h *GatewayWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	sig := c.GetHeader("X-Webhook-Signature")
	if err := h.processor.Process(body, sig); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		case errors.Is(err, service.ErrMalformedPayload):
			// Dropped here; the gateway redelivers on non-2xx.
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		case errors.Is(err, service.ErrNotFound):
			// Unknown order: ack so the gateway stops redelivering.
			c.JSON(http.StatusOK, gin.H{"received": true})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
