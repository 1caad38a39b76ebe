package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/errors"
	"github.com/pawmart/pawmart-orders-service/internal/models"
)

// WebhookSignatureHeader carries the provider's hex-encoded HMAC-SHA512 of
// the raw request body.
const WebhookSignatureHeader = "X-Webhook-Signature"

// InitializePayment handles POST /api/v1/payments/initialize
func (h *Handlers) InitializePayment(c *gin.Context) {
	var req models.InitializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind payment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.paymentService.InitializePayment(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyPayment handles GET /api/v1/payments/verify/:reference
func (h *Handlers) VerifyPayment(c *gin.Context) {
	reference := c.Param("reference")

	result, err := h.paymentService.VerifyPayment(c.Request.Context(), reference)
	if err != nil {
		handleError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.PaymentOutcomes.WithLabelValues(result.Status).Inc()
	}

	c.JSON(http.StatusOK, result)
}

// PaymentWebhook handles POST /api/v1/payments/webhook
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	signature := c.GetHeader(WebhookSignatureHeader)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if err := h.paymentService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		if errors.KindOf(err) == errors.KindSignature && h.metrics != nil {
			h.metrics.WebhookRejected.Inc()
		}
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
