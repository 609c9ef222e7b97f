// internal/interfaces/http/handlers/callback.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/agency-backend/internal/domain/checkout"
	"github.com/your-org/agency-backend/internal/domain/payment"
)

// CallbackHandler receives gateway callbacks and webhooks. These routes
// are unauthenticated; each gateway authenticates its own way (token
// exchange, HMAC, signature header).
type CallbackHandler struct {
	checkoutService *checkout.Service
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(checkoutService *checkout.Service) *CallbackHandler {
	return &CallbackHandler{
		checkoutService: checkoutService,
	}
}

// Iyzico handles POST and GET /callbacks/iyzico. Iyzico normally posts a
// form-encoded token; some return paths carry it as a query parameter.
func (h *CallbackHandler) Iyzico(c *gin.Context) {
	token := c.PostForm("token")
	if token == "" {
		token = c.Query("token")
	}

	ord, err := h.checkoutService.Iyzico().HandleCallback(c.Request.Context(), token)
	if err != nil {
		logrus.WithError(err).Warn("Iyzico callback failed")
		if errors.Is(err, payment.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment result processed",
		"data": gin.H{
			"order_id": ord.ID,
			"status":   ord.Status,
		},
	})
}

// PayTR handles POST /callbacks/paytr. PayTR retries until it receives
// the literal body "OK", so every processed notification answers exactly
// that; only an unverifiable hash gets an error status.
func (h *CallbackHandler) PayTR(c *gin.Context) {
	params := payment.CallbackParams{
		MerchantOID:     c.PostForm("merchant_oid"),
		Status:          c.PostForm("status"),
		TotalAmount:     c.PostForm("total_amount"),
		Hash:            c.PostForm("hash"),
		FailedReasonMsg: c.PostForm("failed_reason_msg"),
	}

	_, err := h.checkoutService.PayTR().HandleCallback(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidHash) {
			c.String(http.StatusBadRequest, "invalid hash")
			return
		}
		if errors.Is(err, payment.ErrOrderNotFound) {
			// Acknowledge, or PayTR redelivers a notification we can
			// never match
			logrus.WithField("merchant_oid", params.MerchantOID).Warn("PayTR callback for unknown order")
			c.String(http.StatusOK, "OK")
			return
		}
		logrus.WithError(err).Error("PayTR callback processing failed")
		c.String(http.StatusInternalServerError, "error")
		return
	}

	c.String(http.StatusOK, "OK")
}

// Stripe handles POST /callbacks/stripe webhooks
func (h *CallbackHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	_, err = h.checkoutService.Stripe().HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) || errors.Is(err, payment.ErrStaleWebhook) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
			return
		}
		if errors.Is(err, payment.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		logrus.WithError(err).Error("Stripe webhook processing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
