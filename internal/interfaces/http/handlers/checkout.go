// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/checkout"
	"github.com/your-org/agency-backend/internal/interfaces/http/middleware"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// CheckoutHandler handles checkout submission
type CheckoutHandler struct {
	checkoutService *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, mailer *email.EmailService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkout.NewService(db, cfg, mailer),
	}
}

// Service exposes the checkout service for callback handlers
func (h *CheckoutHandler) Service() *checkout.Service {
	return h.checkoutService
}

// Submit handles POST /checkout
func (h *CheckoutHandler) Submit(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req checkout.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.checkoutService.Submit(c.Request.Context(), userID, &req, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		case errors.Is(err, checkout.ErrUnsupportedCurrency):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout submitted",
		"data":    result,
	})
}
