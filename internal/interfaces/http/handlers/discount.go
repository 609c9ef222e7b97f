// internal/interfaces/http/handlers/discount.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/discount"
	"github.com/your-org/agency-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// DiscountHandler handles discount code application
type DiscountHandler struct {
	discountService *discount.Service
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *DiscountHandler {
	return &DiscountHandler{
		discountService: discount.NewService(db, cfg),
	}
}

// Apply handles POST /cart/discount. The response mirrors the legacy AJAX
// contract: success flag, message and two-decimal totals.
func (h *DiscountHandler) Apply(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.discountService.Apply(userID, req.Code)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, discount.ErrNoCart) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Discount applied",
		"subtotal":        result.Subtotal,
		"discount_amount": result.DiscountAmount,
		"total":           result.Total,
	})
}
