// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/bank"
	"github.com/your-org/agency-backend/internal/domain/catalog"
	"github.com/your-org/agency-backend/internal/domain/content"
	"github.com/your-org/agency-backend/internal/domain/discount"
	"github.com/your-org/agency-backend/internal/domain/order"
	"github.com/your-org/agency-backend/internal/interfaces/http/middleware"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// AdminHandler handles the admin surface
type AdminHandler struct {
	orderService    *order.Service
	discountService *discount.Service
	bankService     *bank.Service
	catalogService  *catalog.Service
	contentService  *content.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, mailer *email.EmailService) *AdminHandler {
	return &AdminHandler{
		orderService:    order.NewService(db, cfg),
		discountService: discount.NewService(db, cfg),
		bankService:     bank.NewService(db, cfg),
		catalogService:  catalog.NewService(db, cfg),
		contentService:  content.NewService(db, cfg, mailer),
	}
}

// ListOrders handles GET /admin/orders
func (h *AdminHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))

	orders, total, err := h.orderService.AdminList(order.Status(c.Query("status")), page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"orders": orders,
			"total":  total,
			"page":   page,
		},
	})
}

// UpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var req struct {
		Status order.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ord, err := h.orderService.AdminUpdateStatus(uint(orderID), req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"data":    ord,
	})
}

// CreateDiscount handles POST /admin/discounts
func (h *AdminHandler) CreateDiscount(c *gin.Context) {
	var req discount.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.discountService.Create(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Discount code created",
		"data":    code,
	})
}

// ListDiscounts handles GET /admin/discounts
func (h *AdminHandler) ListDiscounts(c *gin.Context) {
	codes, err := h.discountService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": codes})
}

// DeactivateDiscount handles DELETE /admin/discounts/:id
func (h *AdminHandler) DeactivateDiscount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid discount id"})
		return
	}

	if err := h.discountService.Deactivate(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Discount code deactivated"})
}

// ListBankAccounts handles GET /admin/bank-accounts
func (h *AdminHandler) ListBankAccounts(c *gin.Context) {
	accounts, err := h.bankService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accounts})
}

// CreateBankAccount handles POST /admin/bank-accounts
func (h *AdminHandler) CreateBankAccount(c *gin.Context) {
	var req bank.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.bankService.Create(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Bank account created",
		"data":    account,
	})
}

// ActivateBankAccount handles POST /admin/bank-accounts/:id/activate
func (h *AdminHandler) ActivateBankAccount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id"})
		return
	}

	account, err := h.bankService.SetActive(uint(id))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bank account activated",
		"data":    account,
	})
}

// DeleteBankAccount handles DELETE /admin/bank-accounts/:id
func (h *AdminHandler) DeleteBankAccount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id"})
		return
	}

	if err := h.bankService.Delete(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bank account deleted"})
}

// CreatePortfolioItem handles POST /admin/portfolio
func (h *AdminHandler) CreatePortfolioItem(c *gin.Context) {
	var req catalog.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.catalogService.Create(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Portfolio item created",
		"data":    item,
	})
}

// UpdatePortfolioItem handles PUT /admin/portfolio/:id
func (h *AdminHandler) UpdatePortfolioItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	var req catalog.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.catalogService.Update(uint(id), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Portfolio item updated",
		"data":    item,
	})
}

// DeletePortfolioItem handles DELETE /admin/portfolio/:id
func (h *AdminHandler) DeletePortfolioItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	if err := h.catalogService.Delete(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Portfolio item deleted"})
}

// CreatePost handles POST /admin/blog
func (h *AdminHandler) CreatePost(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req content.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.contentService.CreatePost(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created",
		"data":    post,
	})
}

// UpdatePost handles PUT /admin/blog/:id
func (h *AdminHandler) UpdatePost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}

	var req content.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.contentService.UpdatePost(uint(id), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated",
		"data":    post,
	})
}

// DeletePost handles DELETE /admin/blog/:id
func (h *AdminHandler) DeletePost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}

	if err := h.contentService.DeletePost(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// ApproveComment handles POST /admin/comments/:id/approve
func (h *AdminHandler) ApproveComment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment id"})
		return
	}

	if err := h.contentService.ApproveComment(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment approved"})
}
