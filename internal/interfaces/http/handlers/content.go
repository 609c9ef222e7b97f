// internal/interfaces/http/handlers/content.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/content"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// ContentHandler handles public site content endpoints
type ContentHandler struct {
	contentService *content.Service
}

// NewContentHandler creates a new content handler
func NewContentHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, mailer *email.EmailService) *ContentHandler {
	return &ContentHandler{
		contentService: content.NewService(db, cfg, mailer),
	}
}

// ListPosts handles GET /blog
func (h *ContentHandler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	resp, err := h.contentService.ListPosts(page, c.Query("category"), c.Query("tag"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetPost handles GET /blog/:slug
func (h *ContentHandler) GetPost(c *gin.Context) {
	post, err := h.contentService.GetPost(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": post})
}

// AddComment handles POST /blog/:slug/comments
func (h *ContentHandler) AddComment(c *gin.Context) {
	var req content.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.contentService.AddComment(c.Param("slug"), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment submitted for review",
		"data":    comment,
	})
}

// Testimonials handles GET /testimonials
func (h *ContentHandler) Testimonials(c *gin.Context) {
	testimonials, err := h.contentService.ListTestimonials()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": testimonials})
}

// Team handles GET /team
func (h *ContentHandler) Team(c *gin.Context) {
	members, err := h.contentService.ListTeam()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": members})
}

// Contact handles POST /contact
func (h *ContentHandler) Contact(c *gin.Context) {
	var req content.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.contentService.SubmitContact(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message received, we will get back to you soon",
		"data":    gin.H{"id": message.ID},
	})
}

// Subscribe handles POST /subscribe
func (h *ContentHandler) Subscribe(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.contentService.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, content.ErrAlreadySubscribed) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}

// Unsubscribe handles POST /unsubscribe
func (h *ContentHandler) Unsubscribe(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.contentService.Unsubscribe(req.Email); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed"})
}
