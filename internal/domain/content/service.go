// internal/domain/content/service.go
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// blogPageSize is the public blog pagination size
const blogPageSize = 6

// ErrAlreadySubscribed is returned for duplicate newsletter signups
var ErrAlreadySubscribed = errors.New("email already subscribed")

// Service handles site content: blog, testimonials, team, contact form
// and newsletter signups.
type Service struct {
	db     *gorm.DB
	config *config.Config
	mailer *email.EmailService
}

// NewService creates a new content service
func NewService(db *gorm.DB, cfg *config.Config, mailer *email.EmailService) *Service {
	return &Service{
		db:     db,
		config: cfg,
		mailer: mailer,
	}
}

// BlogListResponse is a page of published posts
type BlogListResponse struct {
	Posts      []BlogPost `json:"posts"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
}

// ListPosts retrieves published posts, newest first, optionally filtered
// by category or tag slug
func (s *Service) ListPosts(page int, categorySlug, tagSlug string) (*BlogListResponse, error) {
	if page < 1 {
		page = 1
	}

	query := s.db.Model(&BlogPost{}).Preload("Category").Preload("Tags").
		Where("is_published = ?", true)

	if categorySlug != "" {
		var category BlogCategory
		if err := s.db.Where("slug = ?", categorySlug).First(&category).Error; err != nil {
			return nil, fmt.Errorf("category not found")
		}
		query = query.Where("category_id = ?", category.ID)
	}
	if tagSlug != "" {
		query = query.Joins("JOIN blog_post_tags ON blog_post_tags.blog_post_id = blog_posts.id").
			Joins("JOIN blog_tags ON blog_tags.id = blog_post_tags.blog_tag_id").
			Where("blog_tags.slug = ?", tagSlug)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	var posts []BlogPost
	err := query.Order("published_at DESC").
		Offset((page - 1) * blogPageSize).Limit(blogPageSize).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve posts: %w", err)
	}

	totalPages := int((total + blogPageSize - 1) / blogPageSize)
	return &BlogListResponse{
		Posts:      posts,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// GetPost retrieves a published post by slug with its approved comments
func (s *Service) GetPost(slug string) (*BlogPost, error) {
	var post BlogPost
	err := s.db.Preload("Category").Preload("Tags").
		Preload("Comments", "is_approved = ?", true).
		Where("slug = ? AND is_published = ?", slug, true).
		First(&post).Error
	if err != nil {
		return nil, fmt.Errorf("post not found")
	}
	return &post, nil
}

// CommentRequest represents a comment submission
type CommentRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Body  string `json:"body" binding:"required"`
}

// AddComment stores a comment pending moderation
func (s *Service) AddComment(postSlug string, req *CommentRequest) (*Comment, error) {
	post, err := s.GetPost(postSlug)
	if err != nil {
		return nil, err
	}

	comment := Comment{
		BlogPostID: post.ID,
		Name:       req.Name,
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Body:       req.Body,
		IsApproved: false,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}
	return &comment, nil
}

// ApproveComment publishes a moderated comment (admin)
func (s *Service) ApproveComment(commentID uint) error {
	result := s.db.Model(&Comment{}).Where("id = ?", commentID).Update("is_approved", true)
	if result.Error != nil {
		return fmt.Errorf("failed to approve comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("comment not found")
	}
	return nil
}

// ListTestimonials retrieves active testimonials in display order
func (s *Service) ListTestimonials() ([]Testimonial, error) {
	var testimonials []Testimonial
	err := s.db.Where("is_active = ?", true).
		Order("sort_order, id").Find(&testimonials).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve testimonials: %w", err)
	}
	return testimonials, nil
}

// ListTeam retrieves active team members in display order
func (s *Service) ListTeam() ([]TeamMember, error) {
	var members []TeamMember
	err := s.db.Where("is_active = ?", true).
		Order("sort_order, id").Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve team members: %w", err)
	}
	return members, nil
}

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// SubmitContact stores the message and notifies the site owner. The
// notification is best effort; the stored row is the source of truth.
func (s *Service) SubmitContact(ctx context.Context, req *ContactRequest) (*ContactMessage, error) {
	message := ContactMessage{
		Name:    req.Name,
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}

	data := email.ContactNotificationData{
		SenderName:  message.Name,
		SenderEmail: message.Email,
		Subject:     message.Subject,
		Message:     message.Message,
	}
	if err := s.mailer.SendContactNotification(ctx, data); err != nil {
		logrus.WithError(err).WithField("contact_id", message.ID).Error("Failed to send contact notification")
	}

	return &message, nil
}

// Subscribe adds a newsletter subscriber. Re-subscribing a deactivated
// address reactivates it.
func (s *Service) Subscribe(ctx context.Context, emailAddr string) (*Subscriber, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" {
		return nil, fmt.Errorf("email is required")
	}

	var existing Subscriber
	err := s.db.Where("email = ?", emailAddr).First(&existing).Error
	if err == nil {
		if existing.IsActive {
			return nil, ErrAlreadySubscribed
		}
		if err := s.db.Model(&existing).Update("is_active", true).Error; err != nil {
			return nil, fmt.Errorf("failed to reactivate subscriber: %w", err)
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check subscriber: %w", err)
	}

	subscriber := Subscriber{Email: emailAddr, IsActive: true}
	if err := s.db.Create(&subscriber).Error; err != nil {
		return nil, fmt.Errorf("failed to create subscriber: %w", err)
	}

	if err := s.mailer.SendSubscriberWelcome(ctx, emailAddr); err != nil {
		logrus.WithError(err).Warn("Failed to send subscriber welcome email")
	}
	return &subscriber, nil
}

// Unsubscribe deactivates a subscriber
func (s *Service) Unsubscribe(emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	result := s.db.Model(&Subscriber{}).Where("email = ?", emailAddr).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subscriber not found")
	}
	return nil
}

// PostRequest represents an admin blog post payload
type PostRequest struct {
	Title           string `json:"title" binding:"required"`
	Slug            string `json:"slug" binding:"required"`
	Excerpt         string `json:"excerpt"`
	Body            string `json:"body" binding:"required"`
	MetaDescription string `json:"meta_description"`
	CoverImage      string `json:"cover_image"`
	CategoryID      *uint  `json:"category_id"`
	TagIDs          []uint `json:"tag_ids"`
	IsPublished     bool   `json:"is_published"`
}

// CreatePost creates a blog post (admin)
func (s *Service) CreatePost(authorID uint, req *PostRequest) (*BlogPost, error) {
	post := BlogPost{
		Title:           req.Title,
		Slug:            req.Slug,
		Excerpt:         req.Excerpt,
		Body:            req.Body,
		MetaDescription: req.MetaDescription,
		CoverImage:      req.CoverImage,
		CategoryID:      req.CategoryID,
		AuthorID:        authorID,
		IsPublished:     req.IsPublished,
	}
	if req.IsPublished {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		if len(req.TagIDs) > 0 {
			var tags []BlogTag
			if err := tx.Find(&tags, req.TagIDs).Error; err != nil {
				return fmt.Errorf("failed to load tags: %w", err)
			}
			if err := tx.Model(&post).Association("Tags").Replace(tags); err != nil {
				return fmt.Errorf("failed to attach tags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost updates a blog post (admin)
func (s *Service) UpdatePost(postID uint, req *PostRequest) (*BlogPost, error) {
	var post BlogPost
	if err := s.db.First(&post, postID).Error; err != nil {
		return nil, fmt.Errorf("post not found")
	}

	wasPublished := post.IsPublished
	post.Title = req.Title
	post.Slug = req.Slug
	post.Excerpt = req.Excerpt
	post.Body = req.Body
	post.MetaDescription = req.MetaDescription
	post.CoverImage = req.CoverImage
	post.CategoryID = req.CategoryID
	post.IsPublished = req.IsPublished
	if req.IsPublished && !wasPublished {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&post).Error; err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}
		var tags []BlogTag
		if len(req.TagIDs) > 0 {
			if err := tx.Find(&tags, req.TagIDs).Error; err != nil {
				return fmt.Errorf("failed to load tags: %w", err)
			}
		}
		if err := tx.Model(&post).Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("failed to update tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost soft-deletes a blog post (admin)
func (s *Service) DeletePost(postID uint) error {
	result := s.db.Delete(&BlogPost{}, postID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}
