// internal/domain/catalog/service.go
package catalog

import (
	"fmt"

	"github.com/your-org/agency-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles portfolio catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListRequest represents catalog listing filters
type ListRequest struct {
	CategorySlug string
	Page         int
	PerPage      int
}

// ListResponse represents a paginated catalog listing
type ListResponse struct {
	Items      []PortfolioItem `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
}

// List retrieves portfolio items, newest project first
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 12
	}

	query := s.db.Model(&PortfolioItem{}).Preload("Category")

	if req.CategorySlug != "" {
		var category PortfolioCategory
		if err := s.db.Where("slug = ?", req.CategorySlug).First(&category).Error; err != nil {
			return nil, fmt.Errorf("category not found")
		}
		query = query.Where("category_id = ?", category.ID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count portfolio items: %w", err)
	}

	var items []PortfolioItem
	offset := (req.Page - 1) * req.PerPage
	err := query.Order("project_date DESC NULLS LAST, id DESC").
		Offset(offset).Limit(req.PerPage).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve portfolio items: %w", err)
	}

	totalPages := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))

	return &ListResponse{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PerPage:    req.PerPage,
		TotalPages: totalPages,
	}, nil
}

// Get retrieves a single portfolio item with its category and images
func (s *Service) Get(id uint) (*PortfolioItem, error) {
	var item PortfolioItem
	err := s.db.Preload("Category").Preload("Images").Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, fmt.Errorf("portfolio item not found")
	}
	return &item, nil
}

// GetBySlug retrieves a single portfolio item by slug
func (s *Service) GetBySlug(slug string) (*PortfolioItem, error) {
	var item PortfolioItem
	err := s.db.Preload("Category").Preload("Images").Where("slug = ?", slug).First(&item).Error
	if err != nil {
		return nil, fmt.Errorf("portfolio item not found")
	}
	return &item, nil
}

// ListCategories retrieves all portfolio categories
func (s *Service) ListCategories() ([]PortfolioCategory, error) {
	var categories []PortfolioCategory
	if err := s.db.Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateItemRequest represents an admin create/update payload
type CreateItemRequest struct {
	Title            string `json:"title" binding:"required"`
	Slug             string `json:"slug" binding:"required"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
	Client           string `json:"client"`
	MetaDescription  string `json:"meta_description"`
	CategoryID       *uint  `json:"category_id"`
	ProjectURL       string `json:"project_url"`
	MainImage        string `json:"main_image"`
	Price            int64  `json:"price" binding:"min=0"`
}

// Create creates a portfolio item (admin)
func (s *Service) Create(req *CreateItemRequest) (*PortfolioItem, error) {
	item := PortfolioItem{
		Title:            req.Title,
		Slug:             req.Slug,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Client:           req.Client,
		MetaDescription:  req.MetaDescription,
		CategoryID:       req.CategoryID,
		ProjectURL:       req.ProjectURL,
		MainImage:        req.MainImage,
		Price:            req.Price,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create portfolio item: %w", err)
	}
	return &item, nil
}

// Update updates a portfolio item (admin). Existing order items keep their
// price snapshot regardless of catalog price changes.
func (s *Service) Update(id uint, req *CreateItemRequest) (*PortfolioItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.Title = req.Title
	item.Slug = req.Slug
	item.ShortDescription = req.ShortDescription
	item.LongDescription = req.LongDescription
	item.Client = req.Client
	item.MetaDescription = req.MetaDescription
	item.CategoryID = req.CategoryID
	item.ProjectURL = req.ProjectURL
	item.MainImage = req.MainImage
	item.Price = req.Price

	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("failed to update portfolio item: %w", err)
	}
	return item, nil
}

// Delete soft-deletes a portfolio item (admin)
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&PortfolioItem{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete portfolio item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("portfolio item not found")
	}
	return nil
}
