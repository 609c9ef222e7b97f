// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"gorm.io/gorm"
)

// PortfolioCategory groups portfolio items
type PortfolioCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null;size:120" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PortfolioItem is a purchasable project from the agency's portfolio
type PortfolioItem struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Title            string         `gorm:"not null;size:255" json:"title"`
	Slug             string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	ShortDescription string         `gorm:"size:255" json:"short_description"`
	LongDescription  string         `gorm:"type:text" json:"long_description"`
	Client           string         `gorm:"size:200" json:"client"`
	MetaDescription  string         `gorm:"size:160" json:"meta_description"`
	CategoryID       *uint          `gorm:"index" json:"category_id"`
	ProjectDate      *time.Time     `json:"project_date"`
	ProjectURL       string         `gorm:"size:500" json:"project_url"`
	MainImage        string         `gorm:"size:500" json:"main_image"`
	Price            int64          `gorm:"not null;default:0" json:"price"` // In minor units
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Category *PortfolioCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Images   []PortfolioImage   `gorm:"foreignKey:PortfolioItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
}

// PortfolioImage is an additional image attached to a portfolio item
type PortfolioImage struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	PortfolioItemID uint   `gorm:"not null;index" json:"portfolio_item_id"`
	Image           string `gorm:"not null;size:500" json:"image"`
}

// TableName overrides
func (PortfolioCategory) TableName() string { return "portfolio_categories" }
func (PortfolioItem) TableName() string     { return "portfolio_items" }
func (PortfolioImage) TableName() string    { return "portfolio_images" }

// CategoryName returns the category name or a fallback used in gateway
// basket payloads
func (p *PortfolioItem) CategoryName() string {
	if p.Category != nil {
		return p.Category.Name
	}
	return "General"
}
