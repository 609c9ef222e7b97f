// internal/domain/content/entity.go
package content

import (
	"time"

	"gorm.io/gorm"
)

// BlogCategory groups blog posts
type BlogCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null;size:120" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlogTag labels blog posts
type BlogTag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;size:50" json:"name"`
	Slug string `gorm:"uniqueIndex;not null;size:60" json:"slug"`
}

// BlogPost is an article. Only published posts are served publicly;
// drafts are visible through the admin surface.
type BlogPost struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"not null;size:255" json:"title"`
	Slug            string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Excerpt         string         `gorm:"size:500" json:"excerpt"`
	Body            string         `gorm:"type:text" json:"body"`
	MetaDescription string         `gorm:"size:160" json:"meta_description"`
	CoverImage      string         `gorm:"size:500" json:"cover_image"`
	CategoryID      *uint          `gorm:"index" json:"category_id"`
	AuthorID        uint           `gorm:"index" json:"author_id"`
	IsPublished     bool           `gorm:"not null;default:false;index" json:"is_published"`
	PublishedAt     *time.Time     `json:"published_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Category *BlogCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags     []BlogTag     `gorm:"many2many:blog_post_tags;" json:"tags,omitempty"`
	Comments []Comment     `gorm:"foreignKey:BlogPostID" json:"comments,omitempty"`
}

// Comment is a reader comment. Comments stay hidden until moderated.
type Comment struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	BlogPostID uint           `gorm:"not null;index" json:"blog_post_id"`
	Name       string         `gorm:"not null;size:100" json:"name"`
	Email      string         `gorm:"not null;size:255" json:"-"`
	Body       string         `gorm:"type:text;not null" json:"body"`
	IsApproved bool           `gorm:"not null;default:false;index" json:"is_approved"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Testimonial is a client quote shown on the site
type Testimonial struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Author    string         `gorm:"not null;size:100" json:"author"`
	Company   string         `gorm:"size:150" json:"company"`
	Quote     string         `gorm:"type:text;not null" json:"quote"`
	Avatar    string         `gorm:"size:500" json:"avatar"`
	SortOrder int            `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TeamMember is a staff profile shown on the about page
type TeamMember struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:100" json:"name"`
	Role      string         `gorm:"not null;size:100" json:"role"`
	Bio       string         `gorm:"type:text" json:"bio"`
	Photo     string         `gorm:"size:500" json:"photo"`
	LinkedIn  string         `gorm:"size:255" json:"linkedin"`
	SortOrder int            `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ContactMessage is a stored contact form submission
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	Email     string    `gorm:"not null;size:255" json:"email"`
	Subject   string    `gorm:"size:200" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscriber is a newsletter signup
type Subscriber struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (BlogCategory) TableName() string   { return "blog_categories" }
func (BlogTag) TableName() string        { return "blog_tags" }
func (BlogPost) TableName() string       { return "blog_posts" }
func (Comment) TableName() string        { return "blog_comments" }
func (Testimonial) TableName() string    { return "testimonials" }
func (TeamMember) TableName() string     { return "team_members" }
func (ContactMessage) TableName() string { return "contact_messages" }
func (Subscriber) TableName() string     { return "subscribers" }
