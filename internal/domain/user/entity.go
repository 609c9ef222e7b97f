// internal/domain/user/entity.go
package user

import (
	"time"

	"gorm.io/gorm"
)

// User represents a customer account with its profile fields inline
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password  string         `gorm:"not null;size:255" json:"-"`
	FirstName string         `gorm:"not null;size:100" json:"first_name"`
	LastName  string         `gorm:"not null;size:100" json:"last_name"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	IsAdmin   bool           `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Profile
	Phone      string     `gorm:"size:20" json:"phone"`
	Country    string     `gorm:"size:50" json:"country"`
	City       string     `gorm:"size:50" json:"city"`
	Address    string     `gorm:"type:text" json:"address"`
	PostalCode string     `gorm:"size:10" json:"postal_code"`
	Bio        string     `gorm:"type:text" json:"bio"`
	BirthDate  *time.Time `json:"birth_date"`

	// Gateway correlation
	StripeCustomerID string `gorm:"size:255;index" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// FullName returns the user's full name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
