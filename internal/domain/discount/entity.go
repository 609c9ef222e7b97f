// internal/domain/discount/entity.go
package discount

import (
	"time"

	"gorm.io/gorm"
)

// DiscountCode is a percentage-off promotional code with a validity window
// and an optional usage cap. UsedCount is only incremented when a payment
// completes, never when the code is applied to a cart.
type DiscountCode struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Code               string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	DiscountPercentage int            `gorm:"not null" json:"discount_percentage"` // 0-100
	ValidFrom          time.Time      `gorm:"not null" json:"valid_from"`
	ValidTo            time.Time      `gorm:"not null" json:"valid_to"`
	// No DB default; gorm would omit an explicit false on insert
	IsActive           bool           `gorm:"not null" json:"is_active"`
	MaxUses            int            `gorm:"not null;default:0" json:"max_uses"` // 0 = unlimited
	UsedCount          int            `gorm:"not null;default:0" json:"used_count"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (DiscountCode) TableName() string {
	return "discount_codes"
}

// IsValidAt reports whether the code can be applied at the given instant
func (d *DiscountCode) IsValidAt(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if now.Before(d.ValidFrom) || now.After(d.ValidTo) {
		return false
	}
	if d.MaxUses != 0 && d.UsedCount >= d.MaxUses {
		return false
	}
	return true
}

// IsValid reports whether the code can be applied right now
func (d *DiscountCode) IsValid() bool {
	return d.IsValidAt(time.Now().UTC())
}
