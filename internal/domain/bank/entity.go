// internal/domain/bank/entity.go
package bank

import (
	"time"

	"gorm.io/gorm"
)

// BankAccount holds wire-transfer details shown to customers who choose
// bank transfer at checkout. At most one account is active at a time; the
// store enforces this with a partial unique index on is_active.
type BankAccount struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	BankName      string         `gorm:"not null;size:100" json:"bank_name"`
	AccountHolder string         `gorm:"not null;size:150" json:"account_holder"`
	IBAN          string         `gorm:"not null;size:34" json:"iban"`
	BranchCode    string         `gorm:"size:20" json:"branch_code"`
	Currency      string         `gorm:"not null;size:3;default:'TRY'" json:"currency"`
	IsActive      bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (BankAccount) TableName() string {
	return "bank_accounts"
}
