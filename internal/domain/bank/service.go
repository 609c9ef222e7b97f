// internal/domain/bank/service.go
package bank

import (
	"errors"
	"fmt"

	"github.com/your-org/agency-backend/internal/config"
	"gorm.io/gorm"
)

// ErrNoActiveAccount is returned when no account is flagged active
var ErrNoActiveAccount = errors.New("no active bank account configured")

// Service handles bank account management
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new bank account service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ActiveAccount returns the account currently shown in transfer
// instructions. If misconfiguration left several rows active the oldest
// one wins, so checkout keeps working while an admin cleans up.
func (s *Service) ActiveAccount() (*BankAccount, error) {
	var account BankAccount
	err := s.db.Where("is_active = ?", true).Order("id").First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveAccount
		}
		return nil, fmt.Errorf("failed to retrieve active bank account: %w", err)
	}
	return &account, nil
}

// List retrieves all bank accounts (admin)
func (s *Service) List() ([]BankAccount, error) {
	var accounts []BankAccount
	if err := s.db.Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bank accounts: %w", err)
	}
	return accounts, nil
}

// CreateRequest represents an admin create payload
type CreateRequest struct {
	BankName      string `json:"bank_name" binding:"required"`
	AccountHolder string `json:"account_holder" binding:"required"`
	IBAN          string `json:"iban" binding:"required"`
	BranchCode    string `json:"branch_code"`
	Currency      string `json:"currency"`
}

// Create creates a bank account (admin). New accounts start inactive.
func (s *Service) Create(req *CreateRequest) (*BankAccount, error) {
	account := BankAccount{
		BankName:      req.BankName,
		AccountHolder: req.AccountHolder,
		IBAN:          req.IBAN,
		BranchCode:    req.BranchCode,
		Currency:      req.Currency,
	}
	if account.Currency == "" {
		account.Currency = "TRY"
	}
	if err := s.db.Create(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to create bank account: %w", err)
	}
	return &account, nil
}

// SetActive makes the given account the single active one. Deactivating
// the rest first keeps the operation compatible with the partial unique
// index on is_active.
func (s *Service) SetActive(id uint) (*BankAccount, error) {
	var account BankAccount
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, id).Error; err != nil {
			return fmt.Errorf("bank account not found")
		}
		err := tx.Model(&BankAccount{}).
			Where("is_active = ? AND id <> ?", true, id).
			Update("is_active", false).Error
		if err != nil {
			return fmt.Errorf("failed to deactivate bank accounts: %w", err)
		}
		account.IsActive = true
		if err := tx.Save(&account).Error; err != nil {
			return fmt.Errorf("failed to activate bank account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Delete soft-deletes a bank account (admin)
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&BankAccount{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete bank account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("bank account not found")
	}
	return nil
}
