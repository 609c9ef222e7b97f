// internal/domain/discount/service.go
package discount

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/order"
	"gorm.io/gorm"
)

// Application failure modes, surfaced to the client as JSON messages
var (
	ErrInvalidCode    = errors.New("invalid discount code")
	ErrInactive       = errors.New("discount code is no longer active")
	ErrNotStarted     = errors.New("discount code is not valid yet")
	ErrExpired        = errors.New("discount code has expired")
	ErrUsageCap       = errors.New("discount code usage limit reached")
	ErrAlreadyApplied = errors.New("a discount code is already applied to this cart")
	ErrNoCart         = errors.New("cart not found")
)

// Service handles discount code application
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new discount service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ApplyResult reports the cart totals after a successful application.
// Monetary values are two-decimal strings per the client contract.
type ApplyResult struct {
	Subtotal       string `json:"subtotal"`
	DiscountAmount string `json:"discount_amount"`
	Total          string `json:"total"`
}

// Apply validates the code against the user's cart and stores the computed
// discount amount on the order. Usage counting happens at payment
// completion, not here, so abandoned carts never consume a use.
func (s *Service) Apply(userID uint, codeText string) (*ApplyResult, error) {
	codeText = strings.TrimSpace(codeText)
	if codeText == "" {
		return nil, ErrInvalidCode
	}

	var result *ApplyResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var code DiscountCode
		if err := tx.Where("LOWER(code) = LOWER(?)", codeText).First(&code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidCode
			}
			return fmt.Errorf("failed to look up discount code: %w", err)
		}

		var cart order.Order
		err := tx.Preload("Items").
			Where("user_id = ? AND status = ?", userID, order.StatusCart).
			First(&cart).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoCart
			}
			return fmt.Errorf("failed to look up cart: %w", err)
		}

		now := time.Now().UTC()
		switch {
		case !code.IsActive:
			return ErrInactive
		case now.Before(code.ValidFrom):
			return ErrNotStarted
		case now.After(code.ValidTo):
			return ErrExpired
		case code.MaxUses != 0 && code.UsedCount >= code.MaxUses:
			return ErrUsageCap
		case cart.DiscountCodeID != nil:
			return ErrAlreadyApplied
		}

		subtotal := cart.SubtotalCost()
		discountAmount := subtotal * int64(code.DiscountPercentage) / 100

		cart.DiscountCodeID = &code.ID
		cart.DiscountAmount = discountAmount
		if err := tx.Save(&cart).Error; err != nil {
			return fmt.Errorf("failed to apply discount: %w", err)
		}

		result = &ApplyResult{
			Subtotal:       order.FormatAmount(subtotal),
			DiscountAmount: order.FormatAmount(discountAmount),
			Total:          order.FormatAmount(cart.TotalCost()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordUse atomically increments the usage counter for a code attached to
// a completing order. A store-side increment avoids lost updates when two
// payments complete concurrently.
func RecordUse(tx *gorm.DB, codeID uint) error {
	err := tx.Model(&DiscountCode{}).
		Where("id = ?", codeID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to record discount use: %w", err)
	}
	return nil
}

// CreateRequest represents an admin create payload
type CreateRequest struct {
	Code               string    `json:"code" binding:"required"`
	DiscountPercentage int       `json:"discount_percentage" binding:"required,min=1,max=100"`
	ValidFrom          time.Time `json:"valid_from" binding:"required"`
	ValidTo            time.Time `json:"valid_to" binding:"required"`
	IsActive           *bool     `json:"is_active"`
	MaxUses            int       `json:"max_uses" binding:"min=0"`
}

// Create creates a discount code (admin)
func (s *Service) Create(req *CreateRequest) (*DiscountCode, error) {
	if !req.ValidTo.After(req.ValidFrom) {
		return nil, fmt.Errorf("valid_to must be after valid_from")
	}

	code := DiscountCode{
		Code:               strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountPercentage: req.DiscountPercentage,
		ValidFrom:          req.ValidFrom,
		ValidTo:            req.ValidTo,
		IsActive:           true,
		MaxUses:            req.MaxUses,
	}
	if req.IsActive != nil {
		code.IsActive = *req.IsActive
	}

	if err := s.db.Create(&code).Error; err != nil {
		return nil, fmt.Errorf("failed to create discount code: %w", err)
	}
	return &code, nil
}

// List retrieves all discount codes (admin)
func (s *Service) List() ([]DiscountCode, error) {
	var codes []DiscountCode
	if err := s.db.Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve discount codes: %w", err)
	}
	return codes, nil
}

// Deactivate turns a code off (admin)
func (s *Service) Deactivate(id uint) error {
	result := s.db.Model(&DiscountCode{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate discount code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("discount code not found")
	}
	return nil
}
