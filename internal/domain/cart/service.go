// internal/domain/cart/service.go
package cart

import (
	"errors"
	"fmt"

	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/catalog"
	"github.com/your-org/agency-backend/internal/domain/order"
	"gorm.io/gorm"
)

// ErrItemNotInCart is returned when removing a line the cart doesn't have
var ErrItemNotInCart = errors.New("item not in cart")

// Service handles cart operations. The cart is the user's single
// `cart`-status order; there is no separate cart table.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Detail represents the cart with computed totals. Monetary strings use
// two decimals for template/JSON consumption.
type Detail struct {
	Order          *order.Order `json:"order"`
	ItemCount      int          `json:"item_count"`
	Subtotal       string       `json:"subtotal"`
	DiscountAmount string       `json:"discount_amount"`
	Total          string       `json:"total"`
}

// GetOrCreate returns the user's cart, creating one on first use. The
// partial unique index on (user_id) WHERE status='cart' makes concurrent
// first calls converge on a single row.
func (s *Service) GetOrCreate(tx *gorm.DB, userID uint) (*order.Order, error) {
	var cart order.Order
	err := tx.Preload("Items").
		Where("user_id = ? AND status = ?", userID, order.StatusCart).
		First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	cart = order.Order{
		UserID:   userID,
		Status:   order.StatusCart,
		Currency: "TRY",
	}
	if err := tx.Create(&cart).Error; err != nil {
		// Lost the race against another request; pick up its row.
		var existing order.Order
		lookupErr := tx.Preload("Items").
			Where("user_id = ? AND status = ?", userID, order.StatusCart).
			First(&existing).Error
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return &existing, nil
	}
	return &cart, nil
}

// AddItem adds a portfolio item to the cart. An existing line has its
// quantity incremented; a new line snapshots the current title and price.
func (s *Service) AddItem(userID, portfolioItemID uint) (*Detail, error) {
	var cartID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item catalog.PortfolioItem
		if err := tx.First(&item, portfolioItemID).Error; err != nil {
			return fmt.Errorf("portfolio item not found")
		}

		cart, err := s.GetOrCreate(tx, userID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		var line order.OrderItem
		err = tx.Where("order_id = ? AND portfolio_item_id = ?", cart.ID, item.ID).
			First(&line).Error
		if err == nil {
			line.Quantity++
			if err := tx.Save(&line).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up cart item: %w", err)
		}

		line = order.OrderItem{
			OrderID:         cart.ID,
			PortfolioItemID: item.ID,
			Title:           item.Title,
			Price:           item.Price,
			Quantity:        1,
		}
		if err := tx.Create(&line).Error; err != nil {
			return fmt.Errorf("failed to add cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.detailByID(cartID)
}

// DecrementItem lowers a line's quantity by one, removing the line at
// zero. An emptied cart order is deleted.
func (s *Service) DecrementItem(userID, portfolioItemID uint) (*Detail, error) {
	return s.removeItem(userID, portfolioItemID, false)
}

// RemoveItem drops a line entirely regardless of quantity. An emptied
// cart order is deleted.
func (s *Service) RemoveItem(userID, portfolioItemID uint) (*Detail, error) {
	return s.removeItem(userID, portfolioItemID, true)
}

func (s *Service) removeItem(userID, portfolioItemID uint, wholeLine bool) (*Detail, error) {
	var cartID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cart order.Order
		err := tx.Where("user_id = ? AND status = ?", userID, order.StatusCart).
			First(&cart).Error
		if err != nil {
			return ErrItemNotInCart
		}
		cartID = cart.ID

		var line order.OrderItem
		err = tx.Where("order_id = ? AND portfolio_item_id = ?", cart.ID, portfolioItemID).
			First(&line).Error
		if err != nil {
			return ErrItemNotInCart
		}

		if !wholeLine && line.Quantity > 1 {
			line.Quantity--
			if err := tx.Save(&line).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
			return nil
		}

		if err := tx.Delete(&line).Error; err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}
		return order.DeleteIfEmpty(tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.detailByID(cartID)
}

// Get returns the user's cart detail; an empty Detail if no cart exists
func (s *Service) Get(userID uint) (*Detail, error) {
	var cart order.Order
	err := s.db.Preload("Items").Preload("Items.PortfolioItem").
		Where("user_id = ? AND status = ?", userID, order.StatusCart).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyDetail(), nil
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return buildDetail(&cart), nil
}

func (s *Service) detailByID(cartID uint) (*Detail, error) {
	var cart order.Order
	err := s.db.Preload("Items").Preload("Items.PortfolioItem").
		First(&cart, cartID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Cart was deleted because its last item was removed.
			return emptyDetail(), nil
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return buildDetail(&cart), nil
}

func buildDetail(cart *order.Order) *Detail {
	count := 0
	for i := range cart.Items {
		count += cart.Items[i].Quantity
	}
	return &Detail{
		Order:          cart,
		ItemCount:      count,
		Subtotal:       order.FormatAmount(cart.SubtotalCost()),
		DiscountAmount: order.FormatAmount(cart.DiscountAmount),
		Total:          order.FormatAmount(cart.TotalCost()),
	}
}

func emptyDetail() *Detail {
	return &Detail{
		ItemCount:      0,
		Subtotal:       order.FormatAmount(0),
		DiscountAmount: order.FormatAmount(0),
		Total:          order.FormatAmount(0),
	}
}
