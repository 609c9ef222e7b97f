// internal/domain/order/service.go
package order

import (
	"fmt"

	"github.com/your-org/agency-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListByUser retrieves a user's orders, newest first. The active cart is
// excluded; it is served by the cart endpoints.
func (s *Service) ListByUser(userID uint) ([]Order, error) {
	var orders []Order
	err := s.db.Preload("Items").
		Where("user_id = ? AND status <> ?", userID, StatusCart).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

// GetForUser retrieves one of the user's orders with line items
func (s *Service) GetForUser(userID, orderID uint) (*Order, error) {
	var ord Order
	err := s.db.Preload("Items").Preload("Items.PortfolioItem").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&ord).Error
	if err != nil {
		return nil, fmt.Errorf("order not found")
	}
	return &ord, nil
}

// Cancel cancels a not-yet-paid order
func (s *Service) Cancel(userID, orderID uint) (*Order, error) {
	ord, err := s.GetForUser(userID, orderID)
	if err != nil {
		return nil, err
	}
	if ord.IsTerminal() || ord.Status == StatusCart {
		return nil, fmt.Errorf("order cannot be cancelled in status %s", ord.Status)
	}
	ord.Status = StatusCancelled
	if err := s.db.Save(ord).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	return ord, nil
}

// DeleteIfEmpty removes the order when its last line item is gone. Orders
// that already left the cart state are kept for history even if emptied by
// an admin.
func DeleteIfEmpty(tx *gorm.DB, orderID uint) error {
	var count int64
	if err := tx.Model(&OrderItem{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count order items: %w", err)
	}
	if count > 0 {
		return nil
	}

	result := tx.Where("id = ? AND status = ?", orderID, StatusCart).Delete(&Order{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete empty cart: %w", result.Error)
	}
	return nil
}

// AdminList retrieves orders across all users, newest first (admin)
func (s *Service) AdminList(status Status, page, perPage int) ([]Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}

	query := s.db.Model(&Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, total, nil
}

// AdminUpdateStatus transitions an order to the given status (admin).
// Terminal orders are immutable.
func (s *Service) AdminUpdateStatus(orderID uint, status Status) (*Order, error) {
	var ord Order
	if err := s.db.Preload("Items").First(&ord, orderID).Error; err != nil {
		return nil, fmt.Errorf("order not found")
	}
	if ord.IsTerminal() {
		return nil, fmt.Errorf("order %d is already in terminal status %s", ord.ID, ord.Status)
	}
	ord.Status = status
	if err := s.db.Save(&ord).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return &ord, nil
}
