// internal/domain/order/service_test.go
package order

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/catalog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&catalog.PortfolioCategory{},
		&catalog.PortfolioItem{},
		&catalog.PortfolioImage{},
		&Order{},
		&OrderItem{},
	))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, userID uint, status Status, prices ...int64) *Order {
	t.Helper()
	ord := Order{UserID: userID, Status: status, Currency: "TRY"}
	require.NoError(t, db.Create(&ord).Error)
	for i, price := range prices {
		line := OrderItem{
			OrderID: ord.ID, PortfolioItemID: uint(i + 1),
			Title: "Project", Price: price, Quantity: 1,
		}
		require.NoError(t, db.Create(&line).Error)
	}
	return &ord
}

func TestListByUserExcludesCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	seedOrder(t, db, 1, StatusCart, 1000)
	seedOrder(t, db, 1, StatusCompleted, 2000)
	seedOrder(t, db, 1, StatusPending, 3000)
	seedOrder(t, db, 2, StatusCompleted, 4000)

	orders, err := svc.ListByUser(1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, ord := range orders {
		assert.NotEqual(t, StatusCart, ord.Status)
		assert.Equal(t, uint(1), ord.UserID)
	}
}

func TestGetForUserScoped(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	ord := seedOrder(t, db, 1, StatusCompleted, 1000)

	found, err := svc.GetForUser(1, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, ord.ID, found.ID)

	// Another user's order is invisible
	_, err = svc.GetForUser(2, ord.ID)
	assert.Error(t, err)
}

func TestCancel(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	pending := seedOrder(t, db, 1, StatusPending, 1000)
	cancelled, err := svc.Cancel(1, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	// Terminal and cart orders cannot be cancelled
	completed := seedOrder(t, db, 1, StatusCompleted, 1000)
	_, err = svc.Cancel(1, completed.ID)
	assert.Error(t, err)

	cart := seedOrder(t, db, 1, StatusCart, 1000)
	_, err = svc.Cancel(1, cart.ID)
	assert.Error(t, err)
}

func TestDeleteIfEmpty(t *testing.T) {
	db := newTestDB(t)

	t.Run("keeps cart with items", func(t *testing.T) {
		cart := seedOrder(t, db, 1, StatusCart, 1000)
		require.NoError(t, DeleteIfEmpty(db, cart.ID))

		var count int64
		require.NoError(t, db.Model(&Order{}).Where("id = ?", cart.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("deletes empty cart", func(t *testing.T) {
		cart := seedOrder(t, db, 2, StatusCart)
		require.NoError(t, DeleteIfEmpty(db, cart.ID))

		var count int64
		require.NoError(t, db.Model(&Order{}).Where("id = ?", cart.ID).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("keeps empty non-cart orders for history", func(t *testing.T) {
		ord := seedOrder(t, db, 3, StatusCompleted)
		require.NoError(t, DeleteIfEmpty(db, ord.ID))

		var count int64
		require.NoError(t, db.Model(&Order{}).Where("id = ?", ord.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestAdminList(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	seedOrder(t, db, 1, StatusCompleted, 1000)
	seedOrder(t, db, 2, StatusPending, 2000)
	seedOrder(t, db, 3, StatusCompleted, 3000)

	all, total, err := svc.AdminList("", 1, 25)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	completed, total, err := svc.AdminList(StatusCompleted, 1, 25)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, completed, 2)
}

func TestAdminUpdateStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	// Bank transfer confirmation is the main use
	ord := seedOrder(t, db, 1, StatusPending, 1000)
	updated, err := svc.AdminUpdateStatus(ord.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)

	// Terminal orders are immutable
	_, err = svc.AdminUpdateStatus(ord.ID, StatusPending)
	assert.Error(t, err)
}
