// internal/domain/discount/service_test.go
package discount

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/catalog"
	"github.com/your-org/agency-backend/internal/domain/order"
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
		&order.Order{},
		&order.OrderItem{},
		&DiscountCode{},
	))
	return db
}

func seedCart(t *testing.T, db *gorm.DB, userID uint, prices ...int64) *order.Order {
	t.Helper()
	cart := order.Order{UserID: userID, Status: order.StatusCart, Currency: "TRY"}
	require.NoError(t, db.Create(&cart).Error)
	for i, price := range prices {
		line := order.OrderItem{
			OrderID:         cart.ID,
			PortfolioItemID: uint(i + 1),
			Title:           "Project",
			Price:           price,
			Quantity:        1,
		}
		require.NoError(t, db.Create(&line).Error)
	}
	return &cart
}

func seedCode(t *testing.T, db *gorm.DB, code DiscountCode) *DiscountCode {
	t.Helper()
	require.NoError(t, db.Create(&code).Error)
	return &code
}

func activeCode(text string, percentage int) DiscountCode {
	now := time.Now().UTC()
	return DiscountCode{
		Code:               text,
		DiscountPercentage: percentage,
		ValidFrom:          now.AddDate(0, 0, -1),
		ValidTo:            now.AddDate(0, 0, 30),
		IsActive:           true,
	}
}

func TestApply(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	seedCart(t, db, 1, 10000)
	seedCode(t, db, activeCode("SUMMER10", 10))

	result, err := svc.Apply(1, "SUMMER10")
	require.NoError(t, err)
	assert.Equal(t, "100.00", result.Subtotal)
	assert.Equal(t, "10.00", result.DiscountAmount)
	assert.Equal(t, "90.00", result.Total)

	var cart order.Order
	require.NoError(t, db.Where("user_id = ? AND status = ?", 1, order.StatusCart).First(&cart).Error)
	require.NotNil(t, cart.DiscountCodeID)
	assert.Equal(t, int64(1000), cart.DiscountAmount)

	// Applying never consumes a use; that happens at payment completion.
	var code DiscountCode
	require.NoError(t, db.Where("code = ?", "SUMMER10").First(&code).Error)
	assert.Equal(t, 0, code.UsedCount)
}

func TestApplyCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	seedCart(t, db, 1, 5000)
	seedCode(t, db, activeCode("WELCOME10", 10))

	result, err := svc.Apply(1, "welcome10")
	require.NoError(t, err)
	assert.Equal(t, "5.00", result.DiscountAmount)
}

func TestApplySecondCodeRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	seedCart(t, db, 1, 10000)
	seedCode(t, db, activeCode("FIRST10", 10))
	seedCode(t, db, activeCode("SECOND20", 20))

	_, err := svc.Apply(1, "FIRST10")
	require.NoError(t, err)

	_, err = svc.Apply(1, "SECOND20")
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	var cart order.Order
	require.NoError(t, db.Where("user_id = ?", 1).First(&cart).Error)
	assert.Equal(t, int64(1000), cart.DiscountAmount)
}

func TestApplyRejections(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		code     *DiscountCode
		codeText string
		expected error
	}{
		{
			name:     "unknown code",
			codeText: "NOPE",
			expected: ErrInvalidCode,
		},
		{
			name:     "blank code",
			codeText: "   ",
			expected: ErrInvalidCode,
		},
		{
			name: "inactive",
			code: &DiscountCode{
				Code: "OFF", DiscountPercentage: 10,
				ValidFrom: now.AddDate(0, 0, -1), ValidTo: now.AddDate(0, 0, 1),
				IsActive: false,
			},
			codeText: "OFF",
			expected: ErrInactive,
		},
		{
			name: "not started",
			code: &DiscountCode{
				Code: "SOON", DiscountPercentage: 10,
				ValidFrom: now.AddDate(0, 0, 1), ValidTo: now.AddDate(0, 0, 7),
				IsActive: true,
			},
			codeText: "SOON",
			expected: ErrNotStarted,
		},
		{
			name: "expired",
			code: &DiscountCode{
				Code: "OLD", DiscountPercentage: 10,
				ValidFrom: now.AddDate(0, 0, -7), ValidTo: now.AddDate(0, 0, -1),
				IsActive: true,
			},
			codeText: "OLD",
			expected: ErrExpired,
		},
		{
			name: "usage cap reached",
			code: &DiscountCode{
				Code: "CAPPED", DiscountPercentage: 10,
				ValidFrom: now.AddDate(0, 0, -1), ValidTo: now.AddDate(0, 0, 7),
				IsActive: true, MaxUses: 3, UsedCount: 3,
			},
			codeText: "CAPPED",
			expected: ErrUsageCap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			svc := NewService(db, &config.Config{})

			seedCart(t, db, 1, 10000)
			if tt.code != nil {
				seedCode(t, db, *tt.code)
			}

			_, err := svc.Apply(1, tt.codeText)
			assert.ErrorIs(t, err, tt.expected)

			var cart order.Order
			require.NoError(t, db.Where("user_id = ?", 1).First(&cart).Error)
			assert.Nil(t, cart.DiscountCodeID)
			assert.Equal(t, int64(0), cart.DiscountAmount)
		})
	}
}

func TestApplyWithoutCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	seedCode(t, db, activeCode("SUMMER10", 10))

	_, err := svc.Apply(1, "SUMMER10")
	assert.ErrorIs(t, err, ErrNoCart)
}

func TestRecordUse(t *testing.T) {
	db := newTestDB(t)

	code := seedCode(t, db, activeCode("TRACKED", 10))

	require.NoError(t, RecordUse(db, code.ID))
	require.NoError(t, RecordUse(db, code.ID))

	var reloaded DiscountCode
	require.NoError(t, db.First(&reloaded, code.ID).Error)
	assert.Equal(t, 2, reloaded.UsedCount)
}

func TestCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	now := time.Now().UTC()
	_, err := svc.Create(&CreateRequest{
		Code:               "BAD",
		DiscountPercentage: 10,
		ValidFrom:          now,
		ValidTo:            now.AddDate(0, 0, -1),
	})
	assert.Error(t, err)

	code, err := svc.Create(&CreateRequest{
		Code:               "  fall20  ",
		DiscountPercentage: 20,
		ValidFrom:          now,
		ValidTo:            now.AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, "FALL20", code.Code)
	assert.True(t, code.IsActive)
}

func TestCreateInactivePersists(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &config.Config{})

	inactive := false
	now := time.Now().UTC()
	code, err := svc.Create(&CreateRequest{
		Code:               "PAUSED20",
		DiscountPercentage: 20,
		ValidFrom:          now,
		ValidTo:            now.AddDate(0, 0, 30),
		IsActive:           &inactive,
	})
	require.NoError(t, err)
	assert.False(t, code.IsActive)

	// The stored row carries the explicit false, not a column default
	var reloaded DiscountCode
	require.NoError(t, db.First(&reloaded, code.ID).Error)
	assert.False(t, reloaded.IsActive)
}
