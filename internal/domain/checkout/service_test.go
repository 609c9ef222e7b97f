// internal/domain/checkout/service_test.go
package checkout

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/bank"
	"github.com/your-org/agency-backend/internal/domain/catalog"
	"github.com/your-org/agency-backend/internal/domain/discount"
	"github.com/your-org/agency-backend/internal/domain/order"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	return newTestServiceWithConfig(t, &config.Config{})
}

func newTestServiceWithConfig(t *testing.T, cfg *config.Config) (*Service, *gorm.DB) {
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
		&discount.DiscountCode{},
		&bank.BankAccount{},
	))

	return NewService(db, cfg, email.NewEmailService(cfg)), db
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

func validRequest(method order.PaymentMethod) *SubmitRequest {
	return &SubmitRequest{
		FullName:       "Ayşe Yılmaz",
		Email:          "ayse@example.com",
		PhoneNumber:    "+90 (532) 111-2233",
		IdentityNumber: "12345678901",
		Address:        "Bağdat Caddesi 42",
		City:           "Istanbul",
		PostalCode:     "34000",
		PaymentMethod:  method,
	}
}

func TestSubmitValidatesIdentityNumber(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []string{
		"123",          // too short
		"123456789012", // too long
		"1234567890a",  // non-digit
		"",
	}
	for _, identity := range tests {
		req := validRequest(order.MethodCash)
		req.IdentityNumber = identity
		_, err := svc.Submit(context.Background(), 1, req, "127.0.0.1")
		assert.Error(t, err, "identity %q", identity)
	}
}

func TestSubmitValidatesPhoneNumber(t *testing.T) {
	svc, _ := newTestService(t)

	req := validRequest(order.MethodCash)
	req.PhoneNumber = "call-me@now"
	_, err := svc.Submit(context.Background(), 1, req, "127.0.0.1")
	assert.Error(t, err)
}

func TestSubmitPayTRRequiresTRY(t *testing.T) {
	svc, _ := newTestService(t)

	req := validRequest(order.MethodPayTR)
	req.Currency = "USD"
	_, err := svc.Submit(context.Background(), 1, req, "127.0.0.1")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
}

func TestSubmitEmptyCart(t *testing.T) {
	svc, db := newTestService(t)

	// No cart at all
	_, err := svc.Submit(context.Background(), 1, validRequest(order.MethodCash), "127.0.0.1")
	assert.ErrorIs(t, err, ErrEmptyCart)

	// Cart exists but has no lines
	seedCart(t, db, 2)
	_, err = svc.Submit(context.Background(), 2, validRequest(order.MethodCash), "127.0.0.1")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitUnsupportedMethod(t *testing.T) {
	svc, db := newTestService(t)

	seedCart(t, db, 1, 10000)
	req := validRequest(order.PaymentMethod("bitcoin"))
	_, err := svc.Submit(context.Background(), 1, req, "127.0.0.1")
	assert.Error(t, err)
}

func TestSubmitCashStampsBillingSnapshot(t *testing.T) {
	svc, db := newTestService(t)

	cart := seedCart(t, db, 1, 10000, 5000)

	result, err := svc.Submit(context.Background(), 1, validRequest(order.MethodCash), "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Message)
	assert.Nil(t, result.Gateway)

	var ord order.Order
	require.NoError(t, db.First(&ord, cart.ID).Error)
	assert.Equal(t, order.StatusPending, ord.Status)
	assert.Equal(t, order.MethodCash, ord.PaymentMethod)
	assert.Equal(t, "Ayşe Yılmaz", ord.BillingName)
	assert.Equal(t, "ayse@example.com", ord.BillingEmail)
	assert.Equal(t, "12345678901", ord.BillingIdentityNumber)
	assert.Equal(t, "Istanbul", ord.BillingCity)
	assert.Equal(t, "TRY", ord.Currency)

	// The cart is gone; a new one will be created on the next add
	var count int64
	require.NoError(t, db.Model(&order.Order{}).
		Where("user_id = ? AND status = ?", 1, order.StatusCart).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSubmitBankTransferWithoutAccount(t *testing.T) {
	svc, db := newTestService(t)

	cart := seedCart(t, db, 1, 20000)

	// No active bank account configured; checkout still succeeds and the
	// order waits in pending.
	result, err := svc.Submit(context.Background(), 1, validRequest(order.MethodBankTransfer), "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Message)

	var ord order.Order
	require.NoError(t, db.First(&ord, cart.ID).Error)
	assert.Equal(t, order.StatusPending, ord.Status)
}

func TestSubmitGatewayFailureKeepsCart(t *testing.T) {
	// No gateway endpoint configured, so initiation cannot succeed
	svc, db := newTestService(t)

	cart := seedCart(t, db, 1, 10000)

	_, err := svc.Submit(context.Background(), 1, validRequest(order.MethodIyzico), "127.0.0.1")
	require.Error(t, err)

	var ord order.Order
	require.NoError(t, db.First(&ord, cart.ID).Error)
	assert.Equal(t, order.StatusCart, ord.Status)
	assert.NotEmpty(t, ord.ErrorMessage)

	// The cart is still checkout-able with another method
	result, err := svc.Submit(context.Background(), 1, validRequest(order.MethodCash), "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, result.Order.Status)
}

func TestSubmitGatewaySuccessMarksPending(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","token":"iframe-token"}`)
	}))
	defer gw.Close()

	cfg := &config.Config{}
	cfg.External.PayTR.MerchantID = "123456"
	cfg.External.PayTR.MerchantKey = "test-merchant-key"
	cfg.External.PayTR.MerchantSalt = "test-merchant-salt"
	cfg.External.PayTR.BaseURL = gw.URL
	svc, db := newTestServiceWithConfig(t, cfg)

	cart := seedCart(t, db, 1, 10000)

	result, err := svc.Submit(context.Background(), 1, validRequest(order.MethodPayTR), "127.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, result.Gateway)
	assert.Equal(t, "iframe-token", result.Gateway.Token)

	var ord order.Order
	require.NoError(t, db.First(&ord, cart.ID).Error)
	assert.Equal(t, order.StatusPendingPayTRApproval, ord.Status)
	assert.NotEmpty(t, ord.MerchantOID)
}

func TestSubmitNormalizesCurrency(t *testing.T) {
	svc, db := newTestService(t)

	cart := seedCart(t, db, 1, 10000)

	req := validRequest(order.MethodCash)
	req.Currency = "eur"
	_, err := svc.Submit(context.Background(), 1, req, "127.0.0.1")
	require.NoError(t, err)

	var ord order.Order
	require.NoError(t, db.First(&ord, cart.ID).Error)
	assert.Equal(t, "EUR", ord.Currency)
}
