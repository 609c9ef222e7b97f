// internal/interfaces/http/handlers/callback_test.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/bank"
	"github.com/your-org/agency-backend/internal/domain/catalog"
	"github.com/your-org/agency-backend/internal/domain/checkout"
	"github.com/your-org/agency-backend/internal/domain/discount"
	"github.com/your-org/agency-backend/internal/domain/order"
	"github.com/your-org/agency-backend/internal/domain/payment"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newCallbackRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	handler := NewCallbackHandler(checkout.NewService(db, cfg, email.NewEmailService(cfg)))

	router := gin.New()
	router.POST("/callbacks/iyzico", handler.Iyzico)
	router.GET("/callbacks/iyzico", handler.Iyzico)
	router.POST("/callbacks/paytr", handler.PayTR)
	router.POST("/callbacks/stripe", handler.Stripe)
	return router, db
}

func postPayTRCallback(router *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/callbacks/paytr", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPayTRCallbackAcknowledgesUnknownOrder(t *testing.T) {
	cfg := &config.Config{}
	cfg.External.PayTR.MerchantKey = "test-merchant-key"
	cfg.External.PayTR.MerchantSalt = "test-merchant-salt"
	router, _ := newCallbackRouter(t, cfg)

	// PayTR redelivers on any body but "OK", so a notification we can
	// never match still gets acknowledged
	form := url.Values{}
	form.Set("merchant_oid", "AG999unknown")
	form.Set("status", "success")
	form.Set("total_amount", "10000")
	form.Set("hash", payment.CallbackHash(cfg.External.PayTR, "AG999unknown", "success", "10000"))

	w := postPayTRCallback(router, form)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestPayTRCallbackRejectsBadHash(t *testing.T) {
	cfg := &config.Config{}
	cfg.External.PayTR.MerchantKey = "test-merchant-key"
	cfg.External.PayTR.MerchantSalt = "test-merchant-salt"
	router, db := newCallbackRouter(t, cfg)

	ord := order.Order{
		UserID:      1,
		Status:      order.StatusPendingPayTRApproval,
		Currency:    "TRY",
		MerchantOID: "AG1deadbeef",
	}
	require.NoError(t, db.Create(&ord).Error)

	form := url.Values{}
	form.Set("merchant_oid", ord.MerchantOID)
	form.Set("status", "success")
	form.Set("total_amount", "10000")
	form.Set("hash", "bm90LXRoZS1yaWdodC1oYXNo")

	w := postPayTRCallback(router, form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEqual(t, "OK", w.Body.String())

	var reloaded order.Order
	require.NoError(t, db.First(&reloaded, ord.ID).Error)
	assert.Equal(t, order.StatusPendingPayTRApproval, reloaded.Status)
}

func TestIyzicoCallbackReadsQueryToken(t *testing.T) {
	var gotToken string
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotToken = body.Token
		fmt.Fprint(w, `{"status":"failure","errorMessage":"token not found"}`)
	}))
	defer gw.Close()

	cfg := &config.Config{}
	cfg.External.Iyzico.APIKey = "test-api-key"
	cfg.External.Iyzico.SecretKey = "test-secret-key"
	cfg.External.Iyzico.BaseURL = gw.URL
	router, _ := newCallbackRouter(t, cfg)

	// Some return paths redirect the customer with the token in the query
	req := httptest.NewRequest(http.MethodGet, "/callbacks/iyzico?token=tok-9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "tok-9", gotToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
