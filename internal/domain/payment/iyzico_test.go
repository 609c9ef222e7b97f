// internal/domain/payment/iyzico_test.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/order"
	"github.com/your-org/agency-backend/internal/pkg/email"
)

func iyzicoTestConfig() *config.Config {
	return &config.Config{
		External: config.ExternalConfig{
			Iyzico: config.IyzicoConfig{
				APIKey:    "test-api-key",
				SecretKey: "test-secret-key",
			},
		},
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		full  string
		first string
		last  string
	}{
		{"Ayşe Yılmaz", "Ayşe", "Yılmaz"},
		{"Mehmet Ali Öztürk", "Mehmet Ali", "Öztürk"},
		{"Cher", "Cher", "Cher"},
		{"", "", ""},
	}

	for _, tt := range tests {
		first, last := splitName(tt.full)
		assert.Equal(t, tt.first, first)
		assert.Equal(t, tt.last, last)
	}
}

func TestAuthHeader(t *testing.T) {
	db := newTestDB(t)
	cfg := iyzicoTestConfig()
	svc := NewIyzicoService(db, cfg, email.NewEmailService(cfg))

	randomKey := "1700000000000abcd1234"
	path := "/payment/iyzipos/checkoutform/initialize/auth/ecom"
	body := []byte(`{"locale":"tr"}`)

	header := svc.authHeader(randomKey, path, body)
	require.True(t, strings.HasPrefix(header, "IYZWSv2 "))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "IYZWSv2 "))
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte(cfg.External.Iyzico.SecretKey))
	mac.Write([]byte(randomKey + path + string(body)))
	expected := "apiKey:test-api-key&randomKey:" + randomKey +
		"&signature:" + hex.EncodeToString(mac.Sum(nil))
	assert.Equal(t, expected, string(decoded))
}

func TestIyzicoLocator(t *testing.T) {
	db := newTestDB(t)
	cfg := iyzicoTestConfig()
	svc := NewIyzicoService(db, cfg, email.NewEmailService(cfg))

	ord := order.Order{
		UserID:         1,
		Status:         order.StatusPendingIyzicoApproval,
		Currency:       "TRY",
		ConversationID: "ORDER-0-abcd1234",
	}
	require.NoError(t, db.Create(&ord).Error)

	t.Run("by basket id", func(t *testing.T) {
		found, err := svc.locator(strconv.FormatUint(uint64(ord.ID), 10), "")(db)
		require.NoError(t, err)
		assert.Equal(t, ord.ID, found.ID)
	})

	t.Run("falls back to conversation id", func(t *testing.T) {
		found, err := svc.locator("", "ORDER-0-abcd1234")(db)
		require.NoError(t, err)
		assert.Equal(t, ord.ID, found.ID)
	})

	t.Run("stale basket id still resolves via conversation id", func(t *testing.T) {
		found, err := svc.locator("999999", "ORDER-0-abcd1234")(db)
		require.NoError(t, err)
		assert.Equal(t, ord.ID, found.ID)
	})

	t.Run("nothing matches", func(t *testing.T) {
		_, err := svc.locator("999999", "ORDER-0-missing")(db)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("no identifiers", func(t *testing.T) {
		_, err := svc.locator("", "")(db)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func iyzicoHexSignature(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHandleCallbackVerifiesResultSignature(t *testing.T) {
	db := newTestDB(t)
	cfg := iyzicoTestConfig()

	ord := order.Order{
		UserID:         1,
		Status:         order.StatusPendingIyzicoApproval,
		Currency:       "TRY",
		PaymentMethod:  order.MethodIyzico,
		ConversationID: "ORDER-1-abcd1234",
		BillingName:    "Ayşe Yılmaz",
		BillingEmail:   "ayse@example.com",
	}
	require.NoError(t, db.Create(&ord).Error)

	// The stub gateway serves whatever signature the subtest sets
	var signature string
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status":"success","paymentStatus":"SUCCESS","paymentId":"pay-1",`+
			`"conversationId":"ORDER-1-abcd1234","basketId":"%d","currency":"TRY",`+
			`"price":100.50,"paidPrice":100.50,"token":"tok-1","signature":"%s"}`,
			ord.ID, signature)
	}))
	defer gw.Close()
	cfg.External.Iyzico.BaseURL = gw.URL
	svc := NewIyzicoService(db, cfg, email.NewEmailService(cfg))

	assertUntouched := func(t *testing.T) {
		var reloaded order.Order
		require.NoError(t, db.First(&reloaded, ord.ID).Error)
		assert.Equal(t, order.StatusPendingIyzicoApproval, reloaded.Status)
		assert.Nil(t, reloaded.PaymentDate)
	}

	t.Run("missing signature rejected", func(t *testing.T) {
		signature = ""
		_, err := svc.HandleCallback(context.Background(), "tok-1")
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assertUntouched(t)
	})

	t.Run("forged signature rejected", func(t *testing.T) {
		signature = iyzicoHexSignature("not-the-secret-key",
			fmt.Sprintf("SUCCESS:pay-1:TRY:%d:ORDER-1-abcd1234:100.50:100.50:tok-1", ord.ID))
		_, err := svc.HandleCallback(context.Background(), "tok-1")
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assertUntouched(t)
	})

	t.Run("valid signature completes the order", func(t *testing.T) {
		signature = iyzicoHexSignature(cfg.External.Iyzico.SecretKey,
			fmt.Sprintf("SUCCESS:pay-1:TRY:%d:ORDER-1-abcd1234:100.50:100.50:tok-1", ord.ID))
		result, err := svc.HandleCallback(context.Background(), "tok-1")
		require.NoError(t, err)
		assert.Equal(t, order.StatusCompleted, result.Status)
		assert.Equal(t, "pay-1", result.IyzicoPaymentID)
	})
}

func TestHandleCallbackFailedRetrieve(t *testing.T) {
	db := newTestDB(t)
	cfg := iyzicoTestConfig()

	ord := order.Order{
		UserID:         1,
		Status:         order.StatusPendingIyzicoApproval,
		Currency:       "TRY",
		ConversationID: "ORDER-2-ffff0000",
	}
	require.NoError(t, db.Create(&ord).Error)

	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"failure","errorMessage":"token not found"}`)
	}))
	defer gw.Close()
	cfg.External.Iyzico.BaseURL = gw.URL
	svc := NewIyzicoService(db, cfg, email.NewEmailService(cfg))

	// A failed token exchange is not a payment outcome; the order waits
	_, err := svc.HandleCallback(context.Background(), "stale-token")
	require.Error(t, err)

	var reloaded order.Order
	require.NoError(t, db.First(&reloaded, ord.ID).Error)
	assert.Equal(t, order.StatusPendingIyzicoApproval, reloaded.Status)
}
