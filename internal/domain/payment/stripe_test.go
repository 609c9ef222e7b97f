// internal/domain/payment/stripe_test.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/order"
	"github.com/your-org/agency-backend/internal/domain/user"
	"github.com/your-org/agency-backend/internal/pkg/email"
)

const testWebhookSecret = "whsec_test_secret"

func stripeTestConfig() *config.Config {
	return &config.Config{
		External: config.ExternalConfig{
			Stripe: config.StripeConfig{
				SecretKey:     "sk_test_123",
				WebhookSecret: testWebhookSecret,
				MinimumCharge: 1500,
			},
		},
	}
}

func signStripeHeader(secret string, ts time.Time, payload []byte) string {
	timestamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Now()

	t.Run("valid", func(t *testing.T) {
		header := signStripeHeader(testWebhookSecret, now, payload)
		assert.NoError(t, VerifyWebhookSignature(payload, header, testWebhookSecret, now))
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := signStripeHeader("whsec_other", now, payload)
		err := VerifyWebhookSignature(payload, header, testWebhookSecret, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("tampered payload", func(t *testing.T) {
		header := signStripeHeader(testWebhookSecret, now, payload)
		err := VerifyWebhookSignature([]byte(`{"id":"evt_2"}`), header, testWebhookSecret, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		header := signStripeHeader(testWebhookSecret, now.Add(-10*time.Minute), payload)
		err := VerifyWebhookSignature(payload, header, testWebhookSecret, now)
		assert.ErrorIs(t, err, ErrStaleWebhook)
	})

	t.Run("future timestamp", func(t *testing.T) {
		header := signStripeHeader(testWebhookSecret, now.Add(10*time.Minute), payload)
		err := VerifyWebhookSignature(payload, header, testWebhookSecret, now)
		assert.ErrorIs(t, err, ErrStaleWebhook)
	})

	t.Run("within tolerance", func(t *testing.T) {
		header := signStripeHeader(testWebhookSecret, now.Add(-4*time.Minute), payload)
		assert.NoError(t, VerifyWebhookSignature(payload, header, testWebhookSecret, now))
	})

	t.Run("malformed header", func(t *testing.T) {
		err := VerifyWebhookSignature(payload, "not-a-header", testWebhookSecret, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("extra candidate signatures", func(t *testing.T) {
		header := signStripeHeader(testWebhookSecret, now, payload) + ",v1=deadbeef"
		assert.NoError(t, VerifyWebhookSignature(payload, header, testWebhookSecret, now))
	})
}

func TestInitiateBelowMinimumCharge(t *testing.T) {
	db := newTestDB(t)
	cfg := stripeTestConfig()
	svc := NewStripeService(db, cfg, email.NewEmailService(cfg))

	ord := order.Order{
		UserID: 1, Status: order.StatusPendingStripeApproval, Currency: "TRY",
		Items: []order.OrderItem{{PortfolioItemID: 1, Title: "Sticker", Price: 100, Quantity: 1}},
	}
	require.NoError(t, db.Create(&ord).Error)

	_, err := svc.Initiate(context.Background(), &ord, "127.0.0.1")
	assert.ErrorIs(t, err, ErrBelowMinimumCharge)
}

func TestHandleWebhookIgnoresOtherEventTypes(t *testing.T) {
	db := newTestDB(t)
	cfg := stripeTestConfig()
	svc := NewStripeService(db, cfg, email.NewEmailService(cfg))

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{}}}`)
	header := signStripeHeader(testWebhookSecret, time.Now(), payload)

	ord, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Nil(t, ord)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	cfg := stripeTestConfig()
	svc := NewStripeService(db, cfg, email.NewEmailService(cfg))

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)
	header := signStripeHeader("whsec_wrong", time.Now(), payload)

	_, err := svc.HandleWebhook(context.Background(), payload, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleWebhookCompletesOrder(t *testing.T) {
	db := newTestDB(t)
	cfg := stripeTestConfig()
	svc := NewStripeService(db, cfg, email.NewEmailService(cfg))

	buyer := user.User{
		Email: "ayse@example.com", Password: "x",
		FirstName: "Ayşe", LastName: "Yılmaz",
	}
	require.NoError(t, db.Create(&buyer).Error)

	ord := order.Order{
		UserID:          buyer.ID,
		Status:          order.StatusPendingStripeApproval,
		Currency:        "TRY",
		PaymentMethod:   order.MethodStripe,
		StripeSessionID: "cs_test_1",
		BillingName:     "Ayşe Yılmaz",
		BillingEmail:    "ayse@example.com",
	}
	require.NoError(t, db.Create(&ord).Error)
	line := order.OrderItem{
		OrderID: ord.ID, PortfolioItemID: 1,
		Title: "Corporate Site", Price: 250000, Quantity: 1,
	}
	require.NoError(t, db.Create(&line).Error)

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","client_reference_id":"%d","customer":"cus_9","payment_intent":"pi_1","payment_status":"paid"}}}`,
		ord.ID))
	header := signStripeHeader(testWebhookSecret, time.Now(), payload)

	result, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, result.Status)
	assert.Equal(t, "pi_1", result.PaymentRef)
	assert.Equal(t, "paid", result.PaymentStatus)
	assert.NotNil(t, result.PaymentDate)

	var reloadedUser user.User
	require.NoError(t, db.First(&reloadedUser, buyer.ID).Error)
	assert.Equal(t, "cus_9", reloadedUser.StripeCustomerID)

	// Stripe redelivers webhooks; a replay must be a no-op
	result, err = svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, result.Status)
}
