// internal/domain/payment/stripe.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/order"
	"github.com/your-org/agency-backend/internal/domain/user"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// ErrStaleWebhook is returned when a webhook timestamp falls outside the
// tolerance window. Handlers answer 400 and mutate nothing.
var ErrStaleWebhook = errors.New("stripe webhook timestamp outside tolerance")

// ErrBelowMinimumCharge is returned when the order total is under the
// gateway's smallest chargeable amount.
var ErrBelowMinimumCharge = errors.New("order total below stripe minimum charge")

const webhookTolerance = 5 * time.Minute

// StripeService drives Stripe Checkout: a session is created server-side
// and the customer is redirected to Stripe's hosted page. Completion
// arrives on the webhook.
type StripeService struct {
	db         *gorm.DB
	config     *config.Config
	httpClient *http.Client
	*finalizer
}

// NewStripeService creates a new Stripe service
func NewStripeService(db *gorm.DB, cfg *config.Config, mailer *email.EmailService) *StripeService {
	return &StripeService{
		db:     db,
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		finalizer: newFinalizer(db, cfg, mailer),
	}
}

type stripeSession struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	ClientReferenceID string `json:"client_reference_id"`
	Customer          string `json:"customer"`
	PaymentIntent     string `json:"payment_intent"`
	PaymentStatus     string `json:"payment_status"`
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Initiate creates a Checkout Session and returns its hosted URL
func (s *StripeService) Initiate(ctx context.Context, ord *order.Order, clientIP string) (*InitiateResult, error) {
	cfg := s.config.External.Stripe
	if ord.TotalCost() < cfg.MinimumCharge {
		return nil, ErrBelowMinimumCharge
	}

	currency := strings.ToLower(ord.Currency)
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", strconv.FormatUint(uint64(ord.ID), 10))
	form.Set("customer_email", ord.BillingEmail)
	form.Set("success_url", cfg.SuccessURL)
	form.Set("cancel_url", cfg.CancelURL)

	// Discounts collapse the session into a single adjusted line; Stripe
	// has no per-session negative line items on Checkout.
	if ord.DiscountAmount > 0 {
		form.Set("line_items[0][price_data][currency]", currency)
		form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(ord.TotalCost(), 10))
		form.Set("line_items[0][price_data][product_data][name]", fmt.Sprintf("Order #%d", ord.ID))
		form.Set("line_items[0][quantity]", "1")
	} else {
		for i := range ord.Items {
			item := &ord.Items[i]
			prefix := fmt.Sprintf("line_items[%d]", i)
			form.Set(prefix+"[price_data][currency]", currency)
			form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.Price, 10))
			form.Set(prefix+"[price_data][product_data][name]", item.Title)
			form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", cfg.BaseURL+"/v1/checkout/sessions",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+cfg.SecretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe API call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read stripe response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("stripe API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var session stripeSession
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("failed to parse stripe session: %w", err)
	}

	ord.StripeSessionID = session.ID
	if err := s.db.Model(ord).Update("stripe_session_id", session.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to store stripe session id: %w", err)
	}

	return &InitiateResult{RedirectURL: session.URL}, nil
}

// HandleWebhook verifies the signature and applies the event. Only
// checkout.session.completed mutates anything; other event types are
// acknowledged untouched. Replayed events are no-ops.
func (s *StripeService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) (*order.Order, error) {
	if err := VerifyWebhookSignature(payload, sigHeader, s.config.External.Stripe.WebhookSecret, time.Now()); err != nil {
		return nil, err
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse stripe event: %w", err)
	}
	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var session stripeSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return nil, fmt.Errorf("failed to parse stripe session object: %w", err)
	}

	orderID, err := strconv.ParseUint(session.ClientReferenceID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid client_reference_id %q", session.ClientReferenceID)
	}

	ord, err := s.completeOrder(ctx, locateBy("id", uint(orderID)), session.PaymentIntent, session.PaymentStatus, string(payload))
	if err != nil {
		return nil, err
	}

	// Remember the Stripe customer for returning buyers
	if session.Customer != "" {
		s.db.Model(&user.User{}).Where("id = ?", ord.UserID).
			Update("stripe_customer_id", session.Customer)
	}
	return ord, nil
}

// VerifyWebhookSignature checks a Stripe-Signature header (t=...,v1=...)
// against the payload. Signatures older than the tolerance window are
// rejected to blunt replays.
func VerifyWebhookSignature(payload []byte, sigHeader, secret string, now time.Time) error {
	var timestamp string
	var candidates []string
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			candidates = append(candidates, kv[1])
		}
	}
	if timestamp == "" || len(candidates) == 0 {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > webhookTolerance || age < -webhookTolerance {
		return ErrStaleWebhook
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(expected), []byte(candidate)) {
			return nil
		}
	}
	return ErrInvalidSignature
}
