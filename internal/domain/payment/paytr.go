// internal/domain/payment/paytr.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/order"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// ErrInvalidHash is returned when a PayTR callback fails verification.
// Handlers must answer with an error status and mutate nothing.
var ErrInvalidHash = errors.New("paytr callback hash mismatch")

// PayTRService drives the PayTR iframe flow: we request a one-time token
// with an HMAC over the transaction parameters, embed the iframe, and
// PayTR posts the outcome to our callback with its own HMAC.
type PayTRService struct {
	db         *gorm.DB
	config     *config.Config
	httpClient *http.Client
	*finalizer
}

// NewPayTRService creates a new PayTR service
func NewPayTRService(db *gorm.DB, cfg *config.Config, mailer *email.EmailService) *PayTRService {
	return &PayTRService{
		db:     db,
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		finalizer: newFinalizer(db, cfg, mailer),
	}
}

type paytrTokenResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

// CallbackParams are the fields PayTR posts to the merchant callback URL
type CallbackParams struct {
	MerchantOID     string
	Status          string
	TotalAmount     string
	Hash            string
	FailedReasonMsg string
}

// Initiate requests an iframe token for the order. PayTR only settles
// Turkish lira; the checkout layer rejects other currencies before
// reaching here.
func (s *PayTRService) Initiate(ctx context.Context, ord *order.Order, clientIP string) (*InitiateResult, error) {
	cfg := s.config.External.PayTR

	merchantOID := fmt.Sprintf("AG%d%s", ord.ID, strings.ReplaceAll(uuid.New().String()[:13], "-", ""))
	ord.MerchantOID = merchantOID
	if err := s.db.Model(ord).Update("merchant_oid", merchantOID).Error; err != nil {
		return nil, fmt.Errorf("failed to store merchant oid: %w", err)
	}

	basket := make([][]interface{}, 0, len(ord.Items))
	for i := range ord.Items {
		item := &ord.Items[i]
		basket = append(basket, []interface{}{
			item.Title,
			order.FormatAmount(item.Price),
			item.Quantity,
		})
	}
	basketJSON, err := json.Marshal(basket)
	if err != nil {
		return nil, fmt.Errorf("failed to encode basket: %w", err)
	}
	basketB64 := base64.StdEncoding.EncodeToString(basketJSON)

	amount := strconv.FormatInt(ord.TotalCost(), 10)
	noInstallment := boolFlag(cfg.NoInstallment)
	maxInstallment := strconv.Itoa(cfg.MaxInstallment)
	currency := "TL"
	testMode := boolFlag(cfg.TestMode)

	token := TokenFor(cfg, clientIP, merchantOID, ord.BillingEmail, amount,
		basketB64, noInstallment, maxInstallment, currency, testMode)

	form := url.Values{}
	form.Set("merchant_id", cfg.MerchantID)
	form.Set("user_ip", clientIP)
	form.Set("merchant_oid", merchantOID)
	form.Set("email", ord.BillingEmail)
	form.Set("payment_amount", amount)
	form.Set("paytr_token", token)
	form.Set("user_basket", basketB64)
	form.Set("debug_on", "0")
	form.Set("no_installment", noInstallment)
	form.Set("max_installment", maxInstallment)
	form.Set("user_name", ord.BillingName)
	form.Set("user_address", ord.BillingAddress)
	form.Set("user_phone", ord.BillingPhone)
	form.Set("merchant_ok_url", cfg.SuccessURL)
	form.Set("merchant_fail_url", cfg.FailURL)
	form.Set("timeout_limit", "30")
	form.Set("currency", currency)
	form.Set("test_mode", testMode)

	req, err := http.NewRequestWithContext(ctx, "POST", cfg.BaseURL+"/odeme/api/get-token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create paytr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paytr API call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read paytr response: %w", err)
	}

	var tokenResp paytrTokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse paytr response: %w", err)
	}
	if tokenResp.Status != "success" {
		return nil, fmt.Errorf("paytr token request failed: %s", tokenResp.Reason)
	}

	return &InitiateResult{
		Token:       tokenResp.Token,
		RedirectURL: fmt.Sprintf("%s/odeme/guvenli/%s", cfg.BaseURL, tokenResp.Token),
	}, nil
}

// HandleCallback verifies and applies a PayTR notification. The handler
// must answer the literal body "OK" on any return without error,
// including repeats; a hash mismatch returns ErrInvalidHash and nothing
// is touched.
func (s *PayTRService) HandleCallback(ctx context.Context, params CallbackParams) (*order.Order, error) {
	expected := CallbackHash(s.config.External.PayTR, params.MerchantOID, params.Status, params.TotalAmount)
	if !hmac.Equal([]byte(expected), []byte(params.Hash)) {
		return nil, ErrInvalidHash
	}

	locate := locateBy("merchant_oid", params.MerchantOID)
	raw := marshalRaw(map[string]string{
		"merchant_oid":      params.MerchantOID,
		"status":            params.Status,
		"total_amount":      params.TotalAmount,
		"failed_reason_msg": params.FailedReasonMsg,
	})

	if params.Status == "success" {
		return s.completeOrder(ctx, locate, params.MerchantOID, params.Status, raw)
	}

	reason := params.FailedReasonMsg
	if reason == "" {
		reason = "payment declined"
	}
	return s.failOrder(ctx, locate, reason, raw)
}

// TokenFor computes the get-token request HMAC: SHA-256 over the
// transaction fields concatenated in PayTR's documented order plus the
// merchant salt, keyed with the merchant key, base64 encoded.
func TokenFor(cfg config.PayTRConfig, userIP, merchantOID, email, amount, basketB64, noInstallment, maxInstallment, currency, testMode string) string {
	hashStr := cfg.MerchantID + userIP + merchantOID + email + amount +
		basketB64 + noInstallment + maxInstallment + currency + testMode
	return signPayTR(cfg.MerchantKey, hashStr+cfg.MerchantSalt)
}

// CallbackHash computes the expected notification HMAC:
// merchant_oid + salt + status + total_amount, keyed with the merchant key.
func CallbackHash(cfg config.PayTRConfig, merchantOID, status, totalAmount string) string {
	return signPayTR(cfg.MerchantKey, merchantOID+cfg.MerchantSalt+status+totalAmount)
}

func signPayTR(key, payload string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
