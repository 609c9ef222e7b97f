// internal/domain/payment/iyzico.go
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/order"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// IyzicoService drives the Iyzico hosted checkout form. The customer is
// handed a one-time form; Iyzico later posts a token to our callback and
// we exchange it for the payment result.
type IyzicoService struct {
	db         *gorm.DB
	config     *config.Config
	httpClient *http.Client
	*finalizer
}

// NewIyzicoService creates a new Iyzico service
func NewIyzicoService(db *gorm.DB, cfg *config.Config, mailer *email.EmailService) *IyzicoService {
	return &IyzicoService{
		db:     db,
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		finalizer: newFinalizer(db, cfg, mailer),
	}
}

type iyzicoBuyer struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Surname             string `json:"surname"`
	Email               string `json:"email"`
	GSMNumber           string `json:"gsmNumber,omitempty"`
	IdentityNumber      string `json:"identityNumber"`
	RegistrationAddress string `json:"registrationAddress"`
	City                string `json:"city"`
	Country             string `json:"country"`
	IP                  string `json:"ip"`
}

type iyzicoAddress struct {
	ContactName string `json:"contactName"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Address     string `json:"address"`
	ZipCode     string `json:"zipCode,omitempty"`
}

type iyzicoBasketItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category1 string `json:"category1"`
	ItemType  string `json:"itemType"`
	Price     string `json:"price"`
}

type iyzicoInitializeRequest struct {
	Locale              string             `json:"locale"`
	ConversationID      string             `json:"conversationId"`
	Price               string             `json:"price"`
	PaidPrice           string             `json:"paidPrice"`
	Currency            string             `json:"currency"`
	BasketID            string             `json:"basketId"`
	PaymentGroup        string             `json:"paymentGroup"`
	CallbackURL         string             `json:"callbackUrl"`
	EnabledInstallments []int              `json:"enabledInstallments"`
	Buyer               iyzicoBuyer        `json:"buyer"`
	BillingAddress      iyzicoAddress      `json:"billingAddress"`
	ShippingAddress     iyzicoAddress      `json:"shippingAddress"`
	BasketItems         []iyzicoBasketItem `json:"basketItems"`
}

type iyzicoInitializeResponse struct {
	Status              string `json:"status"`
	ErrorMessage        string `json:"errorMessage"`
	Token               string `json:"token"`
	CheckoutFormContent string `json:"checkoutFormContent"`
	PaymentPageURL      string `json:"paymentPageUrl"`
}

type iyzicoRetrieveRequest struct {
	Locale         string `json:"locale"`
	ConversationID string `json:"conversationId,omitempty"`
	Token          string `json:"token"`
}

type iyzicoRetrieveResponse struct {
	Status         string      `json:"status"`
	PaymentStatus  string      `json:"paymentStatus"`
	PaymentID      string      `json:"paymentId"`
	ConversationID string      `json:"conversationId"`
	BasketID       string      `json:"basketId"`
	Currency       string      `json:"currency"`
	Price          json.Number `json:"price"`
	PaidPrice      json.Number `json:"paidPrice"`
	Token          string      `json:"token"`
	Signature      string      `json:"signature"`
	ErrorMessage   string      `json:"errorMessage"`
}

// Initiate opens an Iyzico checkout form for the order. The generated
// conversation id is stored for callback correlation before any network
// call is made.
func (s *IyzicoService) Initiate(ctx context.Context, ord *order.Order, clientIP string) (*InitiateResult, error) {
	conversationID := fmt.Sprintf("ORDER-%d-%s", ord.ID, uuid.New().String()[:8])
	ord.ConversationID = conversationID
	if err := s.db.Model(ord).Update("conversation_id", conversationID).Error; err != nil {
		return nil, fmt.Errorf("failed to store conversation id: %w", err)
	}

	total := order.FormatAmount(ord.TotalCost())
	firstName, lastName := splitName(ord.BillingName)

	basketItems := make([]iyzicoBasketItem, 0, len(ord.Items))
	for i := range ord.Items {
		item := &ord.Items[i]
		category := "General"
		if item.PortfolioItem != nil {
			category = item.PortfolioItem.CategoryName()
		}
		basketItems = append(basketItems, iyzicoBasketItem{
			ID:        strconv.FormatUint(uint64(item.PortfolioItemID), 10),
			Name:      item.Title,
			Category1: category,
			ItemType:  "VIRTUAL",
			Price:     order.FormatAmount(item.Cost()),
		})
	}

	// Basket item prices must sum to `price`; the discount is expressed
	// through paidPrice only.
	address := iyzicoAddress{
		ContactName: ord.BillingName,
		City:        ord.BillingCity,
		Country:     "Turkey",
		Address:     ord.BillingAddress,
		ZipCode:     ord.BillingPostalCode,
	}

	req := iyzicoInitializeRequest{
		Locale:              "tr",
		ConversationID:      conversationID,
		Price:               order.FormatAmount(ord.SubtotalCost()),
		PaidPrice:           total,
		Currency:            ord.Currency,
		BasketID:            strconv.FormatUint(uint64(ord.ID), 10),
		PaymentGroup:        "PRODUCT",
		CallbackURL:         s.config.External.Iyzico.CallbackURL,
		EnabledInstallments: []int{1},
		Buyer: iyzicoBuyer{
			ID:                  strconv.FormatUint(uint64(ord.UserID), 10),
			Name:                firstName,
			Surname:             lastName,
			Email:               ord.BillingEmail,
			GSMNumber:           ord.BillingPhone,
			IdentityNumber:      ord.BillingIdentityNumber,
			RegistrationAddress: ord.BillingAddress,
			City:                ord.BillingCity,
			Country:             "Turkey",
			IP:                  clientIP,
		},
		BillingAddress:  address,
		ShippingAddress: address,
		BasketItems:     basketItems,
	}

	var resp iyzicoInitializeResponse
	if err := s.makeAPICall(ctx, "/payment/iyzipos/checkoutform/initialize/auth/ecom", req, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("iyzico initialization failed: %s", resp.ErrorMessage)
	}

	return &InitiateResult{
		RedirectURL:         resp.PaymentPageURL,
		Token:               resp.Token,
		CheckoutFormContent: resp.CheckoutFormContent,
	}, nil
}

// HandleCallback exchanges the posted token for the payment result,
// verifies the result signature and finalizes the order. Safe to call
// repeatedly for the same token.
func (s *IyzicoService) HandleCallback(ctx context.Context, token string) (*order.Order, error) {
	if token == "" {
		return nil, fmt.Errorf("missing iyzico token")
	}

	var resp iyzicoRetrieveResponse
	err := s.makeAPICall(ctx, "/payment/iyzipos/checkoutform/auth/ecom/detail", iyzicoRetrieveRequest{
		Locale: "tr",
		Token:  token,
	}, &resp)
	if err != nil {
		return nil, err
	}

	// A non-success status means the token exchange itself failed; there is
	// no payment result to apply.
	if resp.Status != "success" {
		return nil, fmt.Errorf("iyzico retrieve failed: %s", resp.ErrorMessage)
	}
	if !s.verifyRetrieveSignature(&resp, token) {
		return nil, ErrInvalidSignature
	}

	locate := s.locator(resp.BasketID, resp.ConversationID)
	raw := marshalRaw(resp)

	if resp.PaymentStatus == "SUCCESS" {
		ord, err := s.completeOrder(ctx, locate, resp.PaymentID, resp.PaymentStatus, raw)
		if err != nil {
			return nil, err
		}
		// Keep the gateway's payment id queryable for refunds/support
		if ord.IyzicoPaymentID != resp.PaymentID {
			s.db.Model(ord).Update("iyzico_payment_id", resp.PaymentID)
			ord.IyzicoPaymentID = resp.PaymentID
		}
		return ord, nil
	}

	reason := resp.ErrorMessage
	if reason == "" {
		reason = fmt.Sprintf("payment status %s", resp.PaymentStatus)
	}
	return s.failOrder(ctx, locate, reason, raw)
}

// locator finds the order by basket id, falling back to conversation id
// for older initializations.
func (s *IyzicoService) locator(basketID, conversationID string) func(tx *gorm.DB) (*order.Order, error) {
	return func(tx *gorm.DB) (*order.Order, error) {
		if basketID != "" {
			if id, err := strconv.ParseUint(basketID, 10, 64); err == nil {
				ord, err := locateBy("id", uint(id))(tx)
				if err == nil {
					return ord, nil
				}
			}
		}
		if conversationID != "" {
			return locateBy("conversation_id", conversationID)(tx)
		}
		return nil, ErrOrderNotFound
	}
}

// makeAPICall signs and posts a JSON request to the Iyzico API
func (s *IyzicoService) makeAPICall(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal iyzico request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.External.Iyzico.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create iyzico request: %w", err)
	}

	randomKey := fmt.Sprintf("%d%s", time.Now().UnixMilli(), uuid.New().String()[:8])
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.authHeader(randomKey, path, body))
	req.Header.Set("x-iyzi-rnd", randomKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("iyzico API call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read iyzico response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("iyzico API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse iyzico response: %w", err)
	}
	return nil
}

// authHeader builds the IYZWSv2 authorization header: an HMAC-SHA256
// signature over randomKey + uriPath + body, keyed with the secret key.
func (s *IyzicoService) authHeader(randomKey, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(s.config.External.Iyzico.SecretKey))
	mac.Write([]byte(randomKey + path + string(body)))
	signature := hex.EncodeToString(mac.Sum(nil))

	authString := fmt.Sprintf("apiKey:%s&randomKey:%s&signature:%s",
		s.config.External.Iyzico.APIKey, randomKey, signature)
	return "IYZWSv2 " + base64.StdEncoding.EncodeToString([]byte(authString))
}

// retrieveSignature recomputes the signature Iyzico attaches to the
// checkout form detail response: hex HMAC-SHA256 over the colon-joined
// result fields in their documented order, keyed with the secret key.
func (s *IyzicoService) retrieveSignature(resp *iyzicoRetrieveResponse, token string) string {
	if resp.Token != "" {
		token = resp.Token
	}
	payload := strings.Join([]string{
		resp.PaymentStatus,
		resp.PaymentID,
		resp.Currency,
		resp.BasketID,
		resp.ConversationID,
		resp.PaidPrice.String(),
		resp.Price.String(),
		token,
	}, ":")

	mac := hmac.New(sha256.New, []byte(s.config.External.Iyzico.SecretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// verifyRetrieveSignature rejects a result whose signature is missing or
// does not match the recomputation.
func (s *IyzicoService) verifyRetrieveSignature(resp *iyzicoRetrieveResponse, token string) bool {
	if resp.Signature == "" {
		return false
	}
	expected := s.retrieveSignature(resp, token)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(resp.Signature)))
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return full, full
	}
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

func marshalRaw(data interface{}) string {
	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return string(raw)
}
