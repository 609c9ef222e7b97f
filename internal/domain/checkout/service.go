// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/bank"
	"github.com/your-org/agency-backend/internal/domain/order"
	"github.com/your-org/agency-backend/internal/domain/payment"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// Checkout failure modes
var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrUnsupportedCurrency = errors.New("selected payment method does not support this currency")
)

// SubmitRequest carries the billing details and payment choice. Identity
// number is required by Turkish gateways for invoicing.
type SubmitRequest struct {
	FullName       string              `json:"full_name" binding:"required"`
	Email          string              `json:"email" binding:"required,email"`
	PhoneNumber    string              `json:"phone_number" binding:"required"`
	IdentityNumber string              `json:"identity_number" binding:"required"`
	Address        string              `json:"address" binding:"required"`
	City           string              `json:"city" binding:"required"`
	PostalCode     string              `json:"postal_code"`
	Currency       string              `json:"currency"`
	PaymentMethod  order.PaymentMethod `json:"payment_method" binding:"required"`
}

// SubmitResult tells the handler what to do next with the customer
type SubmitResult struct {
	Order    *order.Order            `json:"order"`
	Gateway  *payment.InitiateResult `json:"gateway,omitempty"`
	Message  string                  `json:"message,omitempty"`
	Redirect string                  `json:"redirect,omitempty"`
}

// Service orchestrates checkout: it validates the billing details, stamps
// the snapshot onto the cart and hands the order to the chosen gateway.
type Service struct {
	db      *gorm.DB
	config  *config.Config
	bankSvc *bank.Service
	mailer  *email.EmailService
	iyzico  *payment.IyzicoService
	paytr   *payment.PayTRService
	stripe  *payment.StripeService
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, cfg *config.Config, mailer *email.EmailService) *Service {
	return &Service{
		db:      db,
		config:  cfg,
		bankSvc: bank.NewService(db, cfg),
		mailer:  mailer,
		iyzico:  payment.NewIyzicoService(db, cfg, mailer),
		paytr:   payment.NewPayTRService(db, cfg, mailer),
		stripe:  payment.NewStripeService(db, cfg, mailer),
	}
}

// Submit runs checkout for the user's cart. The billing snapshot is
// persisted before the gateway call so a failed redirect can be retried
// without re-entering details.
func (s *Service) Submit(ctx context.Context, userID uint, req *SubmitRequest, clientIP string) (*SubmitResult, error) {
	if err := validateBilling(req); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "TRY"
	}
	if req.PaymentMethod == order.MethodPayTR && currency != "TRY" {
		return nil, ErrUnsupportedCurrency
	}

	var cart order.Order
	err := s.db.Preload("Items").Preload("Items.PortfolioItem").
		Where("user_id = ? AND status = ?", userID, order.StatusCart).
		First(&cart).Error
	if err != nil {
		return nil, ErrEmptyCart
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	cart.BillingName = strings.TrimSpace(req.FullName)
	cart.BillingEmail = strings.TrimSpace(req.Email)
	cart.BillingPhone = strings.TrimSpace(req.PhoneNumber)
	cart.BillingIdentityNumber = req.IdentityNumber
	cart.BillingAddress = strings.TrimSpace(req.Address)
	cart.BillingCity = strings.TrimSpace(req.City)
	cart.BillingPostalCode = strings.TrimSpace(req.PostalCode)
	cart.Currency = currency
	cart.PaymentMethod = req.PaymentMethod

	// Gateway orders keep the cart status until the gateway accepts the
	// initiation; manual methods go straight to pending.
	switch req.PaymentMethod {
	case order.MethodIyzico, order.MethodPayTR, order.MethodStripe:
	case order.MethodBankTransfer, order.MethodCash:
		cart.Status = order.StatusPending
	default:
		return nil, fmt.Errorf("unsupported payment method: %s", req.PaymentMethod)
	}

	if err := s.db.Save(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	switch req.PaymentMethod {
	case order.MethodIyzico:
		return s.dispatchGateway(ctx, &cart, s.iyzico, order.StatusPendingIyzicoApproval, clientIP)
	case order.MethodPayTR:
		return s.dispatchGateway(ctx, &cart, s.paytr, order.StatusPendingPayTRApproval, clientIP)
	case order.MethodStripe:
		return s.dispatchGateway(ctx, &cart, s.stripe, order.StatusPendingStripeApproval, clientIP)
	default:
		return s.submitManual(ctx, &cart)
	}
}

// dispatchGateway hands the order to a hosted gateway. The pending status
// is stamped only once initiation succeeds; a failure leaves the order in
// cart so the customer can fix up and submit again.
func (s *Service) dispatchGateway(ctx context.Context, ord *order.Order, gw payment.Gateway, pending order.Status, clientIP string) (*SubmitResult, error) {
	result, err := gw.Initiate(ctx, ord, clientIP)
	if err != nil {
		s.db.Model(ord).Update("error_message", err.Error())
		return nil, fmt.Errorf("payment initiation failed: %w", err)
	}

	if err := s.db.Model(ord).Updates(map[string]interface{}{
		"status":        pending,
		"error_message": "",
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	ord.Status = pending

	return &SubmitResult{
		Order:    ord,
		Gateway:  result,
		Redirect: result.RedirectURL,
	}, nil
}

// submitManual handles bank transfer and cash orders: no gateway, the
// order waits in pending until an admin confirms receipt.
func (s *Service) submitManual(ctx context.Context, ord *order.Order) (*SubmitResult, error) {
	message := "Order received. We will contact you to arrange payment."

	if ord.PaymentMethod == order.MethodBankTransfer {
		account, err := s.bankSvc.ActiveAccount()
		if err != nil {
			// Checkout still succeeds; instructions go out once an
			// account is configured.
			logrus.WithError(err).WithField("order_id", ord.ID).Warn("No bank account for transfer instructions")
		} else {
			s.sendBankInstructions(ctx, ord, account)
			message = "Order received. Transfer instructions have been emailed to you."
		}
	}

	return &SubmitResult{
		Order:   ord,
		Message: message,
	}, nil
}

func (s *Service) sendBankInstructions(ctx context.Context, ord *order.Order, account *bank.BankAccount) {
	data := email.BankInstructionsData{
		OrderID:       ord.ID,
		Total:         order.FormatAmount(ord.TotalCost()),
		Currency:      ord.Currency,
		BankName:      account.BankName,
		AccountHolder: account.AccountHolder,
		IBAN:          account.IBAN,
		Reference:     fmt.Sprintf("ORDER-%d", ord.ID),
	}
	data.UserName = ord.BillingName
	data.UserEmail = ord.BillingEmail

	if err := s.mailer.SendBankInstructions(ctx, data); err != nil {
		logrus.WithError(err).WithField("order_id", ord.ID).Error("Failed to send bank instructions email")
	}
}

// Iyzico exposes the Iyzico callback surface
func (s *Service) Iyzico() *payment.IyzicoService { return s.iyzico }

// PayTR exposes the PayTR callback surface
func (s *Service) PayTR() *payment.PayTRService { return s.paytr }

// Stripe exposes the Stripe webhook surface
func (s *Service) Stripe() *payment.StripeService { return s.stripe }

// validateBilling enforces the field rules the Turkish gateways require
func validateBilling(req *SubmitRequest) error {
	if len(req.IdentityNumber) != 11 {
		return fmt.Errorf("identity number must be exactly 11 digits")
	}
	for _, c := range req.IdentityNumber {
		if c < '0' || c > '9' {
			return fmt.Errorf("identity number must be exactly 11 digits")
		}
	}

	if req.PhoneNumber == "" {
		return fmt.Errorf("phone number is required")
	}
	for _, c := range req.PhoneNumber {
		if (c < '0' || c > '9') && !strings.ContainsRune("()+- ", c) {
			return fmt.Errorf("phone number contains invalid characters")
		}
	}

	return nil
}
