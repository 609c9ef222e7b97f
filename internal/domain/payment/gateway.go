// internal/domain/payment/gateway.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/domain/discount"
	"github.com/your-org/agency-backend/internal/domain/order"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway initiates a hosted payment for an order that already carries its
// billing snapshot. The callback side is gateway-specific and lives on the
// concrete services.
type Gateway interface {
	Initiate(ctx context.Context, ord *order.Order, clientIP string) (*InitiateResult, error)
}

// InitiateResult tells the handler where to send the customer next
type InitiateResult struct {
	// RedirectURL is the hosted payment page, when the gateway provides one
	RedirectURL string `json:"redirect_url,omitempty"`
	// Token is an embeddable token (PayTR iframe)
	Token string `json:"token,omitempty"`
	// CheckoutFormContent is inline HTML/JS (Iyzico checkout form)
	CheckoutFormContent string `json:"checkout_form_content,omitempty"`
}

// ErrOrderNotFound is returned when a callback references no known order
var ErrOrderNotFound = errors.New("order not found for callback")

// ErrInvalidSignature is returned when a gateway notification fails
// signature verification. Handlers answer 400 and mutate nothing.
var ErrInvalidSignature = errors.New("gateway signature mismatch")

// finalizer applies gateway outcomes to orders. All three gateways share
// it so retried or duplicated callbacks behave identically everywhere.
type finalizer struct {
	db       *gorm.DB
	config   *config.Config
	notifier email.Notifier
	mailer   *email.EmailService
}

func newFinalizer(db *gorm.DB, cfg *config.Config, mailer *email.EmailService) *finalizer {
	return &finalizer{
		db:       db,
		config:   cfg,
		notifier: mailer,
		mailer:   mailer,
	}
}

// completeOrder marks the located order paid. The row is locked for the
// duration of the transaction and already-terminal orders are left
// untouched, so a delivered-twice callback mutates nothing and sends no
// second email.
func (f *finalizer) completeOrder(ctx context.Context, locate func(tx *gorm.DB) (*order.Order, error), paymentRef, paymentStatus, rawResponse string) (*order.Order, error) {
	var ord *order.Order
	completed := false

	err := f.db.Transaction(func(tx *gorm.DB) error {
		var err error
		ord, err = locate(lockRow(tx))
		if err != nil {
			return err
		}
		if ord.IsTerminal() {
			return nil
		}

		now := time.Now().UTC()
		ord.Status = order.StatusCompleted
		ord.PaymentRef = paymentRef
		ord.PaymentStatus = paymentStatus
		ord.RawResponse = rawResponse
		ord.PaymentDate = &now
		ord.ErrorMessage = ""

		if err := tx.Save(ord).Error; err != nil {
			return fmt.Errorf("failed to complete order: %w", err)
		}

		if ord.DiscountCodeID != nil {
			if err := discount.RecordUse(tx, *ord.DiscountCodeID); err != nil {
				return err
			}
		}

		completed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		f.sendConfirmation(ctx, ord)
	}
	return ord, nil
}

// failOrder marks the located order failed, keeping the gateway's reason
// for support. Terminal orders are left untouched.
func (f *finalizer) failOrder(ctx context.Context, locate func(tx *gorm.DB) (*order.Order, error), reason, rawResponse string) (*order.Order, error) {
	var ord *order.Order
	failed := false

	err := f.db.Transaction(func(tx *gorm.DB) error {
		var err error
		ord, err = locate(lockRow(tx))
		if err != nil {
			return err
		}
		if ord.IsTerminal() {
			return nil
		}

		ord.Status = order.StatusPaymentFailed
		ord.ErrorMessage = reason
		ord.RawResponse = rawResponse
		if err := tx.Save(ord).Error; err != nil {
			return fmt.Errorf("failed to record payment failure: %w", err)
		}
		failed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if failed {
		f.sendFailureNotice(ctx, ord, reason)
	}
	return ord, nil
}

// sendConfirmation emails the customer. Email trouble never fails the
// callback; the order is already completed at this point.
func (f *finalizer) sendConfirmation(ctx context.Context, ord *order.Order) {
	var items []order.OrderItem
	if err := f.db.Where("order_id = ?", ord.ID).Find(&items).Error; err != nil {
		logrus.WithError(err).WithField("order_id", ord.ID).Warn("Could not load items for confirmation email")
	}

	lines := make([]email.OrderLine, 0, len(items))
	for i := range items {
		lines = append(lines, email.OrderLine{
			Title:    items[i].Title,
			Quantity: items[i].Quantity,
			Price:    order.FormatAmount(items[i].Price),
			Total:    order.FormatAmount(items[i].Cost()),
		})
	}

	subtotal := int64(0)
	for i := range items {
		subtotal += items[i].Cost()
	}
	total := subtotal - ord.DiscountAmount
	if total < 0 {
		total = 0
	}

	data := email.OrderConfirmationData{
		OrderID:        ord.ID,
		OrderDate:      time.Now().UTC().Format("2006-01-02"),
		PaymentMethod:  string(ord.PaymentMethod),
		Items:          lines,
		Subtotal:       order.FormatAmount(subtotal),
		DiscountAmount: order.FormatAmount(ord.DiscountAmount),
		Total:          order.FormatAmount(total),
		Currency:       ord.Currency,
		OrderURL:       fmt.Sprintf("%s/orders/%d", f.config.App.BaseURL, ord.ID),
	}
	data.UserName = ord.BillingName
	data.UserEmail = ord.BillingEmail

	if err := f.mailer.SendOrderConfirmation(ctx, data); err != nil {
		logrus.WithError(err).WithField("order_id", ord.ID).Error("Failed to send order confirmation email")
	}
}

func (f *finalizer) sendFailureNotice(ctx context.Context, ord *order.Order, reason string) {
	if ord.BillingEmail == "" {
		return
	}
	data := email.PaymentFailedData{
		OrderID: ord.ID,
		Total:   order.FormatAmount(ord.TotalCost()),
		Reason:  reason,
	}
	data.UserName = ord.BillingName
	data.UserEmail = ord.BillingEmail

	if err := f.mailer.SendPaymentFailed(ctx, data); err != nil {
		logrus.WithError(err).WithField("order_id", ord.ID).Error("Failed to send payment failure email")
	}
}

// lockRow takes a FOR UPDATE lock where the dialect supports it. SQLite
// serializes writers on its own.
func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// locateBy builds a single-column order locator for callbacks
func locateBy(column string, value interface{}) func(tx *gorm.DB) (*order.Order, error) {
	return func(tx *gorm.DB) (*order.Order, error) {
		var ord order.Order
		err := tx.Where(column+" = ?", value).First(&ord).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("failed to locate order: %w", err)
		}
		return &ord, nil
	}
}
