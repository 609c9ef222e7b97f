// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeWelcome             EmailType = "welcome"
	EmailTypePasswordReset       EmailType = "password_reset"
	EmailTypeOrderConfirmation   EmailType = "order_confirmation"
	EmailTypePaymentFailed       EmailType = "payment_failed"
	EmailTypeBankInstructions    EmailType = "bank_transfer_instructions"
	EmailTypeContactNotification EmailType = "contact_notification"
	EmailTypeSubscriberWelcome   EmailType = "subscriber_welcome"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	TextContent string    `json:"text_content,omitempty"`
	Type        EmailType `json:"type"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName  string `json:"site_name"`
	SiteURL   string `json:"site_url"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Year      int    `json:"year"`
}

// OrderLine is a rendered invoice line. Monetary values are two-decimal
// strings so templates never do arithmetic.
type OrderLine struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
}

// OrderConfirmationData contains data for the order confirmation email
type OrderConfirmationData struct {
	EmailTemplateData
	OrderID        uint        `json:"order_id"`
	OrderDate      string      `json:"order_date"`
	PaymentMethod  string      `json:"payment_method"`
	Items          []OrderLine `json:"items"`
	Subtotal       string      `json:"subtotal"`
	DiscountAmount string      `json:"discount_amount"`
	Total          string      `json:"total"`
	Currency       string      `json:"currency"`
	OrderURL       string      `json:"order_url"`
}

// PaymentFailedData contains data for the payment failure email
type PaymentFailedData struct {
	EmailTemplateData
	OrderID uint   `json:"order_id"`
	Total   string `json:"total"`
	Reason  string `json:"reason"`
}

// BankInstructionsData contains data for the wire-transfer instructions email
type BankInstructionsData struct {
	EmailTemplateData
	OrderID       uint   `json:"order_id"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
	BankName      string `json:"bank_name"`
	AccountHolder string `json:"account_holder"`
	IBAN          string `json:"iban"`
	Reference     string `json:"reference"`
}

// ContactNotificationData contains data for the admin contact notification
type ContactNotificationData struct {
	EmailTemplateData
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, siteURL, userName, userEmail string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:  siteName,
		SiteURL:   siteURL,
		UserName:  userName,
		UserEmail: userEmail,
		Year:      time.Now().Year(),
	}
}
