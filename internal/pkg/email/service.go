// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/your-org/agency-backend/internal/config"
)

// Notifier is the outbound notification surface used by the payment and
// checkout flows. Keeping it narrow lets tests substitute a recorder.
type Notifier interface {
	Send(ctx context.Context, subject string, to []string, htmlContent string) error
}

// EmailService handles all email operations
type EmailService struct {
	config    *config.Config
	templates map[string]*template.Template
	client    *http.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	service := &EmailService{
		config:    cfg,
		templates: make(map[string]*template.Template),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	if err := service.loadTemplates(); err != nil {
		log.Printf("Warning: Failed to load email templates: %v", err)
	}

	return service
}

// Send implements Notifier with a plain subject/recipients/body call
func (s *EmailService) Send(ctx context.Context, subject string, to []string, htmlContent string) error {
	return s.SendEmail(ctx, &Email{
		To:          to,
		Subject:     subject,
		HTMLContent: htmlContent,
	})
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	switch s.config.External.Email.Provider {
	case "smtp":
		return s.sendSMTPEmail(email)
	case "resend":
		return s.sendResendEmail(email)
	case "sendgrid":
		return s.sendSendGridEmail(email)
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.External.Email.Provider)
	}
}

// SendOrderConfirmation sends the post-payment confirmation email
func (s *EmailService) SendOrderConfirmation(ctx context.Context, data OrderConfirmationData) error {
	data.EmailTemplateData = s.baseData(data.UserName, data.UserEmail)

	htmlContent, err := s.renderTemplate("order_confirmation", data)
	if err != nil {
		return fmt.Errorf("failed to render order confirmation template: %w", err)
	}

	email := &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("Order Confirmation - #%d", data.OrderID),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderConfirmation,
	}

	return s.SendEmail(ctx, email)
}

// SendPaymentFailed sends the payment failure notification
func (s *EmailService) SendPaymentFailed(ctx context.Context, data PaymentFailedData) error {
	data.EmailTemplateData = s.baseData(data.UserName, data.UserEmail)

	htmlContent, err := s.renderTemplate("payment_failed", data)
	if err != nil {
		return fmt.Errorf("failed to render payment failed template: %w", err)
	}

	email := &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("Payment Failed - #%d", data.OrderID),
		HTMLContent: htmlContent,
		Type:        EmailTypePaymentFailed,
	}

	return s.SendEmail(ctx, email)
}

// SendBankInstructions sends wire-transfer instructions for manual payment
func (s *EmailService) SendBankInstructions(ctx context.Context, data BankInstructionsData) error {
	data.EmailTemplateData = s.baseData(data.UserName, data.UserEmail)

	htmlContent, err := s.renderTemplate("bank_transfer_instructions", data)
	if err != nil {
		return fmt.Errorf("failed to render bank instructions template: %w", err)
	}

	email := &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("Payment Instructions - #%d", data.OrderID),
		HTMLContent: htmlContent,
		Type:        EmailTypeBankInstructions,
	}

	return s.SendEmail(ctx, email)
}

// SendContactNotification forwards a contact form submission to the site
// owner
func (s *EmailService) SendContactNotification(ctx context.Context, data ContactNotificationData) error {
	data.EmailTemplateData = s.baseData(data.SenderName, data.SenderEmail)

	htmlContent, err := s.renderTemplate("contact_notification", data)
	if err != nil {
		return fmt.Errorf("failed to render contact notification template: %w", err)
	}

	email := &Email{
		To:          []string{s.config.External.Email.FromEmail},
		Subject:     fmt.Sprintf("New contact message: %s", data.Subject),
		HTMLContent: htmlContent,
		Type:        EmailTypeContactNotification,
	}

	return s.SendEmail(ctx, email)
}

// SendSubscriberWelcome greets a new newsletter subscriber
func (s *EmailService) SendSubscriberWelcome(ctx context.Context, subscriberEmail string) error {
	data := struct {
		EmailTemplateData
	}{
		EmailTemplateData: s.baseData("", subscriberEmail),
	}

	htmlContent, err := s.renderTemplate("subscriber_welcome", data)
	if err != nil {
		return fmt.Errorf("failed to render subscriber welcome template: %w", err)
	}

	email := &Email{
		To:          []string{subscriberEmail},
		Subject:     fmt.Sprintf("Welcome to %s", s.config.External.Email.FromName),
		HTMLContent: htmlContent,
		Type:        EmailTypeSubscriberWelcome,
	}

	return s.SendEmail(ctx, email)
}

func (s *EmailService) baseData(userName, userEmail string) EmailTemplateData {
	return GetBaseTemplateData(
		s.config.External.Email.FromName,
		s.config.External.Email.BaseURL,
		userName,
		userEmail,
	)
}

// loadTemplates loads all email templates
func (s *EmailService) loadTemplates() error {
	templateDir := s.config.External.Email.TemplateDir
	if templateDir == "" {
		templateDir = "./templates/emails"
	}

	templates := []string{
		"order_confirmation",
		"payment_failed",
		"bank_transfer_instructions",
		"contact_notification",
		"subscriber_welcome",
	}

	for _, name := range templates {
		templatePath := filepath.Join(templateDir, name+".html")
		tmpl, err := template.ParseFiles(templatePath)
		if err != nil {
			log.Printf("Warning: Could not load template %s: %v", name, err)
			s.templates[name] = s.createFallbackTemplate(name)
		} else {
			s.templates[name] = tmpl
		}
	}

	return nil
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(templateName string, data interface{}) (string, error) {
	tmpl, exists := s.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

// createFallbackTemplate creates a basic HTML template as fallback
func (s *EmailService) createFallbackTemplate(name string) *template.Template {
	basicTemplate := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.SiteName}}</h1>
        <p>Hello {{.UserName}},</p>
        <p>This is a notification from {{.SiteName}}.</p>
        <p>If you have any questions, please contact our support team.</p>
        <p>Best regards,<br>{{.SiteName}} Team</p>
    </div>
</body>
</html>`

	tmpl, _ := template.New(name).Parse(basicTemplate)
	return tmpl
}
