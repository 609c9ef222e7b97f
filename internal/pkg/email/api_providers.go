// internal/pkg/email/api_providers.go
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Resend API structures
type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendGrid API structures
type sendGridEmailRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridEmail             `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

type sendGridPersonalization struct {
	To []sendGridEmail `json:"to"`
}

type sendGridEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// postJSON sends an authorized JSON payload to a provider endpoint
func (s *EmailService) postJSON(url string, payload interface{}, okStatus int) error {
	apiKey := s.config.External.Email.APIKey
	if apiKey == "" {
		return fmt.Errorf("email API key not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal provider request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create provider request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != okStatus {
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}
	return nil
}

// sendResendEmail sends email using the Resend API
func (s *EmailService) sendResendEmail(email *Email) error {
	from := s.config.External.Email.FromEmail
	if name := s.config.External.Email.FromName; name != "" {
		from = fmt.Sprintf("%s <%s>", name, s.config.External.Email.FromEmail)
	}

	return s.postJSON("https://api.resend.com/emails", resendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTMLContent,
	}, http.StatusOK)
}

// sendSendGridEmail sends email using the SendGrid API
func (s *EmailService) sendSendGridEmail(email *Email) error {
	var to []sendGridEmail
	for _, recipient := range email.To {
		to = append(to, sendGridEmail{Email: recipient})
	}

	return s.postJSON("https://api.sendgrid.com/v3/mail/send", sendGridEmailRequest{
		Personalizations: []sendGridPersonalization{{To: to}},
		From: sendGridEmail{
			Email: s.config.External.Email.FromEmail,
			Name:  s.config.External.Email.FromName,
		},
		Subject: email.Subject,
		Content: []sendGridContent{{Type: "text/html", Value: email.HTMLContent}},
	}, http.StatusAccepted)
}
