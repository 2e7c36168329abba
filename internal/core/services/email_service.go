package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Mailer is the outbound email surface the other services depend on.
// Implemented by EmailService; faked in tests.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) (string, error)
	SendWelcome(ctx context.Context, to, tempPassword string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// EmailService talks to the transactional email HTTP API. When no API
// key is configured every send is a silent no-op, which keeps dev
// environments from needing credentials.
//
// Authentication emails go through here too since there is no separate
// auth provider handling them.
type EmailService struct {
	apiURL  string
	apiKey  string
	from    string
	baseURL string
	enabled bool
	client  *http.Client
}

// EmailConfig configures the email service
type EmailConfig struct {
	APIURL  string
	APIKey  string
	From    string
	BaseURL string // public site URL used in links
}

// NewEmailService creates a new email service
func NewEmailService(cfg EmailConfig) *EmailService {
	return &EmailService{
		apiURL:  cfg.APIURL,
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		baseURL: cfg.BaseURL,
		enabled: cfg.APIKey != "",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// IsEnabled checks if email sending is configured
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// sendRequest is the provider's JSON payload
type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

// sendResponse carries the provider message id
type sendResponse struct {
	ID string `json:"id"`
}

// Send delivers one email and returns the provider message id
func (s *EmailService) Send(ctx context.Context, to, subject, html, text string) (string, error) {
	if !s.enabled {
		log.Printf("📧 Email disabled, skipping send to %s (%s)", to, subject)
		return "", nil
	}

	payload, err := json.Marshal(sendRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("email API returned status %d", resp.StatusCode)
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.ID, nil
}

// SendWelcome sends the post-creation welcome email. The temporary
// password is included in cleartext when set (migration and
// admin-created accounts); members are told to change it on first
// login.
func (s *EmailService) SendWelcome(ctx context.Context, to, tempPassword string) error {
	html := `<p>Welcome to the Baton Rouge GA member site.</p>
<p>Your account has been created and approved. You can log in and fill out
your directory profile whenever you are ready.</p>`
	text := "Welcome to the Baton Rouge GA member site. Your account has been created and approved."

	if tempPassword != "" {
		html += fmt.Sprintf(`<p>Your temporary password is: <strong>%s</strong></p>
<p>Please change it after your first login.</p>`, tempPassword)
		text += fmt.Sprintf(" Your temporary password is: %s — please change it after your first login.", tempPassword)
	}

	_, err := s.Send(ctx, to, "Welcome to BRGA", html, text)
	return err
}

// SendPasswordReset sends the reset link for a requested password reset
func (s *EmailService) SendPasswordReset(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	html := fmt.Sprintf(`<p>A password reset was requested for your account.</p>
<p><a href="%s">Reset your password</a> (the link expires in one hour).</p>
<p>If you did not request this, you can ignore this email.</p>`, link)
	text := fmt.Sprintf("Reset your password: %s (expires in one hour)", link)

	_, err := s.Send(ctx, to, "BRGA password reset", html, text)
	return err
}

// FanoutResult summarizes a best-effort bulk send. Partial failure is
// reported, never fatal.
type FanoutResult struct {
	Total  int      `json:"total"`
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// Fanout sends the same email to every recipient, one call per
// address, and reports per-recipient failures in the result.
func (s *EmailService) Fanout(ctx context.Context, recipients []string, subject, html, text string) *FanoutResult {
	result := &FanoutResult{Total: len(recipients)}

	for _, to := range recipients {
		if _, err := s.Send(ctx, to, subject, html, text); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", to, err))
			log.Printf("⚠️ Announcement send failed for %s: %v", to, err)
			continue
		}
		result.Sent++
	}

	return result
}

// SendSpeakerRequest notifies the chapter contact of a speaker request
func (s *EmailService) SendSpeakerRequest(ctx context.Context, contactEmail, requesterName, requesterEmail, details string) error {
	html := fmt.Sprintf(`<p>New speaker request from %s (%s):</p><p>%s</p>`,
		requesterName, requesterEmail, details)
	text := fmt.Sprintf("New speaker request from %s (%s): %s", requesterName, requesterEmail, details)

	_, err := s.Send(ctx, contactEmail, "Speaker request", html, text)
	return err
}
