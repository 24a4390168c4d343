package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"sync"

	"github.com/wolfsbane9513/influencer-ai/config"
)

// EmailService delivers contract summaries and campaign reports to clients
// and creators
type EmailService interface {
	SendEmail(email, subject, message string) error
}

// EmailServiceImpl implements EmailService on top of an EmailProvider
type EmailServiceImpl struct {
	provider EmailProvider
}

// EmailProvider interface for email sending
type EmailProvider interface {
	SendEmail(email, subject, message string) error
}

// NewEmailService creates a new email service
func NewEmailService(provider EmailProvider) EmailService {
	return &EmailServiceImpl{provider: provider}
}

// NewEmailServiceFromConfig wires the SMTP provider when a host is configured
// and the logging mock otherwise.
func NewEmailServiceFromConfig(cfg *config.EmailConfig) EmailService {
	if cfg.Host == "" {
		return NewEmailService(NewMockEmailProvider())
	}
	return NewEmailService(NewSMTPEmailProvider(cfg))
}

// SendEmail sends an email to the specified address
func (s *EmailServiceImpl) SendEmail(email, subject, message string) error {
	if s.provider == nil {
		return fmt.Errorf("email provider not configured")
	}

	if len(email) == 0 || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %s", email)
	}

	return s.provider.SendEmail(email, subject, message)
}

// MockEmailProvider logs outgoing mail and records it for assertions
type MockEmailProvider struct {
	mu         sync.Mutex
	SentEmails []SentEmail
}

// SentEmail records a delivered mock email
type SentEmail struct {
	To      string
	Subject string
	Message string
}

func NewMockEmailProvider() *MockEmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(email, subject, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.SentEmails = append(p.SentEmails, SentEmail{To: email, Subject: subject, Message: message})
	log.Printf("Email sent to %s [%s]", email, subject)
	return nil
}

// GetSentEmails returns a copy of the recorded emails
func (p *MockEmailProvider) GetSentEmails() []SentEmail {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]SentEmail, len(p.SentEmails))
	copy(out, p.SentEmails)
	return out
}

// ClearSentEmails clears the recorded emails
func (p *MockEmailProvider) ClearSentEmails() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SentEmails = nil
}

// SMTPEmailProvider sends mail through a configured SMTP relay
type SMTPEmailProvider struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	fromName  string
}

func NewSMTPEmailProvider(cfg *config.EmailConfig) EmailProvider {
	return &SMTPEmailProvider{
		host:      cfg.Host,
		port:      cfg.Port,
		username:  cfg.Username,
		password:  cfg.Password,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

func (p *SMTPEmailProvider) SendEmail(email, subject, message string) error {
	addr := fmt.Sprintf("%s:%d", p.host, p.port)

	from := p.fromEmail
	if p.fromName != "" {
		from = fmt.Sprintf("%s <%s>", p.fromName, p.fromEmail)
	}

	body := strings.Join([]string{
		"From: " + from,
		"To: " + email,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		message,
	}, "\r\n")

	var auth smtp.Auth
	if p.username != "" {
		auth = smtp.PlainAuth("", p.username, p.password, p.host)
	}

	if err := smtp.SendMail(addr, auth, p.fromEmail, []string{email}, []byte(body)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", email, err)
	}

	return nil
}
