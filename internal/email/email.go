// Package email provides email sending functionality
package email

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/Marga-Ghale/backpackers-backend/internal/logger"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// Dialer is the part of gomail.Dialer the service uses.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Service handles email sending
type Service struct {
	config    *Config
	dialer    Dialer
	templates map[string]*template.Template
}

// NewService creates a new email service
func NewService(config *Config) *Service {
	return NewServiceWithDialer(config, gomail.NewDialer(config.Host, config.Port, config.User, config.Password))
}

func NewServiceWithDialer(config *Config, dialer Dialer) *Service {
	s := &Service{
		config:    config,
		dialer:    dialer,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// JoinDecisionEmailData holds data for join approval and rejection emails
type JoinDecisionEmailData struct {
	Name        string
	GroupName   string
	Destination string
	Approved    bool
	GroupURL    string
}

func (s *Service) IsConfigured() bool {
	return s != nil && s.config != nil && s.config.Host != ""
}

func (s *Service) loadTemplates() {
	s.templates["join_decision"] = template.Must(template.New("join_decision").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: {{if .Approved}}#10b981{{else}}#6b7280{{end}}; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #f97316; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>{{if .Approved}}You're in!{{else}}Join request update{{end}}</h2>
    </div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        {{if .Approved}}
        <p>Your request to join <strong>{{.GroupName}}</strong> ({{.Destination}}) was approved. Pack your bags.</p>
        {{else}}
        <p>Your request to join <strong>{{.GroupName}}</strong> ({{.Destination}}) was not accepted this time.</p>
        {{end}}
        <a href="{{.GroupURL}}" class="btn">View group</a>
    </div>
    <div class="footer">
        Backpackers
    </div>
</div>
</body>
</html>
`))
}

// SendJoinDecision mails the requester the outcome of their join request.
func (s *Service) SendJoinDecision(to string, data JoinDecisionEmailData) error {
	subject := fmt.Sprintf("Your request to join %s was declined", data.GroupName)
	if data.Approved {
		subject = fmt.Sprintf("Welcome to %s", data.GroupName)
	}
	return s.SendWithTemplate([]string{to}, subject, "join_decision", data)
}

// SendWithTemplate renders a named template as the HTML body.
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template %s not found", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.Send(&Email{
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
	})
}

// Send sends an email
func (s *Service) Send(email *Email) error {
	if !s.IsConfigured() {
		logger.Component("email").Debug("email not configured, skipping send")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.config.From, s.config.FromName)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)
	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
