package mail

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	TemplateInvite        = "invite"
	TemplatePasswordReset = "password_reset"
	TemplateEmailChange   = "email_change"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[string]string{
	TemplateInvite:        "Your invite to Survive Anything",
	TemplatePasswordReset: "Password reset",
	TemplateEmailChange:   "Confirm your new email address",
}

// Sender delivers a named template to one recipient.
type Sender interface {
	Send(ctx context.Context, to, templateName string, data any) error
}

func parseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(subjects))
	for name := range subjects {
		t, err := template.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = t
	}
	return templates, nil
}

func render(templates map[string]*template.Template, name string, data any) (string, string, error) {
	tpl, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subjects[name], buf.String(), nil
}

// BrevoSender sends transactional emails via Brevo HTTP API v3
type BrevoSender struct {
	apiKey      string
	senderEmail string
	senderName  string
	endpoint    string
	client      *http.Client
	logger      *zap.SugaredLogger
	templates   map[string]*template.Template
}

func NewBrevoSender(apiKey, senderEmail, senderName string, logger *zap.SugaredLogger) (*BrevoSender, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &BrevoSender{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		endpoint:    "https://api.brevo.com/v3/smtp/email",
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
		templates:   templates,
	}, nil
}

func (b *BrevoSender) Send(ctx context.Context, to, templateName string, data any) error {
	subject, html, err := render(b.templates, templateName, data)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"sender":      map[string]string{"name": b.senderName, "email": b.senderEmail},
		"to":          []map[string]string{{"email": to}},
		"subject":     subject,
		"htmlContent": html,
	}
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		b.logger.Infow("email sent", "to", to, "template", templateName)
		return nil
	}
	b.logger.Warnw("brevo send failed", "status", resp.StatusCode, "template", templateName)
	return fmt.Errorf("brevo send failed status=%d", resp.StatusCode)
}

// LogSender renders the template and logs it instead of sending. Used when no mail provider is configured.
type LogSender struct {
	logger    *zap.SugaredLogger
	templates map[string]*template.Template
}

func NewLogSender(logger *zap.SugaredLogger) (*LogSender, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &LogSender{logger: logger, templates: templates}, nil
}

func (l *LogSender) Send(_ context.Context, to, templateName string, data any) error {
	subject, _, err := render(l.templates, templateName, data)
	if err != nil {
		return err
	}
	l.logger.Infow("email not sent, no provider configured", "to", to, "subject", subject, "data", data)
	return nil
}
