package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/vicu/vicu-api/internal/markdown"
)

type EmailService struct {
	client    *resend.Client
	parser    *markdown.Parser
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		parser:    markdown.NewParser(),
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendAchievementEmail(ctx context.Context, email, name, goalTitle string) error {
	doc, err := renderEmail(s.parser, "achievement", emailData{
		Name:      name,
		GoalTitle: goalTitle,
		AppURL:    s.appURL,
		AppName:   s.appName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, "achievement", email, doc)
}

// SendReminderEmail is the reminder channel for users without WhatsApp.
func (s *EmailService) SendReminderEmail(ctx context.Context, email, name, goalTitle, stepTitle, goalURL string) error {
	doc, err := renderEmail(s.parser, "reminder", emailData{
		Name:      name,
		GoalTitle: goalTitle,
		StepTitle: stepTitle,
		GoalURL:   goalURL,
		AppName:   s.appName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, "reminder", email, doc)
}

func (s *EmailService) send(ctx context.Context, kind, to string, doc *markdown.Document) error {
	subject := doc.Get("subject")
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "recipient", to, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    doc.HTML,
		Text:    doc.Text,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", kind, "recipient", to)
	}
	return err
}
