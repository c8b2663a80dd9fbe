package notifications

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"text/template"

	"traveldesk/internal/config"
	"traveldesk/internal/middleware"
	"traveldesk/internal/models"
)

// Mail is a rendered message ready for transport.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a rendered message. Implementations must be safe for
// concurrent use by the queue worker.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

var bodyTemplate = template.Must(template.New("status").Parse(`Hello {{.OwnerName}},

Your travel request #{{.TravelRequestID}} to {{.Destination}} has been {{.NewStatusLabel}}.

  Requester:  {{.RequesterName}}
  Departure:  {{.DepartureDate}}
  Return:     {{.ReturnDate}}
  Previous:   {{.PreviousStatusLabel}}
  Current:    {{.NewStatusLabel}}

This is an automated message from Traveldesk.
`))

// RenderStatusMail renders the email for a status-change job.
func RenderStatusMail(job StatusChangedJob) (Mail, error) {
	var subject string
	switch job.NewStatus {
	case models.StatusApproved:
		subject = "Travel Request Approved"
	case models.StatusCancelled:
		subject = "Travel Request Cancelled"
	default:
		subject = "Travel Request Update"
	}

	data := struct {
		StatusChangedJob
		PreviousStatusLabel string
		NewStatusLabel      string
	}{
		StatusChangedJob:    job,
		PreviousStatusLabel: models.StatusLabel(job.PreviousStatus),
		NewStatusLabel:      models.StatusLabel(job.NewStatus),
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return Mail{}, fmt.Errorf("render status mail: %w", err)
	}

	return Mail{To: job.OwnerEmail, Subject: subject, Body: buf.String()}, nil
}

// smtpMailer delivers mail over plain SMTP.
type smtpMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewMailer builds a Mailer from config. When SMTP_HOST is unset (the
// development default) it returns a logging mailer instead of a real one.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &logMailer{}
	}
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &smtpMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		auth: auth,
		from: cfg.MailFrom,
	}
}

func (m *smtpMailer) Send(_ context.Context, mail Mail) error {
	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + mail.To + "\r\n" +
		"Subject: " + mail.Subject + "\r\n" +
		"\r\n" +
		mail.Body)
	return smtp.SendMail(m.addr, m.auth, m.from, []string{mail.To}, msg)
}

// logMailer writes the message to the structured log in place of delivery.
type logMailer struct{}

func (m *logMailer) Send(ctx context.Context, mail Mail) error {
	middleware.Logger.InfoContext(ctx, "mail delivery skipped (SMTP not configured)",
		slog.String("to", mail.To),
		slog.String("subject", mail.Subject),
	)
	return nil
}
