// Package mailer sends outbound email through a narrow contract so the
// rest of the application never touches SMTP directly.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/graylock-sec/graylock/internal/config"
)

// Mailer delivers a single plain-text message
type Mailer interface {
	Send(to, subject, body string) error
}

// New returns an SMTP mailer when a host is configured, otherwise a
// log-only mailer suitable for development.
func New(cfg config.SMTPConfig, log zerolog.Logger) Mailer {
	if cfg.Host == "" {
		return &logMailer{log: log}
	}
	return &smtpMailer{cfg: cfg, log: log}
}

type smtpMailer struct {
	cfg config.SMTPConfig
	log zerolog.Logger
}

func (m *smtpMailer) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	m.log.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

// logMailer logs instead of sending; used when SMTP is not configured
type logMailer struct {
	log zerolog.Logger
}

func (m *logMailer) Send(to, subject, body string) error {
	m.log.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(body)).
		Msg("SMTP not configured - email logged instead of sent")
	return nil
}
