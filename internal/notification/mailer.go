package notification

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

// Mailer delivers a plain text message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer returns an SMTP mailer when a host is configured, otherwise a
// mailer that only writes the message to the log.
func NewMailer(config utils.EmailConfig, log *zap.Logger) Mailer {
	if config.Host == "" {
		log.Info("SMTP host not set, confirmation mails will be logged only")
		return NewLogMailer(log)
	}
	return NewSMTPMailer(config, log)
}

type SMTPMailer struct {
	config utils.EmailConfig
	log    *zap.Logger
}

func NewSMTPMailer(config utils.EmailConfig, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		log:    log.With(zap.String("mailer", "smtp")),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))

	var auth smtp.Auth
	if m.config.User != "" {
		auth = smtp.PlainAuth("", m.config.User, m.config.Password, m.config.Host)
	}

	msg := buildMessage(m.config.From, to, subject, body)

	// smtp.SendMail has no context support
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.config.From, []string{to}, msg)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("send mail to %s: %w", to, ctx.Err())
	case err := <-done:
		if err != nil {
			m.log.Error("Failed to send mail", zap.Error(err), zap.String("to", to))
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
	}

	m.log.Info("Mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogMailer is used in development, where no SMTP server is available.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.With(zap.String("mailer", "log"))}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.log.Info("Mail",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
