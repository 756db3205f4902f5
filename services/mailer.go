package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"trend-watch/config"
	"trend-watch/models"
	"trend-watch/observability"
)

// SMTPMailer delivers alerts over plain SMTP
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string

	// sendMail is swappable in tests
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a mailer from SMTP configuration
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		sendMail: smtp.SendMail,
	}
}

// Send delivers an alert to its recipient
func (m *SMTPMailer) Send(ctx context.Context, alert *models.Alert) error {
	metrics := observability.GetMetrics()
	started := time.Now()

	_, err := WithCircuitBreaker(ctx, BreakerSMTP, func() (struct{}, error) {
		msg := m.buildMessage(alert)

		var auth smtp.Auth
		if m.username != "" {
			auth = smtp.PlainAuth("", m.username, m.password, m.host)
		}
		addr := fmt.Sprintf("%s:%d", m.host, m.port)

		if err := m.sendMail(addr, auth, m.from, []string{alert.Recipient}, msg); err != nil {
			return struct{}{}, fmt.Errorf("failed to send alert mail: %w", err)
		}
		return struct{}{}, nil
	})

	if err != nil {
		metrics.RecordAlertDelivery("failure", time.Since(started))
		return err
	}

	metrics.RecordAlertDelivery("success", time.Since(started))
	return nil
}

func (m *SMTPMailer) buildMessage(alert *models.Alert) []byte {
	headers := map[string]string{
		"From":         m.from,
		"To":           alert.Recipient,
		"Subject":      alert.Subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
	}

	var msg strings.Builder
	for k, v := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", k, v)
	}
	msg.WriteString("\r\n")
	msg.WriteString(alert.Body)

	return []byte(msg.String())
}
