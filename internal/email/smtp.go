package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer sends mail through a plain SMTP relay with AUTH PLAIN.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// NewSMTPMailer constructs an SMTP-backed mailer.
func NewSMTPMailer(host, port, username, password, from string) (*SMTPMailer, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("mail from address is required")
	}
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient is required")
	}

	var body strings.Builder
	body.WriteString("From: " + m.From + "\r\n")
	body.WriteString("To: " + msg.To + "\r\n")
	body.WriteString("Subject: " + msg.Subject + "\r\n")
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	body.WriteString("\r\n")
	body.WriteString(msg.HTML)

	addr := m.Host + ":" + m.Port
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	if err := smtp.SendMail(addr, auth, m.From, []string{msg.To}, []byte(body.String())); err != nil {
		return fmt.Errorf("smtp send to=%s: %w", msg.To, err)
	}
	return nil
}

var _ Mailer = (*SMTPMailer)(nil)
