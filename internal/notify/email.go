package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/reservaid/reservaid/internal/common/config"
)

// EmailSender sends plain-text confirmation mails over SMTP.
type EmailSender struct {
	cfg config.SMTPConfig
}

func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

// Send delivers one mail. Disabled config is a no-op, not an error, so dev
// environments run without a mail server.
func (e *EmailSender) Send(to string, msg Message) error {
	if e == nil || !e.cfg.Enabled {
		return nil
	}
	to = strings.TrimSpace(to)
	if to == "" || !strings.Contains(to, "@") {
		return fmt.Errorf("invalid recipient address")
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		e.cfg.From, to, msg.Title, msg.Body)

	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	var auth smtp.Auth
	if e.cfg.User != "" {
		auth = smtp.PlainAuth("", e.cfg.User, e.cfg.Password, e.cfg.Host)
	}
	return smtp.SendMail(addr, auth, e.cfg.From, []string{to}, []byte(body))
}
