package smtp

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/Santiago1809/auth-ms/internal/config"
	"github.com/Santiago1809/auth-ms/internal/domain"
)

// Mailer sends HTML emails.
type Mailer interface {
	SendEmail(to, subject, html string) error
}

type mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

// SendEmail delivers a single HTML message. Failures wrap domain.ErrDelivery:
// the caller's record was already persisted, so delivery errors are logged
// and the request proceeds (the user can ask for a resend).
func (m *mailer) SendEmail(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email to %s: %v: %w", to, err, domain.ErrDelivery)
	}
	return nil
}
