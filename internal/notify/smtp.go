// AngelaMos | 2026
// smtp.go

package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/angelamos/revue/internal/config"
)

// SMTPSender delivers plain-text mail over SMTP. Port 465 uses implicit
// TLS, 587 uses STARTTLS; other port/TLS combinations are rejected rather
// than silently downgraded.
type SMTPSender struct {
	cfg config.MailConfig
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(
	ctx context.Context,
	recipient, subject, body string,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromAddress)
	e.To = []string{recipient}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}

	if s.cfg.UseTLS {
		switch s.cfg.Port {
		case 465:
			return e.SendWithTLS(addr, auth, tlsConfig)
		case 587:
			return e.SendWithStartTLS(addr, auth, tlsConfig)
		default:
			return fmt.Errorf(
				"unsupported port/TLS combination: port %d with TLS",
				s.cfg.Port,
			)
		}
	}

	if s.cfg.Port == 25 {
		return e.Send(addr, auth)
	}

	return fmt.Errorf(
		"unsupported port/TLS combination: port %d without TLS",
		s.cfg.Port,
	)
}
