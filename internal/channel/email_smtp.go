package channel

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/syedrazahussain/celebratemate/internal/config"
)

// smtpEmail relays through a plain SMTP endpoint, the fallback when no
// transactional API key is configured. Defaults target implicit TLS on 465.
type smtpEmail struct {
	cfg config.EmailConfig
}

func newSMTPEmail(cfg config.EmailConfig) *smtpEmail {
	return &smtpEmail{cfg: cfg}
}

func (s *smtpEmail) Send(ctx context.Context, msg Email) error {
	m := gomail.NewMsg()
	if err := m.FromFormat(msg.FromName, msg.FromAddress); err != nil {
		return fmt.Errorf("smtp from %q: %w", msg.FromAddress, err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("smtp to %q: %w", msg.To, err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return fmt.Errorf("smtp reply-to %q: %w", msg.ReplyTo, err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.SMTPUser),
		gomail.WithPassword(s.cfg.SMTPPass),
		gomail.WithTimeout(10 * time.Second),
	}
	if s.cfg.SMTPPort == 465 {
		opts = append(opts, gomail.WithSSL())
	}

	client, err := gomail.NewClient(s.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}
