package channel

import (
	"github.com/syedrazahussain/celebratemate/internal/config"
)

// NewEmailSender resolves the email backend once at startup. There is no
// per-send backend branching: the configured variant becomes the one
// concrete adapter for the life of the process.
func NewEmailSender(cfg config.EmailConfig) EmailSender {
	switch cfg.Backend {
	case config.EmailSendGrid:
		return newSendGridEmail(cfg.SendGridKey, sendGridHost)
	case config.EmailSMTP:
		return newSMTPEmail(cfg)
	default:
		return disabledEmail{}
	}
}
