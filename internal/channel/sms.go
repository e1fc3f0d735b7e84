package channel

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/syedrazahussain/celebratemate/internal/config"
)

// Twilio error code for a recipient number that has not been verified on a
// trial account. Worth calling out separately in logs.
const twilioCodeUnverifiedNumber = 21608

// messageCreator is the slice of the Twilio API the adapter uses.
type messageCreator interface {
	CreateMessageWithCtx(ctx context.Context, params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type twilioSMS struct {
	api  messageCreator
	from string
}

// NewSMSSender resolves the SMS channel once at startup: a Twilio-backed
// adapter when credentials are configured, otherwise a disabled adapter
// whose sends fail with ErrChannelUnavailable.
func NewSMSSender(cfg config.SMSConfig) SMSSender {
	if !cfg.Enabled {
		return disabledSMS{}
	}

	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &twilioSMS{
		api:  rc.Api,
		from: cfg.FromNumber,
	}
}

func (s *twilioSMS) Send(ctx context.Context, to, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	_, err := s.api.CreateMessageWithCtx(ctx, params)
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			if restErr.Code == twilioCodeUnverifiedNumber {
				return fmt.Errorf("twilio rejected %s: number unverified (code %d): %w", to, restErr.Code, err)
			}
			return fmt.Errorf("twilio rejected %s (code %d): %w", to, restErr.Code, err)
		}
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	return nil
}
