package channel

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridHost = "https://api.sendgrid.com"

// sendGridEmail submits through the SendGrid v3 mail/send API. The host is
// injectable for tests.
type sendGridEmail struct {
	apiKey string
	host   string
}

func newSendGridEmail(apiKey, host string) *sendGridEmail {
	return &sendGridEmail{apiKey: apiKey, host: host}
}

func (s *sendGridEmail) Send(ctx context.Context, msg Email) error {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(msg.FromName, msg.FromAddress))
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", msg.To))
	m.AddPersonalizations(p)

	m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	if msg.ReplyTo != "" {
		m.SetReplyTo(sgmail.NewEmail("", msg.ReplyTo))
	}

	req := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", msg.To, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected %s: status %d body=%q", msg.To, resp.StatusCode, resp.Body)
	}
	return nil
}
