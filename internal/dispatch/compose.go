package dispatch

import (
	"bytes"
	"fmt"
	"html/template"
)

func smsBody(message, senderName string) string {
	return fmt.Sprintf("%s\n\n- %s", message, senderName)
}

func emailSubject(eventType string) string {
	if eventType == "" {
		eventType = "Greetings"
	}
	return "A Thoughtful Wish Just for You - " + eventType
}

var emailTmpl = template.Must(template.New("wish").Parse(`
<div style="font-family: 'Segoe UI', sans-serif; background-color: #fafafa; padding: 30px; border-radius: 12px;">
  <div style="text-align: center; margin-bottom: 20px;">
    <h2 style="color: #FF6347; font-weight: 600;">A Special Wish for You</h2>
  </div>
  <div style="background-color: #ffffff; padding: 20px; border-radius: 10px;">
    <p style="font-size: 16px; color: #333;">Hey there,</p>
    <p style="font-size: 16px; color: #555; line-height: 1.6;">{{.Message}}</p>
    <br />
    <p style="font-size: 16px; color: #555;">With warm wishes,</p>
    <p style="font-size: 16px; font-weight: bold; color: #333;">{{.SenderName}}</p>
    <p style="font-size: 14px; color: #777;">Reach me at <a href="mailto:{{.SenderEmail}}" style="color: #FF6347;">{{.SenderEmail}}</a></p>
  </div>
  <div style="text-align: center; margin-top: 30px;">
    <p style="font-size: 12px; color: #999;">Sent by your thoughtful friend, {{.SenderName}}.</p>
  </div>
</div>
`))

type emailData struct {
	Message     string
	SenderName  string
	SenderEmail string
}

func renderEmailHTML(data emailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render wish email: %w", err)
	}
	return buf.String(), nil
}
