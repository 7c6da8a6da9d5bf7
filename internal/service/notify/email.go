package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailNotifier mails support desk notifications through SendGrid.
type EmailNotifier struct {
	client mailSender
	from   *mail.Email
	to     *mail.Email
}

// NewEmailNotifier builds a SendGrid-backed notifier.
func NewEmailNotifier(apiKey, from, to string) *EmailNotifier {
	return &EmailNotifier{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Farm Diary", from),
		to:     mail.NewEmail("Support Desk", to),
	}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) Notify(ctx context.Context, msg Message) error {
	message := mail.NewSingleEmail(n.from, msg.Subject, n.to, msg.Body, "")
	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid error: status=%d, body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}
