package notify

import (
	"context"
	"fmt"
	"time"

	client "github.com/mamadbah2/farmdiary/pkg/clients/whatsapp"
)

// WhatsAppNotifier pushes notifications to one WhatsApp recipient.
type WhatsAppNotifier struct {
	client    client.Client
	recipient string
}

// NewWhatsAppNotifier wires the WhatsApp Cloud API client to a recipient.
func NewWhatsAppNotifier(c client.Client, recipient string) *WhatsAppNotifier {
	return &WhatsAppNotifier{client: c, recipient: recipient}
}

func (n *WhatsAppNotifier) Name() string { return "whatsapp" }

func (n *WhatsAppNotifier) Notify(ctx context.Context, msg Message) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	body := msg.Body
	if msg.Subject != "" {
		body = fmt.Sprintf("%s\n%s", msg.Subject, msg.Body)
	}

	_, err := n.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   n.recipient,
		Body: body,
	})
	return err
}
