package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier POSTs the notification to the configured channel endpoint
// (the deployment's bridge to email/SMS). Any non-2xx response is a failure,
// which the processor turns into redelivery.
type WebhookNotifier struct {
	endpoint string
	client   *http.Client
}

// NewWebhookNotifier targets the given endpoint. A nil client gets a default
// with a request timeout, so a hung channel cannot stall a worker forever.
func NewWebhookNotifier(endpoint string, client *http.Client) *WebhookNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookNotifier{endpoint: endpoint, client: client}
}

type webhookPayload struct {
	Notification
	Subject string `json:"assunto"`
	Message string `json:"mensagem"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, notification Notification) error {
	payload, err := json.Marshal(webhookPayload{
		Notification: notification,
		Subject:      Subject(notification),
		Message:      Body(notification),
	})
	if err != nil {
		return fmt.Errorf("encode notification %s: %w", notification.TicketID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification %s: %w", notification.TicketID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("deliver notification %s: channel returned %d", notification.TicketID, resp.StatusCode)
	}
	return nil
}
