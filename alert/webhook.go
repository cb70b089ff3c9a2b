package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"recipecapture"
)

// Webhook posts alerts to a Slack-style incoming webhook, mirroring what the user saw on screen.
type Webhook struct {
	webhookURL string
	httpClient recipecapture.HTTPClient
}

var _ recipecapture.Alerter = (*Webhook)(nil)

func NewWebhook(webhookURL string, httpClient recipecapture.HTTPClient) *Webhook {
	return &Webhook{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (w *Webhook) Alert(ctx context.Context, title string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"text": fmt.Sprintf("*%s*\n%s", title, message),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post alert: %s", resp.Status)
	}

	return nil
}
