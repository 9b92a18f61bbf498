package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/i474232898/cwa-weather-push/internal/weather"
)

// Webhook posts messages to a Discord-compatible webhook URL.
type Webhook struct {
	client *http.Client
	url    string
}

// NewWebhook creates a publisher; a nil client uses http.DefaultClient.
func NewWebhook(client *http.Client, url string) *Webhook {
	return &Webhook{client: client, url: url}
}

// Publish sends msg as `{"content": ..., "embeds": [...]}`. It fails with
// weather.ErrConfig before any network call when the URL is empty and with
// weather.ErrDelivery on a transport error or non-2xx status.
func (w *Webhook) Publish(ctx context.Context, msg weather.Message) error {
	if w.url == "" {
		return fmt.Errorf("%w: missing webhook URL", weather.ErrConfig)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: encode payload: %w", weather.ErrDelivery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", weather.ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", weather.ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: webhook returned %d: %s", weather.ErrDelivery, resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
