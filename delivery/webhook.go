package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"

	"github.com/kova98/notegrep/models"
)

// Webhook posts the full run result to the configured endpoint as a single
// request. There is no retry at this layer; a failed delivery is terminal
// and surfaced to the caller of the run.
type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewWebhook(url string, client *http.Client, logger *slog.Logger) *Webhook {
	return &Webhook{url: url, client: client, logger: logger}
}

func (w *Webhook) Deliver(ctx context.Context, result models.RunResult) error {
	if w.url == "" {
		return errors.New("webhook URL is not configured")
	}

	body, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "encode run result")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	w.logger.Info("sending results to webhook", "url", w.url)
	resp, err := w.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "webhook call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return errors.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	w.logger.Info("webhook call successful", "status", resp.StatusCode)
	return nil
}
