// Package webhook delivers job outcomes to an external notification service
// over HTTP. Delivery is advisory: transient failures are retried with capped
// exponential backoff and final failures are logged, never surfaced.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"framex/internal/infrastructure/logger"
	"framex/internal/port"
)

type payload struct {
	ID           string `json:"id"`
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	VideoURL     string `json:"video_url,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type Notifier struct {
	baseURL string
	client  *http.Client
	retries int
	backoff *Backoff
}

func NewNotifier(baseURL string, timeout time.Duration, retries int) *Notifier {
	return &Notifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		retries: retries,
		backoff: NewBackoff(1*time.Second, 4*time.Second, 2.0),
	}
}

// Notify posts the outcome to <base>/notify, retrying up to the configured
// number of times. It never returns an error: the job record is the source of
// truth and a lost notification must not disturb the caller.
func (n *Notifier) Notify(ctx context.Context, notification port.Notification) {
	if n.baseURL == "" {
		logger.Warn.Printf("notifier disabled, dropping notification for job %s", notification.JobID)
		return
	}

	body, err := json.Marshal(payload{
		ID:           notification.UserID,
		JobID:        notification.JobID,
		Status:       notification.Status,
		VideoURL:     notification.VideoURL,
		ErrorMessage: notification.ErrorMessage,
	})
	if err != nil {
		logger.Error.Printf("marshal notification for job %s: %v", notification.JobID, err)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= n.retries+1; attempt++ {
		lastErr = n.post(ctx, body)
		if lastErr == nil {
			return
		}

		if attempt <= n.retries {
			select {
			case <-time.After(n.backoff.Duration(attempt)):
			case <-ctx.Done():
				logger.Warn.Printf("notification for job %s abandoned: %v", notification.JobID, ctx.Err())
				return
			}
		}
	}

	logger.Warn.Printf("notification for job %s failed after %d attempts: %v", notification.JobID, n.retries+1, lastErr)
}

func (n *Notifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/notify", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify returned status %d", resp.StatusCode)
	}
	return nil
}

var _ port.Notifier = (*Notifier)(nil)
