package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const beaconTimeout = 2 * time.Second

// HTTPBeacon delivers telemetry batches over plain HTTP POST.
type HTTPBeacon struct {
	client *http.Client
}

func NewHTTPBeacon(client *http.Client) *HTTPBeacon {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPBeacon{client: client}
}

// Post sends the payload and reports delivery failure (network error or
// non-2xx status) so the caller can re-queue the batch.
func (b *HTTPBeacon) Post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telemetry request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("telemetry delivery failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("telemetry endpoint returned status %d", resp.StatusCode)
	}

	return nil
}

// PostBeacon is the page-hide style delivery: bounded by a short timeout,
// outcome ignored. Used for the final flush on shutdown.
func (b *HTTPBeacon) PostBeacon(url string, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), beaconTimeout)
	defer cancel()

	_ = b.Post(ctx, url, body)
}
