package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/comanda/backoffice/internal/domain"
)

// HTTPAnalyticsClient posts settlement events to the analytics endpoint.
type HTTPAnalyticsClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAnalyticsClient creates an analytics client for baseURL. An empty
// baseURL means analytics is disabled and a no-op client is returned.
func NewAnalyticsClient(baseURL string) domain.AnalyticsClient {
	if baseURL == "" {
		return NoopAnalyticsClient{}
	}
	return &HTTPAnalyticsClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendEvent delivers one settlement event.
func (c *HTTPAnalyticsClient) SendEvent(ctx context.Context, ev domain.SettlementEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("analytics client: failed to marshal event: %w", err)
	}

	url := c.baseURL + "/api/events/settlement"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("analytics client: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("analytics client: failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return nil

	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		seconds, _ := strconv.Atoi(retryAfter)
		return NewRateLimitError(time.Duration(seconds) * time.Second)

	default:
		return fmt.Errorf("analytics client: unexpected status code: %d", resp.StatusCode)
	}
}

// NoopAnalyticsClient discards events when no endpoint is configured.
type NoopAnalyticsClient struct{}

// SendEvent does nothing.
func (NoopAnalyticsClient) SendEvent(context.Context, domain.SettlementEvent) error {
	return nil
}
