// Package oauth resumes account linkage after the browser returns from an
// external authorization page: it exchanges the authorization code through a
// trusted intermediary endpoint and finalizes the linkage record.
package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
)

// ExchangeRequest is the payload sent to the trusted exchange endpoint.
type ExchangeRequest struct {
	Platform  models.Platform `json:"platform"`
	UserID    string          `json:"userId,omitempty"`
	Username  string          `json:"username"`
	Code      string          `json:"code"`
	State     string          `json:"state,omitempty"`
	Action    string          `json:"action"`
	Timestamp string          `json:"timestamp"`
}

// ExchangeResponse carries the account details the intermediary reports
// after a successful code exchange.
type ExchangeResponse struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// ExchangeError is returned for a non-2xx exchange response; it preserves
// the HTTP status and body for the terminal error message.
type ExchangeError struct {
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("exchange endpoint returned %d: %s", e.StatusCode, e.Body)
}

// Exchanger swaps an authorization code for account details.
type Exchanger interface {
	Exchange(ctx context.Context, req ExchangeRequest) (ExchangeResponse, error)
}

// Client is the HTTP implementation of Exchanger.
type Client struct {
	endpoint string
	client   *http.Client
	logger   logger.Logger
}

// NewClient creates a new exchange client
func NewClient(endpoint string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   log,
	}
}

// Exchange posts the authorization code to the trusted endpoint and decodes
// the reported account details. A non-2xx response yields an *ExchangeError.
func (c *Client) Exchange(ctx context.Context, req ExchangeRequest) (ExchangeResponse, error) {
	if req.Action == "" {
		req.Action = "oauth_callback"
	}
	if req.Timestamp == "" {
		req.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return ExchangeResponse{}, fmt.Errorf("marshal exchange payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return ExchangeResponse{}, fmt.Errorf("create exchange request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return ExchangeResponse{}, fmt.Errorf("exchange request: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return ExchangeResponse{}, fmt.Errorf("read exchange response: %w", readErr)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("code exchange failed",
			logger.String("platform", req.Platform.String()),
			logger.Int("status_code", resp.StatusCode),
		)
		return ExchangeResponse{}, &ExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded ExchangeResponse
	if len(body) > 0 {
		// A non-JSON 2xx body is tolerated; the pending handle covers naming
		if decodeErr := json.Unmarshal(body, &decoded); decodeErr != nil {
			c.logger.Debug("exchange response was not JSON",
				logger.String("platform", req.Platform.String()),
				logger.Error(decodeErr),
			)
		}
	}

	return decoded, nil
}
