// Package audit sends best-effort webhook notifications about linkage
// activity. Deliveries run detached from the caller: a failed or slow
// webhook is logged and otherwise invisible to the flow that raised it.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
)

// Audit actions emitted by the link flow and OAuth callback.
const (
	ActionSearchUser     = "search_user"
	ActionVerifyUser     = "verify_user"
	ActionConnectAttempt = "connect_attempt"
	ActionOAuthCallback  = "oauth_callback"
)

// Event is the JSON payload posted to the audit webhook.
type Event struct {
	Platform    models.Platform `json:"platform"`
	UserID      string          `json:"userId,omitempty"`
	Username    string          `json:"username"`
	DisplayName string          `json:"displayName,omitempty"`
	ProfileURL  string          `json:"profileUrl,omitempty"`
	Password    string          `json:"password,omitempty"`
	Code        string          `json:"code,omitempty"`
	State       string          `json:"state,omitempty"`
	Action      string          `json:"action"`
	Timestamp   string          `json:"timestamp"`
}

// Notifier posts audit events to a webhook without blocking callers.
type Notifier struct {
	webhookURL string
	client     *http.Client
	timeout    time.Duration
	logger     logger.Logger
}

// NewNotifier creates a new audit notifier. An empty webhookURL disables
// delivery entirely.
func NewNotifier(webhookURL string, timeout time.Duration, log logger.Logger) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
		timeout:    timeout,
		logger:     log,
	}
}

// Notify dispatches the event in a detached goroutine and returns
// immediately. The event's timestamp is stamped here if unset.
func (n *Notifier) Notify(event Event) {
	if n.webhookURL == "" {
		return
	}
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	go n.deliver(event)
}

func (n *Notifier) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("failed to marshal audit event",
			logger.String("action", event.Action),
			logger.Error(err),
		)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		n.logger.Warn("failed to create audit request",
			logger.String("action", event.Action),
			logger.Error(err),
		)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("audit webhook delivery failed",
			logger.String("action", event.Action),
			logger.String("platform", event.Platform.String()),
			logger.Error(err),
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		n.logger.Warn("audit webhook returned error status",
			logger.String("action", event.Action),
			logger.String("platform", event.Platform.String()),
			logger.Int("status_code", resp.StatusCode),
		)
	}
}
