package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
)

const defaultFacebookAPIBase = "https://graph.facebook.com/v18.0"

// FacebookAdapter posts to a page's feed via the Graph API. The page id is
// both the path segment and the bearer of the access token, which travels in
// the request body per the Graph contract.
type FacebookAdapter struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

type graphErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type graphPostResponse struct {
	ID string `json:"id"`
}

// NewFacebookAdapter creates a new Facebook adapter. An empty baseURL
// selects the production Graph API.
func NewFacebookAdapter(baseURL string, client *http.Client, log logger.Logger) *FacebookAdapter {
	if baseURL == "" {
		baseURL = defaultFacebookAPIBase
	}
	return &FacebookAdapter{baseURL: baseURL, client: client, logger: log}
}

// Post publishes a message on the page identified by accountRef.
func (a *FacebookAdapter) Post(ctx context.Context, token string, content models.PostContent, accountRef string) models.PostResult {
	body := map[string]any{
		"message":      content.Text,
		"access_token": token,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return failure("Failed to post to Facebook")
	}

	endpoint := fmt.Sprintf("%s/%s/feed", a.baseURL, url.PathEscape(accountRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return failure("Failed to post to Facebook")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warn("facebook post request failed", logger.Error(err))
		return failure("Failed to post to Facebook")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr graphErrorResponse
		msg := "Failed to post to Facebook"
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		a.logger.Warn("facebook post returned error status",
			logger.Int("status_code", resp.StatusCode),
			logger.String("detail", msg),
		)
		return failure(msg)
	}

	var post graphPostResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&post); decodeErr != nil {
		return failure("Failed to post to Facebook")
	}

	return models.PostResult{
		Success: true,
		PostID:  post.ID,
	}
}
