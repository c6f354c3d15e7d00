package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
)

const defaultTwitterAPIBase = "https://api.twitter.com"

// TwitterAdapter posts tweets via the Twitter v2 API.
type TwitterAdapter struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type twitterErrorResponse struct {
	Detail string `json:"detail"`
}

// NewTwitterAdapter creates a new Twitter adapter. An empty baseURL selects
// the production API.
func NewTwitterAdapter(baseURL string, client *http.Client, log logger.Logger) *TwitterAdapter {
	if baseURL == "" {
		baseURL = defaultTwitterAPIBase
	}
	return &TwitterAdapter{baseURL: baseURL, client: client, logger: log}
}

// Post publishes a text tweet. accountRef is unused; the token identifies
// the account.
func (a *TwitterAdapter) Post(ctx context.Context, token string, content models.PostContent, _ string) models.PostResult {
	payload, err := json.Marshal(tweetRequest{Text: content.Text})
	if err != nil {
		return failure("Failed to post to Twitter")
	}

	endpoint := a.baseURL + "/2/tweets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return failure("Failed to post to Twitter")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warn("twitter post request failed", logger.Error(err))
		return failure("Failed to post to Twitter")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr twitterErrorResponse
		msg := "Failed to post to Twitter"
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Detail != "" {
			msg = apiErr.Detail
		}
		a.logger.Warn("twitter post returned error status",
			logger.Int("status_code", resp.StatusCode),
			logger.String("detail", msg),
		)
		return failure(msg)
	}

	var tweet tweetResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&tweet); decodeErr != nil {
		return failure("Failed to post to Twitter")
	}

	return models.PostResult{
		Success: true,
		PostID:  tweet.Data.ID,
		PostURL: fmt.Sprintf("https://twitter.com/i/web/status/%s", tweet.Data.ID),
	}
}
