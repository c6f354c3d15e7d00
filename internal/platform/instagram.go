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

const defaultInstagramAPIBase = "https://graph.instagram.com/v18.0"

// InstagramAdapter publishes via the two-phase Graph flow: create a media
// object, then publish it. Text-only content is rejected before any network
// call because Instagram requires media.
type InstagramAdapter struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

type mediaCreateResponse struct {
	ID string `json:"id"`
}

// NewInstagramAdapter creates a new Instagram adapter. An empty baseURL
// selects the production Graph API.
func NewInstagramAdapter(baseURL string, client *http.Client, log logger.Logger) *InstagramAdapter {
	if baseURL == "" {
		baseURL = defaultInstagramAPIBase
	}
	return &InstagramAdapter{baseURL: baseURL, client: client, logger: log}
}

// Post creates and publishes a media object on the account identified by
// accountRef. Either phase's failure aborts the post.
func (a *InstagramAdapter) Post(ctx context.Context, token string, content models.PostContent, accountRef string) models.PostResult {
	if content.MediaURL == "" {
		return failure("Instagram posts require an image or video")
	}

	creationID, result := a.createMedia(ctx, token, content, accountRef)
	if !result.Success {
		return result
	}

	return a.publishMedia(ctx, token, accountRef, creationID)
}

func (a *InstagramAdapter) createMedia(ctx context.Context, token string, content models.PostContent, accountRef string) (string, models.PostResult) {
	body := map[string]any{
		"image_url":    content.MediaURL,
		"caption":      content.Text,
		"access_token": token,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", failure("Failed to create Instagram media")
	}

	endpoint := fmt.Sprintf("%s/%s/media", a.baseURL, url.PathEscape(accountRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", failure("Failed to create Instagram media")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warn("instagram media create request failed", logger.Error(err))
		return "", failure("Failed to create Instagram media")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr graphErrorResponse
		msg := "Failed to create Instagram media"
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		a.logger.Warn("instagram media create returned error status",
			logger.Int("status_code", resp.StatusCode),
			logger.String("detail", msg),
		)
		return "", failure(msg)
	}

	var created mediaCreateResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&created); decodeErr != nil {
		return "", failure("Failed to create Instagram media")
	}

	return created.ID, models.PostResult{Success: true}
}

func (a *InstagramAdapter) publishMedia(ctx context.Context, token, accountRef, creationID string) models.PostResult {
	body := map[string]any{
		"creation_id":  creationID,
		"access_token": token,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return failure("Failed to publish Instagram post")
	}

	endpoint := fmt.Sprintf("%s/%s/media_publish", a.baseURL, url.PathEscape(accountRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return failure("Failed to publish Instagram post")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warn("instagram media publish request failed", logger.Error(err))
		return failure("Failed to publish Instagram post")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr graphErrorResponse
		msg := "Failed to publish Instagram post"
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		a.logger.Warn("instagram media publish returned error status",
			logger.Int("status_code", resp.StatusCode),
			logger.String("detail", msg),
		)
		return failure(msg)
	}

	var published mediaCreateResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&published); decodeErr != nil {
		return failure("Failed to publish Instagram post")
	}

	return models.PostResult{
		Success: true,
		PostID:  published.ID,
	}
}
