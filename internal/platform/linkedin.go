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

const defaultLinkedInAPIBase = "https://api.linkedin.com"

// LinkedInAdapter posts UGC shares via the LinkedIn v2 API. The author URN
// is derived from the account reference; visibility and lifecycle are fixed
// at PUBLIC / PUBLISHED.
type LinkedInAdapter struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

type linkedInErrorResponse struct {
	Message string `json:"message"`
}

type linkedInPostResponse struct {
	ID string `json:"id"`
}

// NewLinkedInAdapter creates a new LinkedIn adapter. An empty baseURL
// selects the production API.
func NewLinkedInAdapter(baseURL string, client *http.Client, log logger.Logger) *LinkedInAdapter {
	if baseURL == "" {
		baseURL = defaultLinkedInAPIBase
	}
	return &LinkedInAdapter{baseURL: baseURL, client: client, logger: log}
}

// Post publishes a share under the member identified by accountRef.
func (a *LinkedInAdapter) Post(ctx context.Context, token string, content models.PostContent, accountRef string) models.PostResult {
	body := map[string]any{
		"author":         fmt.Sprintf("urn:li:person:%s", accountRef),
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary": map[string]any{
					"text": content.Text,
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return failure("Failed to post to LinkedIn")
	}

	endpoint := a.baseURL + "/v2/ugcPosts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return failure("Failed to post to LinkedIn")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warn("linkedin post request failed", logger.Error(err))
		return failure("Failed to post to LinkedIn")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr linkedInErrorResponse
		msg := "Failed to post to LinkedIn"
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		a.logger.Warn("linkedin post returned error status",
			logger.Int("status_code", resp.StatusCode),
			logger.String("detail", msg),
		)
		return failure(msg)
	}

	var post linkedInPostResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&post); decodeErr != nil {
		return failure("Failed to post to LinkedIn")
	}

	return models.PostResult{
		Success: true,
		PostID:  post.ID,
	}
}
