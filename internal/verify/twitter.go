package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
)

type twitterUserResponse struct {
	Data struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"data"`
}

// verifyTwitter looks up a username via the Twitter v2 user-by-username
// endpoint. 404 means the user does not exist; any other non-2xx is reported
// as a generic lookup error, still with exists=false.
func (v *Verifier) verifyTwitter(ctx context.Context, username string) models.VerificationResult {
	if v.cfg.TwitterBearerToken == "" {
		return models.VerificationResult{
			Exists: false,
			Error:  "Twitter API configuration is missing. Please provide a bearer token.",
		}
	}

	endpoint := fmt.Sprintf("%s/2/users/by/username/%s", v.cfg.TwitterAPIBase, username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return models.VerificationResult{Exists: false, Error: "Failed to verify username"}
	}
	req.Header.Set("Authorization", "Bearer "+v.cfg.TwitterBearerToken)

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("twitter lookup request failed",
			logger.String("username", username),
			logger.Error(err),
		)
		return models.VerificationResult{Exists: false, Error: "Failed to verify username"}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.VerificationResult{
			Exists: false,
			Error:  "Username not found on Twitter",
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		v.logger.Warn("twitter lookup returned error status",
			logger.String("username", username),
			logger.Int("status_code", resp.StatusCode),
		)
		return models.VerificationResult{
			Exists: false,
			Error:  fmt.Sprintf("Twitter API error: %d", resp.StatusCode),
		}
	}

	var user twitterUserResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&user); decodeErr != nil {
		return models.VerificationResult{Exists: false, Error: "Failed to verify username"}
	}

	return models.VerificationResult{
		Exists:      true,
		Username:    user.Data.Username,
		DisplayName: user.Data.Name,
		ProfileURL:  fmt.Sprintf("https://twitter.com/%s", user.Data.Username),
	}
}
