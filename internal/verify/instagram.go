package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
)

type instagramAccountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// verifyInstagram fetches the authenticated account and requires its username
// to match the requested handle, case-insensitively. A mismatch is a plain
// exists=false outcome, not a transport error.
func (v *Verifier) verifyInstagram(ctx context.Context, username string) models.VerificationResult {
	endpoint := fmt.Sprintf("%s/me?fields=id,username&access_token=%s",
		v.cfg.InstagramAPIBase, url.QueryEscape(v.cfg.InstagramAccessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return models.VerificationResult{Exists: false, Error: "Failed to verify Instagram account"}
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("instagram lookup request failed",
			logger.String("username", username),
			logger.Error(err),
		)
		return models.VerificationResult{Exists: false, Error: "Failed to verify Instagram account"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		v.logger.Warn("instagram lookup returned error status",
			logger.String("username", username),
			logger.Int("status_code", resp.StatusCode),
		)
		return models.VerificationResult{Exists: false, Error: "Failed to verify Instagram account"}
	}

	var account instagramAccountResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&account); decodeErr != nil {
		return models.VerificationResult{Exists: false, Error: "Failed to verify Instagram account"}
	}

	if !strings.EqualFold(account.Username, username) {
		return models.VerificationResult{
			Exists: false,
			Error:  "Username does not match authenticated account",
		}
	}

	return models.VerificationResult{
		Exists:      true,
		Username:    account.Username,
		DisplayName: account.Username,
		ProfileURL:  fmt.Sprintf("https://instagram.com/%s", account.Username),
	}
}
