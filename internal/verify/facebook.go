package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
)

type facebookPageResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// verifyFacebook looks a page up by id with the pre-provisioned token.
// 404 means the page does not exist.
func (v *Verifier) verifyFacebook(ctx context.Context, pageID string) models.VerificationResult {
	endpoint := fmt.Sprintf("%s/%s?fields=id,name,username&access_token=%s",
		v.cfg.FacebookAPIBase, url.PathEscape(pageID), url.QueryEscape(v.cfg.FacebookAccessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return models.VerificationResult{Exists: false, Error: "Failed to verify Facebook page"}
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("facebook lookup request failed",
			logger.String("page_id", pageID),
			logger.Error(err),
		)
		return models.VerificationResult{Exists: false, Error: "Failed to verify Facebook page"}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.VerificationResult{
			Exists: false,
			Error:  "Page not found on Facebook",
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		v.logger.Warn("facebook lookup returned error status",
			logger.String("page_id", pageID),
			logger.Int("status_code", resp.StatusCode),
		)
		return models.VerificationResult{Exists: false, Error: "Failed to verify Facebook page"}
	}

	var page facebookPageResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&page); decodeErr != nil {
		return models.VerificationResult{Exists: false, Error: "Failed to verify Facebook page"}
	}

	ref := page.Username
	if ref == "" {
		ref = page.ID
	}

	return models.VerificationResult{
		Exists:      true,
		Username:    ref,
		DisplayName: page.Name,
		ProfileURL:  fmt.Sprintf("https://facebook.com/%s", ref),
	}
}
