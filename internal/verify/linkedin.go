package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
)

type linkedInProfileResponse struct {
	ID                 string `json:"id"`
	LocalizedFirstName string `json:"localizedFirstName"`
	LocalizedLastName  string `json:"localizedLastName"`
}

// verifyLinkedIn fetches the authenticated member's profile with the
// pre-provisioned token. The handle parameter becomes the reported profile
// URL; LinkedIn profile lookup by arbitrary handle is not available on this
// API tier.
func (v *Verifier) verifyLinkedIn(ctx context.Context, handle string) models.VerificationResult {
	endpoint := fmt.Sprintf("%s/v2/me", v.cfg.LinkedInAPIBase)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return models.VerificationResult{Exists: false, Error: "Failed to verify LinkedIn profile"}
	}
	req.Header.Set("Authorization", "Bearer "+v.cfg.LinkedInAccessToken)

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("linkedin lookup request failed",
			logger.String("handle", handle),
			logger.Error(err),
		)
		return models.VerificationResult{Exists: false, Error: "Failed to verify LinkedIn profile"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		v.logger.Warn("linkedin lookup returned error status",
			logger.String("handle", handle),
			logger.Int("status_code", resp.StatusCode),
		)
		return models.VerificationResult{Exists: false, Error: "Failed to verify LinkedIn profile"}
	}

	var profile linkedInProfileResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&profile); decodeErr != nil {
		return models.VerificationResult{Exists: false, Error: "Failed to verify LinkedIn profile"}
	}

	return models.VerificationResult{
		Exists:      true,
		Username:    profile.ID,
		DisplayName: fmt.Sprintf("%s %s", profile.LocalizedFirstName, profile.LocalizedLastName),
		ProfileURL:  handle,
	}
}
