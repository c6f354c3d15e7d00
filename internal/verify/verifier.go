// Package verify implements read-only identity verification against the
// social platforms' lookup endpoints. Verification never mutates state and
// never lets a transport failure escape as an error: every outcome is
// normalized into a models.VerificationResult.
package verify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
)

const defaultLookupTimeout = 15 * time.Second

// Default API bases. Overridable in Config for tests.
const (
	defaultTwitterAPIBase   = "https://api.twitter.com"
	defaultLinkedInAPIBase  = "https://api.linkedin.com"
	defaultFacebookAPIBase  = "https://graph.facebook.com/v18.0"
	defaultInstagramAPIBase = "https://graph.instagram.com/v18.0"
)

// Config holds the pre-provisioned credentials and endpoint bases used for
// identity lookups. The tokens are service-level, not user tokens.
type Config struct {
	TwitterBearerToken   string
	LinkedInAccessToken  string
	FacebookAccessToken  string
	InstagramAccessToken string

	TwitterAPIBase   string
	LinkedInAPIBase  string
	FacebookAPIBase  string
	InstagramAPIBase string
}

// Verifier resolves (platform, handle) pairs to normalized existence results.
type Verifier struct {
	cfg    Config
	client *http.Client
	logger logger.Logger
}

// NewVerifier creates a new identity verifier
func NewVerifier(cfg Config, log logger.Logger) *Verifier {
	if cfg.TwitterAPIBase == "" {
		cfg.TwitterAPIBase = defaultTwitterAPIBase
	}
	if cfg.LinkedInAPIBase == "" {
		cfg.LinkedInAPIBase = defaultLinkedInAPIBase
	}
	if cfg.FacebookAPIBase == "" {
		cfg.FacebookAPIBase = defaultFacebookAPIBase
	}
	if cfg.InstagramAPIBase == "" {
		cfg.InstagramAPIBase = defaultInstagramAPIBase
	}

	return &Verifier{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultLookupTimeout},
		logger: log,
	}
}

// Verify checks whether the handle exists on the given platform.
// A leading @ is stripped before lookup, so "alice" and "@alice" are
// equivalent inputs.
func (v *Verifier) Verify(ctx context.Context, platform models.Platform, handle string) models.VerificationResult {
	handle = models.StripHandle(handle)

	var result models.VerificationResult
	switch platform {
	case models.PlatformTwitter:
		result = v.verifyTwitter(ctx, handle)
	case models.PlatformLinkedIn:
		result = v.verifyLinkedIn(ctx, handle)
	case models.PlatformFacebook:
		result = v.verifyFacebook(ctx, handle)
	case models.PlatformInstagram:
		result = v.verifyInstagram(ctx, handle)
	case models.PlatformTikTok:
		result = models.VerificationResult{
			Exists: false,
			Error:  fmt.Sprintf("Platform %s is not supported for verification", platform),
		}
	default:
		result = models.VerificationResult{
			Exists: false,
			Error:  fmt.Sprintf("Platform %s is not supported for verification", platform),
		}
	}

	v.logger.Debug("identity verification completed",
		logger.String("platform", platform.String()),
		logger.String("handle", handle),
		logger.Bool("exists", result.Exists),
	)

	return result
}
