// Package platform contains the per-platform publish adapters. Each adapter
// isolates one wire contract and normalizes its success and error shapes into
// a models.PostResult; transport and parsing failures never escape as errors.
package platform

import (
	"context"
	"net/http"
	"time"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
)

const defaultPostTimeout = 30 * time.Second

// Adapter publishes normalized content to one platform. accountRef is the
// platform-specific account reference (handle, member id, or page id).
type Adapter interface {
	Post(ctx context.Context, token string, content models.PostContent, accountRef string) models.PostResult
}

// Registry maps platforms to their adapters. Platforms without an adapter
// (e.g. TikTok) are simply absent.
type Registry map[models.Platform]Adapter

// NewRegistry builds the default adapter table.
func NewRegistry(log logger.Logger) Registry {
	client := &http.Client{Timeout: defaultPostTimeout}
	return Registry{
		models.PlatformTwitter:   NewTwitterAdapter("", client, log),
		models.PlatformLinkedIn:  NewLinkedInAdapter("", client, log),
		models.PlatformFacebook:  NewFacebookAdapter("", client, log),
		models.PlatformInstagram: NewInstagramAdapter("", client, log),
	}
}

func failure(msg string) models.PostResult {
	return models.PostResult{Success: false, Error: msg}
}
