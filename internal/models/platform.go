package models

import (
	"fmt"
	"strings"
)

// Platform identifies a supported social media platform.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// AllPlatforms lists every platform an account can be linked to.
// TikTok accounts can be linked but have no verifier or publish adapter.
var AllPlatforms = []Platform{
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformFacebook,
	PlatformInstagram,
	PlatformTikTok,
}

// ParsePlatform converts a string into a Platform. Input is trimmed and
// lowercased so route params like "Twitter" resolve.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidPlatform, s)
	}
	return p, nil
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformTwitter, PlatformLinkedIn, PlatformFacebook, PlatformInstagram, PlatformTikTok:
		return true
	default:
		return false
	}
}

// DisplayName returns the human-readable platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformTwitter:
		return "Twitter"
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformFacebook:
		return "Facebook"
	case PlatformInstagram:
		return "Instagram"
	case PlatformTikTok:
		return "TikTok"
	default:
		return string(p)
	}
}

// SiteURL returns the canonical public site for the platform.
// Used as the post-connect redirect target.
func (p Platform) SiteURL() string {
	switch p {
	case PlatformTwitter:
		return "https://twitter.com"
	case PlatformLinkedIn:
		return "https://linkedin.com"
	case PlatformFacebook:
		return "https://facebook.com"
	case PlatformInstagram:
		return "https://instagram.com"
	case PlatformTikTok:
		return "https://tiktok.com"
	default:
		return ""
	}
}

func (p Platform) String() string {
	return string(p)
}
