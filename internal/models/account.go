package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ManualTrustToken is the sentinel access token stored for accounts linked
// through the manual-credential path. Real tokens are only obtained through
// the OAuth path.
const ManualTrustToken = "connected"

// SocialAccount represents a linked social media identity owned by a user.
// Accounts are never updated in place; reconnecting is delete + reinsert.
type SocialAccount struct {
	ID             uuid.UUID  `db:"id"               json:"id"`
	OwnerID        string     `db:"owner_id"         json:"owner_id"`
	Platform       Platform   `db:"platform"         json:"platform"`
	AccountName    string     `db:"account_name"     json:"account_name"`   // display name, e.g. "Alice Example"
	AccountHandle  string     `db:"account_handle"   json:"account_handle"` // normalized with leading @
	AccessToken    string     `db:"access_token"     json:"-"`
	TokenExpiresAt *time.Time `db:"token_expires_at" json:"token_expires_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at"       json:"created_at"`
}

// AccountCreateRequest represents the request payload for linking an account
type AccountCreateRequest struct {
	OwnerID        string
	Platform       Platform
	AccountName    string
	AccountHandle  string
	AccessToken    string
	TokenExpiresAt *time.Time
}

// NormalizeHandle ensures a handle carries a single leading @.
func NormalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return handle
	}
	if strings.HasPrefix(handle, "@") {
		return handle
	}
	return "@" + handle
}

// StripHandle removes a leading @ from a handle, if present.
func StripHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
