package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaType describes the kind of media attached to post content.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// PostContent is the normalized content handed to the publish dispatcher.
// It is immutable input; adapters translate it into each platform's wire format.
type PostContent struct {
	Text      string    `json:"text"`
	MediaURL  string    `json:"media_url,omitempty"`
	MediaType MediaType `json:"media_type,omitempty"`
}

// PostResult is the normalized outcome of one publish attempt on one account.
type PostResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id,omitempty"`
	PostURL string `json:"post_url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AccountPostResult pairs a publish result with the account it was attempted on.
type AccountPostResult struct {
	AccountID uuid.UUID  `json:"account_id"`
	Result    PostResult `json:"result"`
}

// PostRecord is the append-only log entry written after a successful publish.
type PostRecord struct {
	ID             uuid.UUID `db:"id"               json:"id"`
	AccountID      uuid.UUID `db:"account_id"       json:"account_id"`
	Content        string    `db:"content"          json:"content"`
	MediaURL       string    `db:"media_url"        json:"media_url,omitempty"`
	Status         string    `db:"status"           json:"status"`
	ExternalPostID string    `db:"external_post_id" json:"external_post_id,omitempty"`
	PublishedAt    time.Time `db:"published_at"     json:"published_at"`
}

// PostStatusPublished is the status recorded for successfully published posts.
const PostStatusPublished = "published"
