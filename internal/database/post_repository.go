package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/zhengbin-app/sociallink/internal/models"
)

// PostRepository provides append-only access to the post log.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository creates a new post repository instance
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create appends a post record to the log
func (r *PostRepository) Create(ctx context.Context, record *models.PostRecord) (*models.PostRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.PublishedAt.IsZero() {
		record.PublishedAt = time.Now()
	}

	query := `
		INSERT INTO posts (id, account_id, content, media_url, status, external_post_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, account_id, content, media_url, status, external_post_id, published_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		record.ID, record.AccountID, record.Content, record.MediaURL,
		record.Status, record.ExternalPostID, record.PublishedAt,
	).StructScan(record)

	if err != nil {
		return nil, fmt.Errorf("failed to create post record: %w", err)
	}

	return record, nil
}

// ListByAccount retrieves post records for an account, newest first
func (r *PostRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.PostRecord, error) {
	const defaultLimit = 50
	const maxLimit = 500

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	records := []models.PostRecord{}
	query := `
		SELECT id, account_id, content, media_url, status, external_post_id, published_at
		FROM posts
		WHERE account_id = $1
		ORDER BY published_at DESC
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &records, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list post records: %w", err)
	}

	return records, nil
}
