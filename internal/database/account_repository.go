package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/zhengbin-app/sociallink/internal/models"
)

const uniqueViolationCode = "23505"

// AccountRepository provides database operations for linked social accounts.
// The accounts table carries a unique constraint on (owner_id, platform,
// account_handle); that constraint is the sole duplicate-linkage guard.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new account repository instance
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new linked account. A duplicate (owner, platform, handle)
// returns models.ErrAlreadyExists.
func (r *AccountRepository) Create(ctx context.Context, req *models.AccountCreateRequest) (*models.SocialAccount, error) {
	account := &models.SocialAccount{
		ID:             uuid.New(),
		OwnerID:        req.OwnerID,
		Platform:       req.Platform,
		AccountName:    req.AccountName,
		AccountHandle:  models.NormalizeHandle(req.AccountHandle),
		AccessToken:    req.AccessToken,
		TokenExpiresAt: req.TokenExpiresAt,
		CreatedAt:      time.Now(),
	}

	query := `
		INSERT INTO social_accounts (id, owner_id, platform, account_name, account_handle, access_token, token_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, owner_id, platform, account_name, account_handle, access_token, token_expires_at, created_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		account.ID, account.OwnerID, account.Platform, account.AccountName,
		account.AccountHandle, account.AccessToken, account.TokenExpiresAt, account.CreatedAt,
	).StructScan(account)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return nil, models.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// GetByID retrieves a linked account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SocialAccount, error) {
	account := &models.SocialAccount{}
	query := `
		SELECT id, owner_id, platform, account_name, account_handle, access_token, token_expires_at, created_at
		FROM social_accounts
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, account, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// ListByOwner retrieves all accounts linked by an owner, newest first
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.SocialAccount, error) {
	accounts := []models.SocialAccount{}
	query := `
		SELECT id, owner_id, platform, account_name, account_handle, access_token, token_expires_at, created_at
		FROM social_accounts
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.SelectContext(ctx, &accounts, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, nil
}

// Delete removes a linked account. Deleting an unknown id returns
// models.ErrNotFound so disconnect is not silently a no-op.
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM social_accounts WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Ping verifies database connectivity
func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
