package publish

import (
	"context"

	"github.com/google/uuid"

	"github.com/zhengbin-app/sociallink/internal/models"
)

// TokenResolver returns a valid access token for an account's platform.
// Implementations may refresh an expiring token before returning it.
type TokenResolver interface {
	ValidToken(ctx context.Context, accountID uuid.UUID, platform models.Platform) (string, error)
}

// StoredTokenResolver resolves tokens straight from the linkage record.
// No refresh is attempted; accounts linked manually carry the sentinel
// trust token.
type StoredTokenResolver struct {
	accounts AccountReader
}

// NewStoredTokenResolver creates a resolver backed by the account store
func NewStoredTokenResolver(accounts AccountReader) *StoredTokenResolver {
	return &StoredTokenResolver{accounts: accounts}
}

// ValidToken returns the access token stored on the account record
func (r *StoredTokenResolver) ValidToken(ctx context.Context, accountID uuid.UUID, _ models.Platform) (string, error) {
	account, err := r.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	return account.AccessToken, nil
}
