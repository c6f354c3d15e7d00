// Package publish fans content out to linked accounts. Each account is
// published independently; one platform's failure never blocks or rolls back
// another's, and every outcome is a result value rather than an error.
package publish

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
	"github.com/zhengbin-app/sociallink/internal/platform"
)

// AccountReader resolves linkage records. The dispatcher only reads accounts,
// never mutates them.
type AccountReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.SocialAccount, error)
}

// PostLogger appends post records after successful publishes.
type PostLogger interface {
	Create(ctx context.Context, record *models.PostRecord) (*models.PostRecord, error)
}

// MetricsTracker records publish outcomes.
type MetricsTracker interface {
	IncrementPublished(ctx context.Context, platform models.Platform)
	IncrementFailed(ctx context.Context, platform models.Platform)
}

// Dispatcher routes content to the right platform adapter and records the
// outcome.
type Dispatcher struct {
	accounts AccountReader
	posts    PostLogger
	tokens   TokenResolver
	adapters platform.Registry
	metrics  MetricsTracker
	logger   logger.Logger
}

// NewDispatcher creates a new publish dispatcher
func NewDispatcher(
	accounts AccountReader,
	posts PostLogger,
	tokens TokenResolver,
	adapters platform.Registry,
	metrics MetricsTracker,
	log logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		accounts: accounts,
		posts:    posts,
		tokens:   tokens,
		adapters: adapters,
		metrics:  metrics,
		logger:   log,
	}
}

// Publish sends content to one linked account. Every failure mode is a
// result value; no error escapes the dispatcher.
func (d *Dispatcher) Publish(ctx context.Context, accountID uuid.UUID, content models.PostContent) models.PostResult {
	account, err := d.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.PostResult{Success: false, Error: "Account not found"}
		}
		d.logger.Error("failed to resolve account",
			logger.String("account_id", accountID.String()),
			logger.Error(err),
		)
		return models.PostResult{Success: false, Error: "Failed to publish post"}
	}

	token, err := d.tokens.ValidToken(ctx, accountID, account.Platform)
	if err != nil {
		d.logger.Error("failed to resolve access token",
			logger.String("account_id", accountID.String()),
			logger.String("platform", account.Platform.String()),
			logger.Error(err),
		)
		return models.PostResult{Success: false, Error: "Failed to publish post"}
	}

	adapter, ok := d.adapters[account.Platform]
	if !ok {
		d.metrics.IncrementFailed(ctx, account.Platform)
		return models.PostResult{
			Success: false,
			Error:   fmt.Sprintf("Unsupported platform: %s", account.Platform),
		}
	}

	result := adapter.Post(ctx, token, content, models.StripHandle(account.AccountHandle))

	if result.Success {
		d.metrics.IncrementPublished(ctx, account.Platform)
		d.logPost(ctx, account, content, result)
	} else {
		d.metrics.IncrementFailed(ctx, account.Platform)
		d.logger.Warn("publish failed",
			logger.String("account_id", accountID.String()),
			logger.String("platform", account.Platform.String()),
			logger.String("error", result.Error),
		)
	}

	return result
}

// logPost appends the post record. The append is best-effort: its failure is
// logged and never inverts a successful publish result.
func (d *Dispatcher) logPost(ctx context.Context, account *models.SocialAccount, content models.PostContent, result models.PostResult) {
	record := &models.PostRecord{
		AccountID:      account.ID,
		Content:        content.Text,
		MediaURL:       content.MediaURL,
		Status:         models.PostStatusPublished,
		ExternalPostID: result.PostID,
	}

	if _, err := d.posts.Create(ctx, record); err != nil {
		d.logger.Warn("failed to append post record",
			logger.String("account_id", account.ID.String()),
			logger.String("platform", account.Platform.String()),
			logger.Error(err),
		)
	}
}

// PublishMany publishes the same content to every account concurrently and
// returns one result per account, positionally matched to the input ids
// rather than completion order.
func (d *Dispatcher) PublishMany(ctx context.Context, accountIDs []uuid.UUID, content models.PostContent) []models.AccountPostResult {
	results := make([]models.AccountPostResult, len(accountIDs))

	var wg sync.WaitGroup
	for i, id := range accountIDs {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			results[i] = models.AccountPostResult{
				AccountID: id,
				Result:    d.Publish(ctx, id, content),
			}
		}(i, id)
	}
	wg.Wait()

	return results
}
