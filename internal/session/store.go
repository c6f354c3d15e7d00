// Package session stores the pending handle a user searched for before being
// redirected to a platform's authorization page. Entries are keyed per
// (session, platform) so concurrent linkage attempts across platforms do not
// interfere; two attempts for the same platform in the same session overwrite
// each other, last write wins.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhengbin-app/sociallink/internal/models"
)

const keyPrefix = "oauth:pending"

// PendingStore is the ephemeral platform → pending-handle map consulted when
// an OAuth redirect returns.
type PendingStore interface {
	// Put records the handle pending authorization for a platform.
	Put(ctx context.Context, sessionID string, platform models.Platform, handle string) error

	// Get returns the pending handle, or "" if none is recorded.
	Get(ctx context.Context, sessionID string, platform models.Platform) (string, error)

	// Clear removes the entry. Clearing an absent entry is not an error.
	Clear(ctx context.Context, sessionID string, platform models.Platform) error
}

// RedisStore implements PendingStore on Redis with a TTL so abandoned
// redirects expire on their own.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed pending store
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func pendingKey(sessionID string, platform models.Platform) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, sessionID, platform)
}

// Put records the pending handle for the session and platform
func (s *RedisStore) Put(ctx context.Context, sessionID string, platform models.Platform, handle string) error {
	if err := s.client.Set(ctx, pendingKey(sessionID, platform), handle, s.ttl).Err(); err != nil {
		return fmt.Errorf("store pending handle: %w", err)
	}
	return nil
}

// Get returns the pending handle, or "" when none is recorded
func (s *RedisStore) Get(ctx context.Context, sessionID string, platform models.Platform) (string, error) {
	handle, err := s.client.Get(ctx, pendingKey(sessionID, platform)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("read pending handle: %w", err)
	}
	return handle, nil
}

// Clear removes the pending entry, idempotently
func (s *RedisStore) Clear(ctx context.Context, sessionID string, platform models.Platform) error {
	if err := s.client.Del(ctx, pendingKey(sessionID, platform)).Err(); err != nil {
		return fmt.Errorf("clear pending handle: %w", err)
	}
	return nil
}
