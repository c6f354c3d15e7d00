// Package metrics tracks publish counters per platform in Redis.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
)

const (
	keyPrefix  = "sociallink:metrics"
	counterTTL = 30 * 24 * time.Hour
)

// Stats aggregates the per-platform publish counters.
type Stats struct {
	Published map[string]int64 `json:"published"`
	Failed    map[string]int64 `json:"failed"`
}

// Tracker records publish outcomes in Redis. Counter writes are best-effort:
// a Redis failure is logged and never affects the publish result.
type Tracker struct {
	client redis.UniversalClient
	logger logger.Logger
}

// NewTracker creates a new metrics tracker
func NewTracker(client redis.UniversalClient, log logger.Logger) *Tracker {
	return &Tracker{client: client, logger: log}
}

func publishedKey(p models.Platform) string {
	return fmt.Sprintf("%s:published:%s", keyPrefix, p)
}

func failedKey(p models.Platform) string {
	return fmt.Sprintf("%s:failed:%s", keyPrefix, p)
}

// IncrementPublished increments the published counter for a platform
func (t *Tracker) IncrementPublished(ctx context.Context, platform models.Platform) {
	t.increment(ctx, publishedKey(platform), platform)
}

// IncrementFailed increments the failed counter for a platform
func (t *Tracker) IncrementFailed(ctx context.Context, platform models.Platform) {
	t.increment(ctx, failedKey(platform), platform)
}

func (t *Tracker) increment(ctx context.Context, key string, platform models.Platform) {
	pipe := t.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn("failed to increment publish counter",
			logger.String("platform", platform.String()),
			logger.String("redis_key", key),
			logger.Error(err),
		)
	}
}

// GetStats reads the counters for all platforms
func (t *Tracker) GetStats(ctx context.Context) (Stats, error) {
	stats := Stats{
		Published: make(map[string]int64),
		Failed:    make(map[string]int64),
	}

	for _, platform := range models.AllPlatforms {
		published, err := t.readCounter(ctx, publishedKey(platform))
		if err != nil {
			return Stats{}, err
		}
		failed, err := t.readCounter(ctx, failedKey(platform))
		if err != nil {
			return Stats{}, err
		}
		stats.Published[platform.String()] = published
		stats.Failed[platform.String()] = failed
	}

	return stats, nil
}

func (t *Tracker) readCounter(ctx context.Context, key string) (int64, error) {
	val, err := t.client.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("read counter %s: %w", key, err)
	}
	return val, nil
}
