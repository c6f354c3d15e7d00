package metrics_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/metrics"
	"github.com/zhengbin-app/sociallink/internal/models"
)

func newTestTracker(t *testing.T) *metrics.Tracker {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return metrics.NewTracker(client, logger.NewNopLogger())
}

func TestTracker_Counters(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	tracker.IncrementPublished(ctx, models.PlatformTwitter)
	tracker.IncrementPublished(ctx, models.PlatformTwitter)
	tracker.IncrementPublished(ctx, models.PlatformLinkedIn)
	tracker.IncrementFailed(ctx, models.PlatformInstagram)

	stats, err := tracker.GetStats(ctx)
	require.NoError(t, err)

	require.Equal(t, int64(2), stats.Published["twitter"])
	require.Equal(t, int64(1), stats.Published["linkedin"])
	require.Equal(t, int64(0), stats.Published["facebook"])
	require.Equal(t, int64(1), stats.Failed["instagram"])
	require.Equal(t, int64(0), stats.Failed["twitter"])
}

func TestTracker_EmptyStats(t *testing.T) {
	tracker := newTestTracker(t)

	stats, err := tracker.GetStats(context.Background())
	require.NoError(t, err)

	for _, platform := range models.AllPlatforms {
		require.Contains(t, stats.Published, platform.String())
		require.Contains(t, stats.Failed, platform.String())
		require.Zero(t, stats.Published[platform.String()])
	}
}

func TestTracker_IncrementSurvivesRedisFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tracker := metrics.NewTracker(client, logger.NewNopLogger())

	// A dead Redis must not panic or propagate; publishing still succeeds
	// upstream and only the counter is lost.
	mr.Close()
	tracker.IncrementPublished(context.Background(), models.PlatformTwitter)
}
