package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/zhengbin-app/sociallink/internal/models"
	"github.com/zhengbin-app/sociallink/internal/session"
)

func newTestStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return session.NewRedisStore(client, 15*time.Minute), mr
}

func TestRedisStore_PutGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sess-1", models.PlatformTwitter, "@alice"))

	handle, err := store.Get(ctx, "sess-1", models.PlatformTwitter)
	require.NoError(t, err)
	require.Equal(t, "@alice", handle)
}

func TestRedisStore_GetAbsent(t *testing.T) {
	store, _ := newTestStore(t)

	handle, err := store.Get(context.Background(), "sess-1", models.PlatformTwitter)
	require.NoError(t, err)
	require.Empty(t, handle)
}

func TestRedisStore_PlatformsAreIndependent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sess-1", models.PlatformTwitter, "@alice"))
	require.NoError(t, store.Put(ctx, "sess-1", models.PlatformFacebook, "@mypage"))

	tw, err := store.Get(ctx, "sess-1", models.PlatformTwitter)
	require.NoError(t, err)
	require.Equal(t, "@alice", tw)

	fb, err := store.Get(ctx, "sess-1", models.PlatformFacebook)
	require.NoError(t, err)
	require.Equal(t, "@mypage", fb)
}

func TestRedisStore_LastWriteWins(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sess-1", models.PlatformTwitter, "@alice"))
	require.NoError(t, store.Put(ctx, "sess-1", models.PlatformTwitter, "@bob"))

	handle, err := store.Get(ctx, "sess-1", models.PlatformTwitter)
	require.NoError(t, err)
	require.Equal(t, "@bob", handle)
}

func TestRedisStore_ClearIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sess-1", models.PlatformTwitter, "@alice"))
	require.NoError(t, store.Clear(ctx, "sess-1", models.PlatformTwitter))
	require.NoError(t, store.Clear(ctx, "sess-1", models.PlatformTwitter))

	handle, err := store.Get(ctx, "sess-1", models.PlatformTwitter)
	require.NoError(t, err)
	require.Empty(t, handle)
}

func TestRedisStore_EntriesExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sess-1", models.PlatformTwitter, "@alice"))

	mr.FastForward(16 * time.Minute)

	handle, err := store.Get(ctx, "sess-1", models.PlatformTwitter)
	require.NoError(t, err)
	require.Empty(t, handle)
}
