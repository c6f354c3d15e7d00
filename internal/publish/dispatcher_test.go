package publish_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
	"github.com/zhengbin-app/sociallink/internal/platform"
	"github.com/zhengbin-app/sociallink/internal/publish"
)

type fakeAccounts struct {
	accounts map[uuid.UUID]*models.SocialAccount
	err      error
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*models.SocialAccount, error) {
	if f.err != nil {
		return nil, f.err
	}
	account, ok := f.accounts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return account, nil
}

type fakePosts struct {
	mu      sync.Mutex
	records []*models.PostRecord
	err     error
}

func (f *fakePosts) Create(_ context.Context, record *models.PostRecord) (*models.PostRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return record, nil
}

type fakeMetrics struct {
	mu        sync.Mutex
	published map[models.Platform]int
	failed    map[models.Platform]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		published: make(map[models.Platform]int),
		failed:    make(map[models.Platform]int),
	}
}

func (f *fakeMetrics) IncrementPublished(_ context.Context, p models.Platform) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[p]++
}

func (f *fakeMetrics) IncrementFailed(_ context.Context, p models.Platform) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[p]++
}

type fakeAdapter struct {
	mu      sync.Mutex
	result  models.PostResult
	tokens  []string
	refs    []string
	content []models.PostContent
}

func (f *fakeAdapter) Post(_ context.Context, token string, content models.PostContent, accountRef string) models.PostResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.refs = append(f.refs, accountRef)
	f.content = append(f.content, content)
	return f.result
}

type dispatcherFixture struct {
	dispatcher *publish.Dispatcher
	accounts   *fakeAccounts
	posts      *fakePosts
	metrics    *fakeMetrics
	adapter    *fakeAdapter
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()

	fx := &dispatcherFixture{
		accounts: &fakeAccounts{accounts: make(map[uuid.UUID]*models.SocialAccount)},
		posts:    &fakePosts{},
		metrics:  newFakeMetrics(),
		adapter:  &fakeAdapter{result: models.PostResult{Success: true, PostID: "ext-1"}},
	}

	registry := platform.Registry{models.PlatformTwitter: fx.adapter}
	tokens := publish.NewStoredTokenResolver(fx.accounts)
	fx.dispatcher = publish.NewDispatcher(fx.accounts, fx.posts, tokens, registry, fx.metrics, logger.NewNopLogger())
	return fx
}

func (fx *dispatcherFixture) addAccount(platform models.Platform, handle, token string) uuid.UUID {
	id := uuid.New()
	fx.accounts.accounts[id] = &models.SocialAccount{
		ID:            id,
		OwnerID:       "user-1",
		Platform:      platform,
		AccountHandle: handle,
		AccessToken:   token,
	}
	return id
}

func TestDispatcher_Publish(t *testing.T) {
	fx := newDispatcherFixture(t)
	id := fx.addAccount(models.PlatformTwitter, "@alice", "tok-1")

	result := fx.dispatcher.Publish(context.Background(), id, models.PostContent{Text: "hello"})
	require.True(t, result.Success)
	assert.Equal(t, "ext-1", result.PostID)

	// The adapter sees the stored token and the bare handle.
	assert.Equal(t, []string{"tok-1"}, fx.adapter.tokens)
	assert.Equal(t, []string{"alice"}, fx.adapter.refs)

	assert.Equal(t, 1, fx.metrics.published[models.PlatformTwitter])
	require.Len(t, fx.posts.records, 1)
	assert.Equal(t, id, fx.posts.records[0].AccountID)
	assert.Equal(t, "hello", fx.posts.records[0].Content)
	assert.Equal(t, models.PostStatusPublished, fx.posts.records[0].Status)
	assert.Equal(t, "ext-1", fx.posts.records[0].ExternalPostID)
}

func TestDispatcher_PublishUnknownAccount(t *testing.T) {
	fx := newDispatcherFixture(t)

	result := fx.dispatcher.Publish(context.Background(), uuid.New(), models.PostContent{Text: "hello"})
	require.False(t, result.Success)
	assert.Equal(t, "Account not found", result.Error)
	assert.Empty(t, fx.adapter.tokens)
}

func TestDispatcher_PublishStoreFailure(t *testing.T) {
	fx := newDispatcherFixture(t)
	fx.accounts.err = errors.New("db down")

	result := fx.dispatcher.Publish(context.Background(), uuid.New(), models.PostContent{Text: "hello"})
	require.False(t, result.Success)
	assert.Equal(t, "Failed to publish post", result.Error)
}

func TestDispatcher_PublishUnsupportedPlatform(t *testing.T) {
	fx := newDispatcherFixture(t)
	id := fx.addAccount(models.PlatformTikTok, "@dancer", "tok-1")

	result := fx.dispatcher.Publish(context.Background(), id, models.PostContent{Text: "hello"})
	require.False(t, result.Success)
	assert.Equal(t, "Unsupported platform: tiktok", result.Error)
	assert.Equal(t, 1, fx.metrics.failed[models.PlatformTikTok])
}

func TestDispatcher_PublishAdapterFailure(t *testing.T) {
	fx := newDispatcherFixture(t)
	fx.adapter.result = models.PostResult{Success: false, Error: "Invalid access token"}
	id := fx.addAccount(models.PlatformTwitter, "@alice", "tok-1")

	result := fx.dispatcher.Publish(context.Background(), id, models.PostContent{Text: "hello"})
	require.False(t, result.Success)
	assert.Equal(t, "Invalid access token", result.Error)
	assert.Equal(t, 1, fx.metrics.failed[models.PlatformTwitter])
	assert.Empty(t, fx.posts.records)
}

func TestDispatcher_PostLogFailureKeepsSuccess(t *testing.T) {
	fx := newDispatcherFixture(t)
	fx.posts.err = errors.New("insert failed")
	id := fx.addAccount(models.PlatformTwitter, "@alice", "tok-1")

	result := fx.dispatcher.Publish(context.Background(), id, models.PostContent{Text: "hello"})
	require.True(t, result.Success)
	assert.Equal(t, 1, fx.metrics.published[models.PlatformTwitter])
}

func TestDispatcher_PublishMany(t *testing.T) {
	fx := newDispatcherFixture(t)
	a := fx.addAccount(models.PlatformTwitter, "@alice", "tok-a")
	b := uuid.New() // unknown account
	c := fx.addAccount(models.PlatformTwitter, "@carol", "tok-c")

	results := fx.dispatcher.PublishMany(context.Background(), []uuid.UUID{a, b, c}, models.PostContent{Text: "hello"})
	require.Len(t, results, 3)

	// Results line up with the input order, not completion order.
	assert.Equal(t, a, results[0].AccountID)
	assert.True(t, results[0].Result.Success)

	assert.Equal(t, b, results[1].AccountID)
	assert.False(t, results[1].Result.Success)
	assert.Equal(t, "Account not found", results[1].Result.Error)

	assert.Equal(t, c, results[2].AccountID)
	assert.True(t, results[2].Result.Success)
}

func TestDispatcher_PublishManyEmpty(t *testing.T) {
	fx := newDispatcherFixture(t)

	results := fx.dispatcher.PublishMany(context.Background(), nil, models.PostContent{Text: "hello"})
	assert.Empty(t, results)
}

func TestStoredTokenResolver(t *testing.T) {
	accounts := &fakeAccounts{accounts: make(map[uuid.UUID]*models.SocialAccount)}
	id := uuid.New()
	accounts.accounts[id] = &models.SocialAccount{ID: id, Platform: models.PlatformTwitter, AccessToken: "tok-1"}

	resolver := publish.NewStoredTokenResolver(accounts)

	token, err := resolver.ValidToken(context.Background(), id, models.PlatformTwitter)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	_, err = resolver.ValidToken(context.Background(), uuid.New(), models.PlatformTwitter)
	require.ErrorIs(t, err, models.ErrNotFound)
}
