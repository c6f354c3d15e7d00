package linkflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhengbin-app/sociallink/internal/audit"
	"github.com/zhengbin-app/sociallink/internal/linkflow"
	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
)

type fakeVerifier struct {
	result models.VerificationResult
}

func (f *fakeVerifier) Verify(_ context.Context, _ models.Platform, _ string) models.VerificationResult {
	return f.result
}

type fakeSessions struct {
	mu      sync.Mutex
	entries map[string]string
	putErr  error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{entries: make(map[string]string)}
}

func (f *fakeSessions) key(sessionID string, platform models.Platform) string {
	return sessionID + ":" + platform.String()
}

func (f *fakeSessions) Put(_ context.Context, sessionID string, platform models.Platform, handle string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[f.key(sessionID, platform)] = handle
	return nil
}

func (f *fakeSessions) Get(_ context.Context, sessionID string, platform models.Platform) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[f.key(sessionID, platform)], nil
}

func (f *fakeSessions) Clear(_ context.Context, sessionID string, platform models.Platform) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, f.key(sessionID, platform))
	return nil
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAuditor) Notify(event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAuditor) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.events))
	for _, e := range r.events {
		actions = append(actions, e.Action)
	}
	return actions
}

type flowFixture struct {
	flow     *linkflow.Flow
	verifier *fakeVerifier
	sessions *fakeSessions
	auditor  *recordingAuditor
	connects int
	connErr  error
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()

	fx := &flowFixture{
		verifier: &fakeVerifier{result: models.VerificationResult{
			Exists:      true,
			Username:    "alice",
			DisplayName: "Alice Example",
			ProfileURL:  "https://twitter.com/alice",
		}},
		sessions: newFakeSessions(),
		auditor:  &recordingAuditor{},
	}

	connect := func(_ context.Context, _, _ string) error {
		fx.connects++
		return fx.connErr
	}

	fx.flow = linkflow.New(linkflow.Config{
		Platform:     models.PlatformTwitter,
		OwnerID:      "user-1",
		SessionID:    "user-1",
		AuthorizeURL: "https://auth.example.com/twitter",
	}, fx.verifier, fx.sessions, fx.auditor, connect, logger.NewNopLogger())

	return fx
}

func TestFlow_SearchAdvancesOnMatch(t *testing.T) {
	fx := newFlowFixture(t)

	result, err := fx.flow.Search(context.Background(), "alice")
	require.NoError(t, err)

	assert.True(t, result.Exists)
	assert.Equal(t, linkflow.StepVerify, fx.flow.Step())
	assert.Equal(t, "alice", fx.flow.Handle())
	assert.Equal(t, []string{audit.ActionSearchUser}, fx.auditor.actions())
}

func TestFlow_SearchStaysOnMiss(t *testing.T) {
	fx := newFlowFixture(t)
	fx.verifier.result = models.VerificationResult{
		Exists: false,
		Error:  "Username not found on Twitter",
	}

	_, err := fx.flow.Search(context.Background(), "ghost")
	require.ErrorIs(t, err, linkflow.ErrUserNotFound)

	assert.Equal(t, linkflow.StepSearch, fx.flow.Step())
	assert.Empty(t, fx.flow.Handle())
	assert.Equal(t, "Username not found on Twitter", fx.flow.Err())
}

func TestFlow_SearchMissWithoutMessageGetsDefault(t *testing.T) {
	fx := newFlowFixture(t)
	fx.verifier.result = models.VerificationResult{Exists: false}

	_, err := fx.flow.Search(context.Background(), "ghost")
	require.ErrorIs(t, err, linkflow.ErrUserNotFound)
	assert.Equal(t, "User not found on Twitter", fx.flow.Err())
}

func TestFlow_SearchRejectsEmptyHandle(t *testing.T) {
	fx := newFlowFixture(t)

	_, err := fx.flow.Search(context.Background(), "   ")
	require.ErrorIs(t, err, linkflow.ErrEmptyHandle)
	assert.Equal(t, linkflow.StepSearch, fx.flow.Step())
}

func TestFlow_ConfirmAdvancesToConnect(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	_, err := fx.flow.Search(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, fx.flow.Confirm(ctx))

	assert.Equal(t, linkflow.StepConnect, fx.flow.Step())
	assert.Equal(t, []string{audit.ActionSearchUser, audit.ActionVerifyUser}, fx.auditor.actions())
}

func TestFlow_ConfirmRequiresVerifyStep(t *testing.T) {
	fx := newFlowFixture(t)

	err := fx.flow.Confirm(context.Background())
	require.ErrorIs(t, err, linkflow.ErrWrongStep)
}

func TestFlow_BackClearsHandle(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	_, err := fx.flow.Search(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, fx.flow.Back())

	assert.Equal(t, linkflow.StepSearch, fx.flow.Step())
	assert.Empty(t, fx.flow.Handle())
	assert.Nil(t, fx.flow.Verification())
}

func TestFlow_BackOnlyFromVerify(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, fx.flow.Back(), linkflow.ErrWrongStep)

	_, err := fx.flow.Search(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, fx.flow.Confirm(ctx))
	require.ErrorIs(t, fx.flow.Back(), linkflow.ErrWrongStep)
}

func advanceToConnect(t *testing.T, fx *flowFixture) {
	t.Helper()
	ctx := context.Background()
	_, err := fx.flow.Search(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, fx.flow.Confirm(ctx))
}

func TestFlow_ConnectManual(t *testing.T) {
	fx := newFlowFixture(t)
	advanceToConnect(t, fx)

	require.NoError(t, fx.flow.ConnectManual(context.Background(), "hunter2"))
	assert.Equal(t, 1, fx.connects)
	assert.Equal(t,
		[]string{audit.ActionSearchUser, audit.ActionVerifyUser, audit.ActionConnectAttempt},
		fx.auditor.actions(),
	)
}

func TestFlow_ConnectManualRejectsEmptySecret(t *testing.T) {
	fx := newFlowFixture(t)
	advanceToConnect(t, fx)

	err := fx.flow.ConnectManual(context.Background(), "  ")
	require.ErrorIs(t, err, linkflow.ErrEmptySecret)
	assert.Zero(t, fx.connects)
}

func TestFlow_ConnectManualDuplicate(t *testing.T) {
	fx := newFlowFixture(t)
	fx.connErr = models.ErrAlreadyExists
	advanceToConnect(t, fx)

	err := fx.flow.ConnectManual(context.Background(), "hunter2")
	require.ErrorIs(t, err, linkflow.ErrConnect)

	// Flow stays at connect with the duplicate message so the user can
	// pick a different account or cancel.
	assert.Equal(t, linkflow.StepConnect, fx.flow.Step())
	assert.Equal(t, "This Twitter account is already connected to your profile.", fx.flow.Err())
}

func TestFlow_ConnectManualGenericFailure(t *testing.T) {
	fx := newFlowFixture(t)
	fx.connErr = errors.New("db down")
	advanceToConnect(t, fx)

	err := fx.flow.ConnectManual(context.Background(), "hunter2")
	require.ErrorIs(t, err, linkflow.ErrConnect)
	assert.Equal(t, "Failed to connect account. Please check your credentials and try again.", fx.flow.Err())
}

func TestFlow_ConnectOAuthStoresPendingHandle(t *testing.T) {
	fx := newFlowFixture(t)
	advanceToConnect(t, fx)

	url, err := fx.flow.ConnectOAuth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com/twitter", url)

	pending, err := fx.sessions.Get(context.Background(), "user-1", models.PlatformTwitter)
	require.NoError(t, err)
	assert.Equal(t, "alice", pending)
}

func TestFlow_ConnectOAuthStoreFailure(t *testing.T) {
	fx := newFlowFixture(t)
	fx.sessions.putErr = errors.New("redis down")
	advanceToConnect(t, fx)

	_, err := fx.flow.ConnectOAuth(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to initiate OAuth. Please try again.", fx.flow.Err())
}

func TestFlow_WrongStepOperations(t *testing.T) {
	fx := newFlowFixture(t)

	err := fx.flow.ConnectManual(context.Background(), "hunter2")
	require.ErrorIs(t, err, linkflow.ErrWrongStep)

	_, err = fx.flow.ConnectOAuth(context.Background())
	require.ErrorIs(t, err, linkflow.ErrWrongStep)
}
