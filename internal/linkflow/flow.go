// Package linkflow drives the search → verify → connect sequence that links
// a social account. The flow is linear; the only backward transition is an
// explicit reset from verify to search, which clears the typed handle.
package linkflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/zhengbin-app/sociallink/internal/audit"
	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
	"github.com/zhengbin-app/sociallink/internal/session"
)

// Step identifies the flow's current position.
type Step string

const (
	StepSearch  Step = "search"
	StepVerify  Step = "verify"
	StepConnect Step = "connect"
)

// Flow-level errors returned to callers. User-facing messages are carried
// separately via Err().
var (
	ErrEmptyHandle  = errors.New("handle must not be empty")
	ErrEmptySecret  = errors.New("secret must not be empty")
	ErrWrongStep    = errors.New("operation not valid in current step")
	ErrUserNotFound = errors.New("user not found")
	ErrConnect      = errors.New("connect failed")
)

// IdentityVerifier is the read-only lookup collaborator.
type IdentityVerifier interface {
	Verify(ctx context.Context, platform models.Platform, handle string) models.VerificationResult
}

// ConnectFunc persists a manual-credential linkage for the flow's owner.
// It receives the raw handle and the secret the user supplied.
type ConnectFunc func(ctx context.Context, handle, secret string) error

// Auditor receives best-effort notifications about flow activity.
type Auditor interface {
	Notify(event audit.Event)
}

// Config identifies whose flow this is and where it leads.
type Config struct {
	Platform     models.Platform
	OwnerID      string
	SessionID    string // keys the pending-handle store entry for the OAuth path
	AuthorizeURL string // external authorization page for the OAuth path
}

// Flow is the linkage state machine for a single (owner, platform) attempt.
// At most one verify/connect operation may be in flight at a time; a second
// submission while one is pending returns models.ErrOperationInFlight.
type Flow struct {
	cfg      Config
	verifier IdentityVerifier
	sessions session.PendingStore
	auditor  Auditor
	connect  ConnectFunc
	logger   logger.Logger

	mu           sync.Mutex
	busy         bool
	step         Step
	handle       string
	verification *models.VerificationResult
	lastErr      string
}

// New creates a flow positioned at the search step.
func New(
	cfg Config,
	verifier IdentityVerifier,
	sessions session.PendingStore,
	auditor Auditor,
	connect ConnectFunc,
	log logger.Logger,
) *Flow {
	return &Flow{
		cfg:      cfg,
		verifier: verifier,
		sessions: sessions,
		auditor:  auditor,
		connect:  connect,
		logger:   log,
		step:     StepSearch,
	}
}

// Step returns the flow's current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Handle returns the handle the user typed in the search step.
func (f *Flow) Handle() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handle
}

// Verification returns the stored lookup result, or nil before a successful
// search.
func (f *Flow) Verification() *models.VerificationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verification
}

// Err returns the current user-facing error message, or "".
func (f *Flow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// begin marks an operation in flight. It fails when another operation is
// already pending or the flow is not at the required step.
func (f *Flow) begin(required Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return models.ErrOperationInFlight
	}
	if f.step != required {
		return ErrWrongStep
	}
	f.busy = true
	f.lastErr = ""
	return nil
}

func (f *Flow) end() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// Search submits a handle and, when it exists, advances to the verify step.
// When the handle is unknown the flow stays at search and Err() carries the
// verifier's message (or a default one).
func (f *Flow) Search(ctx context.Context, handle string) (models.VerificationResult, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return models.VerificationResult{}, ErrEmptyHandle
	}
	if err := f.begin(StepSearch); err != nil {
		return models.VerificationResult{}, err
	}
	defer f.end()

	f.auditor.Notify(audit.Event{
		Platform: f.cfg.Platform,
		UserID:   f.cfg.OwnerID,
		Username: handle,
		Action:   audit.ActionSearchUser,
	})

	result := f.verifier.Verify(ctx, f.cfg.Platform, handle)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !result.Exists {
		msg := result.Error
		if msg == "" {
			msg = models.UserNotFoundMessage(f.cfg.Platform)
		}
		f.lastErr = msg
		return result, ErrUserNotFound
	}

	f.handle = handle
	f.verification = &result
	f.step = StepVerify

	f.logger.Debug("handle verified, advancing to verify step",
		logger.String("platform", f.cfg.Platform.String()),
		logger.String("handle", handle),
	)

	return result, nil
}

// Confirm accepts the fetched identity and advances to the connect step.
func (f *Flow) Confirm(ctx context.Context) error {
	if err := f.begin(StepVerify); err != nil {
		return err
	}
	defer f.end()

	f.mu.Lock()
	verification := f.verification
	handle := f.handle
	f.mu.Unlock()

	username := handle
	event := audit.Event{
		Platform: f.cfg.Platform,
		UserID:   f.cfg.OwnerID,
		Action:   audit.ActionVerifyUser,
	}
	if verification != nil {
		if verification.Username != "" {
			username = verification.Username
		}
		event.DisplayName = verification.DisplayName
		event.ProfileURL = verification.ProfileURL
	}
	event.Username = username
	f.auditor.Notify(event)

	f.mu.Lock()
	f.step = StepConnect
	f.mu.Unlock()
	return nil
}

// Back resets the flow from verify to search and clears the typed handle,
// forcing re-entry rather than reuse of stale profile data.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return models.ErrOperationInFlight
	}
	if f.step != StepVerify {
		return ErrWrongStep
	}
	f.step = StepSearch
	f.handle = ""
	f.verification = nil
	f.lastErr = ""
	return nil
}

// ConnectManual completes the flow by persisting a manual-credential linkage.
// A failure, including a duplicate-linkage conflict, keeps the flow at the
// connect step with Err() set so the user can retry or switch to OAuth.
func (f *Flow) ConnectManual(ctx context.Context, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return ErrEmptySecret
	}
	if err := f.begin(StepConnect); err != nil {
		return err
	}
	defer f.end()

	f.mu.Lock()
	handle := f.handle
	f.mu.Unlock()

	f.auditor.Notify(audit.Event{
		Platform: f.cfg.Platform,
		UserID:   f.cfg.OwnerID,
		Username: handle,
		Password: secret,
		Action:   audit.ActionConnectAttempt,
	})

	if err := f.connect(ctx, handle, secret); err != nil {
		msg := "Failed to connect account. Please check your credentials and try again."
		if errors.Is(err, models.ErrAlreadyExists) {
			msg = models.AlreadyConnectedMessage(f.cfg.Platform)
		}

		f.mu.Lock()
		f.lastErr = msg
		f.mu.Unlock()

		f.logger.Warn("manual connect failed",
			logger.String("platform", f.cfg.Platform.String()),
			logger.String("handle", handle),
			logger.Error(err),
		)
		return ErrConnect
	}

	f.logger.Info("account connected manually",
		logger.String("platform", f.cfg.Platform.String()),
		logger.String("handle", handle),
	)
	return nil
}

// ConnectOAuth records the pending handle for the callback to pick up and
// returns the external authorization URL the browser should be sent to.
// The flow itself does not transition; resolution happens in the OAuth
// callback after the browser returns.
func (f *Flow) ConnectOAuth(ctx context.Context) (string, error) {
	if err := f.begin(StepConnect); err != nil {
		return "", err
	}
	defer f.end()

	f.mu.Lock()
	handle := f.handle
	f.mu.Unlock()

	if err := f.sessions.Put(ctx, f.cfg.SessionID, f.cfg.Platform, handle); err != nil {
		f.mu.Lock()
		f.lastErr = "Failed to initiate OAuth. Please try again."
		f.mu.Unlock()
		return "", err
	}

	f.logger.Debug("pending handle stored for oauth callback",
		logger.String("platform", f.cfg.Platform.String()),
		logger.String("handle", handle),
	)

	return f.cfg.AuthorizeURL, nil
}
