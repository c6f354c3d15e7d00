package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/models"
	"github.com/zhengbin-app/sociallink/internal/session"
)

// Status is the terminal state of a callback resolution.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// RedirectDelay is the UX grace period before the client navigates back to
// the application root after a successful connection.
const RedirectDelay = 2 * time.Second

const oauthErrAccessDenied = "access_denied"

// Params are the query parameters consumed from the redirect.
type Params struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// Result is the terminal outcome of resolving a callback. Both success and
// error are terminal; no retries are automatic.
type Result struct {
	Status        Status                `json:"status"`
	Message       string                `json:"message"`
	Account       *models.SocialAccount `json:"account,omitempty"`
	RedirectURL   string                `json:"redirect_url,omitempty"`
	RedirectDelay time.Duration         `json:"-"`
}

// AccountStore persists finalized linkages.
type AccountStore interface {
	Create(ctx context.Context, req *models.AccountCreateRequest) (*models.SocialAccount, error)
}

// Handler finalizes linkages when control returns from an external
// authorization page.
type Handler struct {
	accounts  AccountStore
	sessions  session.PendingStore
	exchanger Exchanger
	logger    logger.Logger
}

// NewHandler creates a new callback handler
func NewHandler(accounts AccountStore, sessions session.PendingStore, exchanger Exchanger, log logger.Logger) *Handler {
	return &Handler{
		accounts:  accounts,
		sessions:  sessions,
		exchanger: exchanger,
		logger:    log,
	}
}

func errorResult(msg string) Result {
	return Result{Status: StatusError, Message: msg}
}

// Resolve drives the callback to its terminal state. ownerID may be empty
// when no user is authenticated; that is itself a terminal error once the
// exchange has succeeded. sessionID keys the pending-handle lookup.
func (h *Handler) Resolve(ctx context.Context, platform models.Platform, ownerID, sessionID string, params Params) Result {
	if params.Error != "" {
		msg := params.ErrorDescription
		if params.Error == oauthErrAccessDenied {
			msg = models.AuthorizationCancelledMessage(platform)
		} else if msg == "" {
			msg = params.Error
		}
		h.logger.Info("authorization declined by provider",
			logger.String("platform", platform.String()),
			logger.String("oauth_error", params.Error),
		)
		return errorResult(msg)
	}

	if params.Code == "" {
		return errorResult(models.MissingCodeMessage(platform))
	}

	// OAuth can proceed without a pre-known handle; the exchange response
	// or a placeholder covers naming.
	pendingHandle, err := h.sessions.Get(ctx, sessionID, platform)
	if err != nil {
		h.logger.Warn("failed to read pending handle",
			logger.String("platform", platform.String()),
			logger.Error(err),
		)
		pendingHandle = ""
	}

	exchanged, err := h.exchanger.Exchange(ctx, ExchangeRequest{
		Platform: platform,
		UserID:   ownerID,
		Username: pendingHandle,
		Code:     params.Code,
		State:    params.State,
	})
	if err != nil {
		var exchangeErr *ExchangeError
		if errors.As(err, &exchangeErr) {
			body := exchangeErr.Body
			if body == "" {
				body = "Please try again or contact support."
			}
			return errorResult(fmt.Sprintf("Failed to connect %s account: %d. %s",
				platform.DisplayName(), exchangeErr.StatusCode, body))
		}
		return errorResult(fmt.Sprintf("Failed to connect %s account. Please try again.", platform.DisplayName()))
	}

	// Clear the pending entry now so a retried callback cannot reuse a
	// stale handle. Clearing an absent entry is a no-op.
	if clearErr := h.sessions.Clear(ctx, sessionID, platform); clearErr != nil {
		h.logger.Warn("failed to clear pending handle",
			logger.String("platform", platform.String()),
			logger.Error(clearErr),
		)
	}

	if ownerID == "" {
		return errorResult(models.NotLoggedInMessage(platform))
	}

	displayUsername := pendingHandle
	if displayUsername == "" {
		displayUsername = exchanged.Username
	}
	if displayUsername == "" {
		displayUsername = platform.DisplayName() + " Account"
	}

	accountName := exchanged.Name
	if accountName == "" {
		accountName = displayUsername
	}

	account, err := h.accounts.Create(ctx, &models.AccountCreateRequest{
		OwnerID:       ownerID,
		Platform:      platform,
		AccountName:   accountName,
		AccountHandle: models.NormalizeHandle(displayUsername),
		AccessToken:   models.ManualTrustToken,
	})
	if err != nil {
		if errors.Is(err, models.ErrAlreadyExists) {
			return errorResult(models.AlreadyConnectedMessage(platform))
		}
		return errorResult(fmt.Sprintf("Failed to save account: %v", err))
	}

	h.logger.Info("account connected via oauth",
		logger.String("platform", platform.String()),
		logger.String("handle", account.AccountHandle),
	)

	return Result{
		Status:        StatusSuccess,
		Message:       fmt.Sprintf("Successfully connected your %s account!", platform.DisplayName()),
		Account:       account,
		RedirectURL:   platform.SiteURL(),
		RedirectDelay: RedirectDelay,
	}
}
