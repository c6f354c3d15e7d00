package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zhengbin-app/sociallink/internal/linkflow"
	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/metrics"
	"github.com/zhengbin-app/sociallink/internal/models"
	"github.com/zhengbin-app/sociallink/internal/oauth"
	"github.com/zhengbin-app/sociallink/internal/session"
)

// AccountStore is the linkage persistence surface the handlers need.
type AccountStore interface {
	Create(ctx context.Context, req *models.AccountCreateRequest) (*models.SocialAccount, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.SocialAccount, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.SocialAccount, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostStore reads the post log.
type PostStore interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.PostRecord, error)
}

// Publisher fans content out to linked accounts.
type Publisher interface {
	Publish(ctx context.Context, accountID uuid.UUID, content models.PostContent) models.PostResult
	PublishMany(ctx context.Context, accountIDs []uuid.UUID, content models.PostContent) []models.AccountPostResult
}

// CallbackResolver finalizes OAuth callbacks.
type CallbackResolver interface {
	Resolve(ctx context.Context, platform models.Platform, ownerID, sessionID string, params oauth.Params) oauth.Result
}

// StatsProvider reads publish counters.
type StatsProvider interface {
	GetStats(ctx context.Context) (metrics.Stats, error)
}

// Handlers provides HTTP handlers for the API
type Handlers struct {
	accounts      AccountStore
	posts         PostStore
	publisher     Publisher
	verifier      linkflow.IdentityVerifier
	callbacks     CallbackResolver
	stats         StatsProvider
	sessions      session.PendingStore
	auditor       linkflow.Auditor
	authorizeURLs map[string]string
	flows         *flowRegistry
	logger        logger.Logger
	version       string
}

// HandlersConfig bundles the handler dependencies.
type HandlersConfig struct {
	Accounts      AccountStore
	Posts         PostStore
	Publisher     Publisher
	Verifier      linkflow.IdentityVerifier
	Callbacks     CallbackResolver
	Stats         StatsProvider
	Sessions      session.PendingStore
	Auditor       linkflow.Auditor
	AuthorizeURLs map[string]string
	Logger        logger.Logger
	Version       string
}

// NewHandlers creates a new handlers instance
func NewHandlers(cfg HandlersConfig) *Handlers {
	return &Handlers{
		accounts:      cfg.Accounts,
		posts:         cfg.Posts,
		publisher:     cfg.Publisher,
		verifier:      cfg.Verifier,
		callbacks:     cfg.Callbacks,
		stats:         cfg.Stats,
		sessions:      cfg.Sessions,
		auditor:       cfg.Auditor,
		authorizeURLs: cfg.AuthorizeURLs,
		flows:         newFlowRegistry(),
		logger:        cfg.Logger,
		version:       cfg.Version,
	}
}

func platformParam(c *gin.Context) (models.Platform, bool) {
	platform, err := models.ParsePlatform(c.Param("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform: " + c.Param("platform")})
		return "", false
	}
	return platform, true
}

type searchRequest struct {
	Username string `binding:"required,min=1" json:"username"`
}

// SearchUser handles POST /api/v1/link/:platform/search
func (h *Handlers) SearchUser(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	owner := ownerID(c)
	flow := h.flows.getOrCreate(owner, platform, func() *linkflow.Flow {
		return h.newFlow(owner, platform)
	})

	result, err := flow.Search(c.Request.Context(), req.Username)
	if err != nil {
		switch {
		case errors.Is(err, linkflow.ErrUserNotFound):
			c.JSON(http.StatusOK, gin.H{
				"step":         flow.Step(),
				"verification": result,
				"error":        flow.Err(),
			})
		case errors.Is(err, models.ErrOperationInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"step":         flow.Step(),
		"verification": result,
	})
}

// ConfirmUser handles POST /api/v1/link/:platform/confirm
func (h *Handlers) ConfirmUser(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}

	flow, ok := h.flows.get(ownerID(c), platform)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no link flow in progress"})
		return
	}

	if err := flow.Confirm(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"step": flow.Step()})
}

// GoBack handles POST /api/v1/link/:platform/back
func (h *Handlers) GoBack(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}

	flow, ok := h.flows.get(ownerID(c), platform)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no link flow in progress"})
		return
	}

	if err := flow.Back(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"step": flow.Step()})
}

// CancelFlow handles DELETE /api/v1/link/:platform — user cancellation,
// exits without side effects.
func (h *Handlers) CancelFlow(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}
	h.flows.remove(ownerID(c), platform)
	c.Status(http.StatusNoContent)
}

type connectRequest struct {
	Password string `binding:"required,min=1" json:"password"`
}

// ConnectManual handles POST /api/v1/link/:platform/connect
func (h *Handlers) ConnectManual(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}

	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	owner := ownerID(c)
	flow, ok := h.flows.get(owner, platform)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no link flow in progress"})
		return
	}

	if err := flow.ConnectManual(c.Request.Context(), req.Password); err != nil {
		switch {
		case errors.Is(err, linkflow.ErrConnect):
			// Flow stays at connect with a user-facing message; the user may
			// retry or switch to OAuth.
			c.JSON(http.StatusOK, gin.H{
				"step":  flow.Step(),
				"error": flow.Err(),
			})
		case errors.Is(err, models.ErrOperationInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	h.flows.remove(owner, platform)
	c.JSON(http.StatusOK, gin.H{
		"connected":    true,
		"redirect_url": platform.SiteURL(),
	})
}

// StartOAuth handles POST /api/v1/link/:platform/oauth
func (h *Handlers) StartOAuth(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}

	owner := ownerID(c)
	flow, ok := h.flows.get(owner, platform)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no link flow in progress"})
		return
	}

	authorizeURL, err := flow.ConnectOAuth(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to start oauth",
			logger.String("platform", platform.String()),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": flow.Err()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authorize_url": authorizeURL})
}

// OAuthCallback handles GET /api/v1/link/:platform/callback. Runs under
// optional auth: a missing owner becomes the handler's own terminal error.
func (h *Handlers) OAuthCallback(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}

	owner := ownerID(c)
	params := oauth.Params{
		Code:             c.Query("code"),
		State:            c.Query("state"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
	}

	result := h.callbacks.Resolve(c.Request.Context(), platform, owner, owner, params)

	// The flow, if any, is finished either way.
	h.flows.remove(owner, platform)

	if result.Status != oauth.StatusSuccess {
		c.JSON(http.StatusOK, gin.H{
			"status":  result.Status,
			"message": result.Message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            result.Status,
		"message":           result.Message,
		"account":           result.Account,
		"redirect_url":      result.RedirectURL,
		"redirect_delay_ms": result.RedirectDelay.Milliseconds(),
	})
}

// ListAccounts handles GET /api/v1/accounts
func (h *Handlers) ListAccounts(c *gin.Context) {
	accounts, err := h.accounts.ListByOwner(c.Request.Context(), ownerID(c))
	if err != nil {
		h.logger.Error("failed to list accounts", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve accounts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// DisconnectAccount handles DELETE /api/v1/accounts/:id
func (h *Handlers) DisconnectAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrInvalidUUID.Error()})
		return
	}

	ctx := c.Request.Context()

	account, err := h.accounts.GetByID(ctx, id)
	if err != nil || account.OwnerID != ownerID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	if err := h.accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		h.logger.Error("failed to delete account",
			logger.String("account_id", id.String()),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disconnect account"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListPosts handles GET /api/v1/accounts/:id/posts
func (h *Handlers) ListPosts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrInvalidUUID.Error()})
		return
	}

	ctx := c.Request.Context()

	account, err := h.accounts.GetByID(ctx, id)
	if err != nil || account.OwnerID != ownerID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		limit = 50
	}

	records, err := h.posts.ListByAccount(ctx, id, limit)
	if err != nil {
		h.logger.Error("failed to list posts",
			logger.String("account_id", id.String()),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": records,
		"count": len(records),
	})
}

type publishRequest struct {
	AccountIDs []string           `binding:"required,min=1" json:"account_ids"`
	Content    models.PostContent `binding:"required"       json:"content"`
}

// PublishPost handles POST /api/v1/publish
func (h *Handlers) PublishPost(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_ids and content are required"})
		return
	}

	if req.Content.Text == "" && req.Content.MediaURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content must not be empty"})
		return
	}

	ctx := c.Request.Context()
	owner := ownerID(c)

	ids := make([]uuid.UUID, 0, len(req.AccountIDs))
	for _, raw := range req.AccountIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id: " + raw})
			return
		}
		// Publishing to someone else's linkage is a not-found, same as reads
		account, err := h.accounts.GetByID(ctx, id)
		if err != nil || account.OwnerID != owner {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found: " + raw})
			return
		}
		ids = append(ids, id)
	}

	results := h.publisher.PublishMany(ctx, ids, req.Content)

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetStats handles GET /api/v1/stats
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.stats.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to get stats", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "sociallink",
		"version": h.version,
	})
}
