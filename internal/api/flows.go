package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/zhengbin-app/sociallink/internal/linkflow"
	"github.com/zhengbin-app/sociallink/internal/models"
)

// flowRegistry keeps one in-progress link flow per (owner, platform). Flows
// are memory-local and session-scoped; an abandoned flow is simply replaced
// when the owner starts over.
type flowRegistry struct {
	mu    sync.Mutex
	flows map[string]*linkflow.Flow
}

func newFlowRegistry() *flowRegistry {
	return &flowRegistry{flows: make(map[string]*linkflow.Flow)}
}

func flowKey(ownerID string, platform models.Platform) string {
	return fmt.Sprintf("%s|%s", ownerID, platform)
}

func (r *flowRegistry) get(ownerID string, platform models.Platform) (*linkflow.Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flows[flowKey(ownerID, platform)]
	return f, ok
}

func (r *flowRegistry) getOrCreate(ownerID string, platform models.Platform, create func() *linkflow.Flow) *linkflow.Flow {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := flowKey(ownerID, platform)
	if f, ok := r.flows[key]; ok {
		return f
	}
	f := create()
	r.flows[key] = f
	return f
}

func (r *flowRegistry) remove(ownerID string, platform models.Platform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flows, flowKey(ownerID, platform))
}

// newFlow builds a link flow wired to this handler set's collaborators.
func (h *Handlers) newFlow(ownerID string, platform models.Platform) *linkflow.Flow {
	cfg := linkflow.Config{
		Platform:     platform,
		OwnerID:      ownerID,
		SessionID:    ownerID,
		AuthorizeURL: h.authorizeURLs[platform.String()],
	}

	connect := func(ctx context.Context, handle, _ string) error {
		_, err := h.accounts.Create(ctx, &models.AccountCreateRequest{
			OwnerID:       ownerID,
			Platform:      platform,
			AccountName:   platform.DisplayName(),
			AccountHandle: models.NormalizeHandle(handle),
			AccessToken:   models.ManualTrustToken,
		})
		return err
	}

	return linkflow.New(cfg, h.verifier, h.sessions, h.auditor, connect, h.logger)
}
