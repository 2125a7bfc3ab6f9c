package usecase

import (
	"context"

	authdomain "workhub-backend/internal/auth/domain"
	"workhub-backend/internal/workitem/repository"
)

// DedupGate answers whether a remote record was already imported for a user.
// The check is not transactional with the insert that follows it.
type DedupGate struct {
	items repository.WorkItemRepository
}

func NewDedupGate(items repository.WorkItemRepository) *DedupGate {
	return &DedupGate{items: items}
}

func (g *DedupGate) Exists(ctx context.Context, userID string, provider authdomain.Provider, providerID string) (bool, error) {
	return g.items.ExistsByExternalID(ctx, userID, provider.MetadataKey(), providerID)
}
