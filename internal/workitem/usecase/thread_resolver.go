package usecase

import (
	"context"
	"fmt"
	"time"

	"workhub-backend/internal/workitem/domain"
	"workhub-backend/internal/workitem/repository"
)

// ThreadResolver finds or lazily creates the user's import thread
type ThreadResolver struct {
	threads repository.WorkThreadRepository
	now     func() time.Time
}

func NewThreadResolver(threads repository.WorkThreadRepository) *ThreadResolver {
	return &ThreadResolver{threads: threads, now: time.Now}
}

func (r *ThreadResolver) ResolveImportThread(ctx context.Context, userID string) (string, error) {
	thread, err := r.threads.FindByTitle(ctx, userID, domain.ImportThreadTitle)
	if err != nil {
		return "", fmt.Errorf("failed to look up import thread: %w", err)
	}
	if thread != nil {
		return thread.ID, nil
	}

	thread = &domain.WorkThread{
		UserID:        userID,
		Title:         domain.ImportThreadTitle,
		Description:   "Items synced from connected services",
		Priority:      domain.PriorityMedium,
		Progress:      0,
		LastActivity:  r.now(),
		ItemIDs:       []string{},
		RelatedPeople: []string{},
		Tags:          []string{"imported"},
	}
	if err := r.threads.Create(ctx, thread); err != nil {
		return "", fmt.Errorf("failed to create import thread: %w", err)
	}
	return thread.ID, nil
}
