package repository

import (
	"context"
	"time"

	"workhub-backend/internal/workitem/domain"
)

// WorkItemRepository defines the interface for work item data access
type WorkItemRepository interface {
	// Create inserts a new work item
	Create(ctx context.Context, item *domain.WorkItem) error

	// FindByID finds a work item by its ID
	FindByID(ctx context.Context, id string) (*domain.WorkItem, error)

	// ExistsByExternalID checks whether the user already has an item for the
	// provider-native id stored under metadata[key]
	ExistsByExternalID(ctx context.Context, userID, key, externalID string) (bool, error)

	// FindByUserID lists a user's items, newest first
	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.WorkItem, int64, error)
}

// WorkThreadRepository defines the interface for work thread data access
type WorkThreadRepository interface {
	// Create inserts a new thread
	Create(ctx context.Context, thread *domain.WorkThread) error

	// FindByID finds a thread by its ID
	FindByID(ctx context.Context, id string) (*domain.WorkThread, error)

	// FindByTitle finds a user's thread by exact title
	FindByTitle(ctx context.Context, userID, title string) (*domain.WorkThread, error)

	// AttachItem set-inserts itemID into the thread, bumps last activity and
	// escalates priority for high items
	AttachItem(ctx context.Context, threadID, itemID string, itemPriority domain.Priority, at time.Time) error
}
