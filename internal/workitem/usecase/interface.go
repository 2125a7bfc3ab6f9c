package usecase

import (
	"context"
	"time"

	authdomain "workhub-backend/internal/auth/domain"
	"workhub-backend/internal/workitem/domain"
)

// SyncUsecase is the sync orchestrator. Sync entry points never return an
// error: any failure is logged and reported as zero created items.
type SyncUsecase interface {
	SyncGmail(ctx context.Context, userID, overrideToken string) int
	SyncCalendar(ctx context.Context, userID, overrideToken string) int
	SyncTasks(ctx context.Context, userID, overrideToken string) int
	SyncTeams(ctx context.Context, userID, overrideToken string) int
	SyncProvider(ctx context.Context, userID string, provider authdomain.Provider, overrideToken string) int
	// SyncAll runs every provider one after another
	SyncAll(ctx context.Context, userID string, opts SyncAllOptions) SyncAllResult

	ListItems(ctx context.Context, userID string, limit, offset int) ([]*domain.WorkItem, int64, error)
	GetImportThread(ctx context.Context, userID string) (*domain.WorkThread, error)
	IntegrationStatus(ctx context.Context, userID string) (map[authdomain.Provider]IntegrationState, error)
}

// EventUsecase creates meetings on the user's connected calendars
type EventUsecase interface {
	CreateCalendarEvent(ctx context.Context, userID string, req domain.EventRequest) (*domain.EventLinks, error)
	CreateTeamsMeeting(ctx context.Context, userID string, req domain.EventRequest) (*domain.EventLinks, error)
}

// IntegrationState is the public view of one provider integration
type IntegrationState struct {
	Connected bool       `json:"connected"`
	LastSync  *time.Time `json:"last_sync,omitempty"`
}

type SyncAllOptions struct {
	// OverrideTokens is keyed by provider
	OverrideTokens map[authdomain.Provider]string
	// Acquire guards each provider cycle. A provider it fails for is skipped.
	Acquire func(ctx context.Context, provider authdomain.Provider) (release func(), err error)
	// Timeout bounds each provider cycle on its own; zero means no bound
	Timeout time.Duration
}

type SyncAllResult struct {
	Created map[authdomain.Provider]int
	Skipped []authdomain.Provider
	Total   int
}
