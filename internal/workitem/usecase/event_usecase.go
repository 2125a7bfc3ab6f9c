package usecase

import (
	"context"
	"fmt"
	"time"

	authdomain "workhub-backend/internal/auth/domain"
	authrepo "workhub-backend/internal/auth/repository"
	"workhub-backend/internal/workitem/domain"

	"go.uber.org/zap"
)

// eventUsecase implements EventUsecase. Events are written through to the
// remote calendar only; nothing is stored locally.
type eventUsecase struct {
	userRepo authrepo.UserRepository
	calendar domain.EventCreator
	teams    domain.EventCreator
	logger   *zap.Logger
	now      func() time.Time
}

func NewEventUsecase(userRepo authrepo.UserRepository, calendar, teams domain.EventCreator, logger *zap.Logger) EventUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &eventUsecase{
		userRepo: userRepo,
		calendar: calendar,
		teams:    teams,
		logger:   logger.Named("events"),
		now:      time.Now,
	}
}

func (u *eventUsecase) CreateCalendarEvent(ctx context.Context, userID string, req domain.EventRequest) (*domain.EventLinks, error) {
	return u.create(ctx, userID, authdomain.ProviderCalendar, u.calendar, req)
}

func (u *eventUsecase) CreateTeamsMeeting(ctx context.Context, userID string, req domain.EventRequest) (*domain.EventLinks, error) {
	return u.create(ctx, userID, authdomain.ProviderTeams, u.teams, req)
}

func (u *eventUsecase) create(ctx context.Context, userID string, provider authdomain.Provider, creator domain.EventCreator, req domain.EventRequest) (*domain.EventLinks, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	creds, ok := user.Integration(provider).ResolveCredentials("", u.now())
	if !ok || creator == nil {
		return nil, domain.ErrIntegrationNotConnected
	}

	links, err := creator.CreateEvent(ctx, creds, req)
	if err != nil {
		u.logger.Warn("create event failed",
			zap.String("user_id", userID),
			zap.String("provider", string(provider)),
			zap.Error(err),
		)
		return nil, err
	}

	u.logger.Info("event created",
		zap.String("user_id", userID),
		zap.String("provider", string(provider)),
		zap.String("event_id", links.EventID),
	)
	return links, nil
}
