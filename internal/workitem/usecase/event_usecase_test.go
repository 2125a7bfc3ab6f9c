package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	authdomain "workhub-backend/internal/auth/domain"
	authrepo "workhub-backend/internal/auth/repository"
	"workhub-backend/internal/testutil"
	"workhub-backend/internal/workitem/domain"
)

type fakeEventCreator struct {
	links     *domain.EventLinks
	err       error
	calls     int
	lastCreds authdomain.Credentials
	lastReq   domain.EventRequest
}

func (c *fakeEventCreator) CreateEvent(_ context.Context, creds authdomain.Credentials, req domain.EventRequest) (*domain.EventLinks, error) {
	c.calls++
	c.lastCreds = creds
	c.lastReq = req
	if c.err != nil {
		return nil, c.err
	}
	return c.links, nil
}

func newEventFixture(t *testing.T) (EventUsecase, authrepo.UserRepository, *fakeEventCreator, *fakeEventCreator) {
	t.Helper()
	users := authrepo.NewUserRepository(testutil.NewTestDB(t))
	calendar := &fakeEventCreator{links: &domain.EventLinks{EventID: "g1", JoinURL: "https://meet.google.com/abc"}}
	teams := &fakeEventCreator{links: &domain.EventLinks{EventID: "m1", JoinURL: "https://teams.microsoft.com/l/1"}}
	return NewEventUsecase(users, calendar, teams, nil), users, calendar, teams
}

func TestCreateCalendarEvent_UsesStoredToken(t *testing.T) {
	uc, users, calendar, teams := newEventFixture(t)
	user := &authdomain.User{Email: "dev@corp.com"}
	user.Calendar = authdomain.Integration{Connected: true, AccessToken: "cal-token"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("creating user: %v", err)
	}

	req := domain.EventRequest{
		Title:     "Kickoff",
		StartTime: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC),
		Attendees: []string{"a@corp.com"},
	}
	links, err := uc.CreateCalendarEvent(context.Background(), user.ID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if links.JoinURL != "https://meet.google.com/abc" {
		t.Errorf("unexpected links %+v", links)
	}
	if calendar.lastCreds.AccessToken != "cal-token" || calendar.lastReq.Title != "Kickoff" {
		t.Errorf("creator got creds %+v req %+v", calendar.lastCreds, calendar.lastReq)
	}
	if teams.calls != 0 {
		t.Errorf("teams creator must not be called")
	}
}

func TestCreateTeamsMeeting_NotConnected(t *testing.T) {
	uc, users, _, teams := newEventFixture(t)
	user := &authdomain.User{Email: "dev@corp.com"}
	user.Teams = authdomain.Integration{Connected: false, AccessToken: "stale"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("creating user: %v", err)
	}

	_, err := uc.CreateTeamsMeeting(context.Background(), user.ID, domain.EventRequest{Title: "x"})
	if !errors.Is(err, domain.ErrIntegrationNotConnected) {
		t.Fatalf("expected ErrIntegrationNotConnected, got %v", err)
	}
	if teams.calls != 0 {
		t.Errorf("remote must not be called without credentials")
	}
}

func TestCreateEvent_UserNotFound(t *testing.T) {
	uc, _, _, _ := newEventFixture(t)
	_, err := uc.CreateCalendarEvent(context.Background(), "missing", domain.EventRequest{Title: "x"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateTeamsMeeting_RemoteErrorIsPropagated(t *testing.T) {
	uc, users, _, teams := newEventFixture(t)
	user := &authdomain.User{Email: "dev@corp.com"}
	user.Teams = authdomain.Integration{Connected: true, AccessToken: "graph-token"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("creating user: %v", err)
	}
	teams.err = &domain.RemoteAPIError{Provider: authdomain.ProviderTeams, StatusCode: 403, Body: "forbidden"}

	_, err := uc.CreateTeamsMeeting(context.Background(), user.ID, domain.EventRequest{Title: "x"})
	var apiErr *domain.RemoteAPIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 403 || apiErr.Body != "forbidden" {
		t.Fatalf("expected remote API error with status and body, got %v", err)
	}
}
