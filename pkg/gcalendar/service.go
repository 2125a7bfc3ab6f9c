// Package gcalendar adapts Google Calendar for sync (upcoming events) and
// for outbound meeting creation with an attached Google Meet link.
package gcalendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "workhub-backend/internal/auth/domain"
	workdomain "workhub-backend/internal/workitem/domain"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	defaultPageSize = 10
	primaryCalendar = "primary"
	sourceLabel     = "Google Calendar"
)

type Service struct {
	pageSize int
	opts     []option.ClientOption
	now      func() time.Time
}

func NewService(pageSize int, opts ...option.ClientOption) *Service {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Service{
		pageSize: pageSize,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *Service) Provider() authdomain.Provider {
	return authdomain.ProviderCalendar
}

// GetCalendarService creates Calendar service with user's access token
func (s *Service) GetCalendarService(ctx context.Context, creds authdomain.Credentials) (*calendar.Service, error) {
	token := &oauth2.Token{
		AccessToken: creds.AccessToken,
		TokenType:   "Bearer",
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}
	return srv, nil
}

// FetchCandidates lists upcoming events of the primary calendar ordered by start time.
func (s *Service) FetchCandidates(ctx context.Context, creds authdomain.Credentials) ([]workdomain.Candidate, error) {
	if !creds.Valid() {
		return []workdomain.Candidate{}, nil
	}

	srv, err := s.GetCalendarService(ctx, creds)
	if err != nil {
		return nil, unavailable(err)
	}

	events, err := srv.Events.List(primaryCalendar).
		TimeMin(s.now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(int64(s.pageSize)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, unavailable(err)
	}

	candidates := make([]workdomain.Candidate, 0, len(events.Items))
	for _, ev := range events.Items {
		if ev == nil || ev.Id == "" || ev.Status == "cancelled" {
			continue
		}
		candidates = append(candidates, s.convertEventToCandidate(ev))
	}
	return candidates, nil
}

func (s *Service) convertEventToCandidate(ev *calendar.Event) workdomain.Candidate {
	title := ev.Summary
	if title == "" {
		title = "No Title"
	}

	start, hasStart := parseEventTime(ev.Start)
	end, _ := parseEventTime(ev.End)
	timestamp := start
	if !hasStart {
		timestamp = s.now()
	}

	organizer := ""
	if ev.Organizer != nil {
		organizer = ev.Organizer.Email
	}

	preview := ev.Description
	if preview == "" && ev.Location != "" {
		preview = ev.Location
	}
	if preview == "" && hasStart {
		preview = "Starts " + start.Format("Mon Jan 2 15:04 MST")
	}

	metadata := map[string]interface{}{
		"googleId":    ev.Id,
		"organizer":   organizer,
		"location":    ev.Location,
		"hangoutLink": ev.HangoutLink,
		"htmlLink":    ev.HtmlLink,
		"attendees":   len(ev.Attendees),
	}
	if hasStart {
		metadata["start"] = start.Format(time.RFC3339)
	}
	if !end.IsZero() {
		metadata["end"] = end.Format(time.RFC3339)
	}

	return workdomain.Candidate{
		ProviderID: ev.Id,
		Title:      title,
		Source:     sourceLabel,
		Sender:     organizer,
		Timestamp:  timestamp,
		Preview:    preview,
		Type:       workdomain.ItemTypeCalendar,
		Metadata:   metadata,
	}
}

// parseEventTime reads a timed (dateTime) or all-day (date) boundary
func parseEventTime(t *calendar.EventDateTime) (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	if t.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return parsed, true
		}
	}
	if t.Date != "" {
		if parsed, err := time.Parse("2006-01-02", t.Date); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// CreateEvent inserts an event on the primary calendar and asks Google to
// attach a Meet conference. Attendees receive invitations.
func (s *Service) CreateEvent(ctx context.Context, creds authdomain.Credentials, req workdomain.EventRequest) (*workdomain.EventLinks, error) {
	srv, err := s.GetCalendarService(ctx, creds)
	if err != nil {
		return nil, err
	}

	attendees := make([]*calendar.EventAttendee, 0, len(req.Attendees))
	for _, email := range req.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}

	event := &calendar.Event{
		Summary:     req.Title,
		Description: req.Description,
		Start:       &calendar.EventDateTime{DateTime: req.StartTime.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: req.EndTime.Format(time.RFC3339)},
		Attendees:   attendees,
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             uuid.New().String(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}

	created, err := srv.Events.Insert(primaryCalendar, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			body := apiErr.Body
			if body == "" {
				body = apiErr.Message
			}
			return nil, &workdomain.RemoteAPIError{
				Provider:   authdomain.ProviderCalendar,
				StatusCode: apiErr.Code,
				Body:       body,
			}
		}
		return nil, fmt.Errorf("unable to create calendar event: %w", err)
	}

	return &workdomain.EventLinks{
		EventID:  created.Id,
		JoinURL:  meetLink(created),
		EventURL: created.HtmlLink,
	}, nil
}

func meetLink(ev *calendar.Event) string {
	if ev.HangoutLink != "" {
		return ev.HangoutLink
	}
	if ev.ConferenceData != nil {
		for _, ep := range ev.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				return ep.Uri
			}
		}
	}
	return ""
}

func unavailable(err error) error {
	status := 0
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		status = apiErr.Code
	}
	return &workdomain.ProviderUnavailableError{
		Provider:   authdomain.ProviderCalendar,
		StatusCode: status,
		Err:        err,
	}
}
