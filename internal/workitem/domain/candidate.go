package domain

import (
	"context"
	"time"

	authdomain "workhub-backend/internal/auth/domain"
)

// Candidate is a provider-normalized remote record that has not been
// deduplicated or classified yet.
type Candidate struct {
	ProviderID string
	Title      string
	Source     string
	Sender     string
	Timestamp  time.Time
	Preview    string
	Type       ItemType
	Metadata   map[string]interface{}
}

// ProviderAdapter fetches the first page of recent records from one service.
// Adapters return an empty slice without any remote call when credentials
// are not usable, and *ProviderUnavailableError when the remote call fails.
type ProviderAdapter interface {
	Provider() authdomain.Provider
	FetchCandidates(ctx context.Context, creds authdomain.Credentials) ([]Candidate, error)
}

// Classification is the work-relevance judgment for one email
type Classification struct {
	IsWork   bool     `json:"isWork"`
	Priority Priority `json:"priority"`
	Reason   string   `json:"reason,omitempty"`
}

// FallbackClassification is used whenever the classifier cannot produce a judgment
var FallbackClassification = Classification{IsWork: true, Priority: PriorityMedium}

// EventRequest describes a meeting to create on a remote calendar
type EventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Attendees   []string  `json:"attendees"`
}

// EventLinks are the remote-assigned links of a created event
type EventLinks struct {
	EventID  string `json:"event_id"`
	JoinURL  string `json:"join_url,omitempty"`
	EventURL string `json:"event_url,omitempty"`
}

// EventCreator submits a create-event request with a video conference attached
type EventCreator interface {
	CreateEvent(ctx context.Context, creds authdomain.Credentials, req EventRequest) (*EventLinks, error)
}
