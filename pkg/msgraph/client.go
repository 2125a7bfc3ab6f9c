// Package msgraph talks to the Microsoft Graph REST API for Teams chats and
// online meetings.
package msgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	authdomain "workhub-backend/internal/auth/domain"
	workdomain "workhub-backend/internal/workitem/domain"

	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL  = "https://graph.microsoft.com/v1.0"
	defaultPageSize = 20
	sourceLabel     = "Microsoft Teams"
	maxPreviewLen   = 280
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Client fetches recent Teams chat messages and creates Teams meetings
type Client struct {
	baseURL  string
	pageSize int
}

func NewClient(baseURL string, pageSize int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: pageSize,
	}
}

func (c *Client) Provider() authdomain.Provider {
	return authdomain.ProviderTeams
}

func (c *Client) httpClient(ctx context.Context, creds authdomain.Credentials) *http.Client {
	token := &oauth2.Token{
		AccessToken: creds.AccessToken,
		TokenType:   "Bearer",
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
}

type chatList struct {
	Value []chat `json:"value"`
}

type chat struct {
	ID                 string       `json:"id"`
	Topic              string       `json:"topic"`
	ChatType           string       `json:"chatType"`
	WebURL             string       `json:"webUrl"`
	LastMessagePreview *chatPreview `json:"lastMessagePreview"`
}

type chatPreview struct {
	ID              string      `json:"id"`
	CreatedDateTime string      `json:"createdDateTime"`
	IsDeleted       bool        `json:"isDeleted"`
	Body            itemBody    `json:"body"`
	From            *identities `json:"from"`
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type identities struct {
	User *identity `json:"user"`
}

type identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// FetchCandidates lists the user's chats with their latest message and turns
// each latest message into a candidate. The dedup id is the message id, so a
// new message in an existing chat yields a new candidate.
func (c *Client) FetchCandidates(ctx context.Context, creds authdomain.Credentials) ([]workdomain.Candidate, error) {
	if !creds.Valid() {
		return []workdomain.Candidate{}, nil
	}

	q := url.Values{}
	q.Set("$expand", "lastMessagePreview")
	q.Set("$top", strconv.Itoa(c.pageSize))
	endpoint := c.baseURL + "/me/chats?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, c.unavailable(0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient(ctx, creds).Do(req)
	if err != nil {
		return nil, c.unavailable(0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.unavailable(resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.unavailable(resp.StatusCode, fmt.Errorf("graph API error: %s", string(respBody)))
	}

	var list chatList
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, c.unavailable(resp.StatusCode, fmt.Errorf("failed to parse chats: %w", err))
	}

	candidates := make([]workdomain.Candidate, 0, len(list.Value))
	for _, ch := range list.Value {
		p := ch.LastMessagePreview
		if p == nil || p.ID == "" || p.IsDeleted {
			continue
		}
		candidates = append(candidates, convertChatToCandidate(ch))
	}
	return candidates, nil
}

func convertChatToCandidate(ch chat) workdomain.Candidate {
	p := ch.LastMessagePreview

	title := strings.TrimSpace(ch.Topic)
	if title == "" {
		title = "Teams Chat"
	}

	sender := ""
	if p.From != nil && p.From.User != nil {
		sender = p.From.User.DisplayName
	}

	timestamp := time.Now()
	if created, err := time.Parse(time.RFC3339, p.CreatedDateTime); err == nil {
		timestamp = created
	}

	return workdomain.Candidate{
		ProviderID: p.ID,
		Title:      title,
		Source:     sourceLabel,
		Sender:     sender,
		Timestamp:  timestamp,
		Preview:    StripHTML(p.Body.Content),
		Type:       workdomain.ItemTypeMessage,
		Metadata: map[string]interface{}{
			"microsoftId": p.ID,
			"chatId":      ch.ID,
			"chatType":    ch.ChatType,
			"from":        sender,
			"webUrl":      ch.WebURL,
		},
	}
}

// StripHTML turns a Teams message body into plain preview text.
func StripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxPreviewLen {
		s = string(r[:maxPreviewLen]) + "..."
	}
	return s
}

type eventPayload struct {
	Subject               string          `json:"subject"`
	Body                  itemBody        `json:"body"`
	Start                 graphDateTime   `json:"start"`
	End                   graphDateTime   `json:"end"`
	Attendees             []graphAttendee `json:"attendees"`
	IsOnlineMeeting       bool            `json:"isOnlineMeeting"`
	OnlineMeetingProvider string          `json:"onlineMeetingProvider"`
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphAttendee struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
	Type string `json:"type"`
}

type createdEvent struct {
	ID            string `json:"id"`
	WebLink       string `json:"webLink"`
	OnlineMeeting *struct {
		JoinURL string `json:"joinUrl"`
	} `json:"onlineMeeting"`
}

// CreateEvent creates an event in the user's default calendar with a Teams
// meeting attached.
func (c *Client) CreateEvent(ctx context.Context, creds authdomain.Credentials, req workdomain.EventRequest) (*workdomain.EventLinks, error) {
	payload := eventPayload{
		Subject:               req.Title,
		Body:                  itemBody{ContentType: "text", Content: req.Description},
		Start:                 graphDateTime{DateTime: req.StartTime.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"},
		End:                   graphDateTime{DateTime: req.EndTime.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"},
		Attendees:             make([]graphAttendee, 0, len(req.Attendees)),
		IsOnlineMeeting:       true,
		OnlineMeetingProvider: "teamsForBusiness",
	}
	for _, email := range req.Attendees {
		var a graphAttendee
		a.EmailAddress.Address = email
		a.Type = "required"
		payload.Attendees = append(payload.Attendees, a)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/me/events", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient(ctx, creds).Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &workdomain.RemoteAPIError{
			Provider:   authdomain.ProviderTeams,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var created createdEvent
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("failed to parse created event: %w", err)
	}

	links := &workdomain.EventLinks{
		EventID:  created.ID,
		EventURL: created.WebLink,
	}
	if created.OnlineMeeting != nil {
		links.JoinURL = created.OnlineMeeting.JoinURL
	}
	return links, nil
}

func (c *Client) unavailable(status int, err error) error {
	return &workdomain.ProviderUnavailableError{
		Provider:   authdomain.ProviderTeams,
		StatusCode: status,
		Err:        err,
	}
}
