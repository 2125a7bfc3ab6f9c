package gmail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	authdomain "workhub-backend/internal/auth/domain"
	workdomain "workhub-backend/internal/workitem/domain"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	defaultPageSize = 10
	unreadQuery     = "is:unread in:inbox"
)

// Service fetches unread inbox messages as work item candidates
type Service struct {
	pageSize int
	opts     []option.ClientOption
}

// NewService creates a Gmail adapter. Extra client options are appended
// after the authenticated HTTP client (e.g. option.WithEndpoint).
func NewService(pageSize int, opts ...option.ClientOption) *Service {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Service{
		pageSize: pageSize,
		opts:     opts,
	}
}

func (s *Service) Provider() authdomain.Provider {
	return authdomain.ProviderGmail
}

// GetGmailService creates Gmail service with user's access token
func (s *Service) GetGmailService(ctx context.Context, creds authdomain.Credentials) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken: creds.AccessToken,
		TokenType:   "Bearer",
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.opts...)
	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}

	return srv, nil
}

// FetchCandidates lists the most recent unread inbox messages, first page only.
// Messages are returned in Gmail's list order (newest first).
func (s *Service) FetchCandidates(ctx context.Context, creds authdomain.Credentials) ([]workdomain.Candidate, error) {
	if !creds.Valid() {
		return []workdomain.Candidate{}, nil
	}

	srv, err := s.GetGmailService(ctx, creds)
	if err != nil {
		return nil, unavailable(err)
	}

	user := "me"
	messagesResp, err := srv.Users.Messages.List(user).
		Q(unreadQuery).
		MaxResults(int64(s.pageSize)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, unavailable(err)
	}

	candidates := make([]workdomain.Candidate, 0, len(messagesResp.Messages))
	for _, ref := range messagesResp.Messages {
		msg, err := srv.Users.Messages.Get(user, ref.Id).
			Format("metadata").
			MetadataHeaders("Subject", "From", "Date").
			Context(ctx).
			Do()
		if err != nil {
			if ctx.Err() != nil {
				return nil, unavailable(ctx.Err())
			}
			if isGone(err) {
				// Deleted between list and get; the next sync will not list it
				continue
			}
			return nil, unavailable(err)
		}
		candidates = append(candidates, convertGmailMessageToCandidate(msg))
	}

	return candidates, nil
}

func convertGmailMessageToCandidate(msg *gmail.Message) workdomain.Candidate {
	var headers []*gmail.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	subject := strings.TrimSpace(getHeader(headers, "Subject"))
	if subject == "" {
		subject = "No Subject"
	}

	from := strings.TrimSpace(getHeader(headers, "From"))
	source := from
	if source == "" {
		source = "Gmail"
	}

	receivedAt := time.Now()
	if msg.InternalDate > 0 {
		receivedAt = time.UnixMilli(msg.InternalDate)
	}

	labels := msg.LabelIds
	if labels == nil {
		labels = []string{}
	}

	return workdomain.Candidate{
		ProviderID: msg.Id,
		Title:      subject,
		Source:     source,
		Sender:     from,
		Timestamp:  receivedAt,
		Preview:    html.UnescapeString(msg.Snippet),
		Type:       workdomain.ItemTypeEmail,
		Metadata: map[string]interface{}{
			"googleId": msg.Id,
			"threadId": msg.ThreadId,
			"from":     from,
			"labelIds": labels,
		},
	}
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
}

func unavailable(err error) error {
	status := 0
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		status = apiErr.Code
	}
	return &workdomain.ProviderUnavailableError{
		Provider:   authdomain.ProviderGmail,
		StatusCode: status,
		Err:        err,
	}
}
