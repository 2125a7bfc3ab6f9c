package gtasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "workhub-backend/internal/auth/domain"
	workdomain "workhub-backend/internal/workitem/domain"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"
)

const (
	defaultPageSize = 20
	defaultTaskList = "@default"
	sourceLabel     = "Google Tasks"
)

// Service fetches open tasks of the user's default task list
type Service struct {
	pageSize int
	opts     []option.ClientOption
}

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
	return authdomain.ProviderTasks
}

func (s *Service) GetTasksService(ctx context.Context, creds authdomain.Credentials) (*tasks.Service, error) {
	token := &oauth2.Token{
		AccessToken: creds.AccessToken,
		TokenType:   "Bearer",
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.opts...)
	srv, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Tasks service: %w", err)
	}
	return srv, nil
}

func (s *Service) FetchCandidates(ctx context.Context, creds authdomain.Credentials) ([]workdomain.Candidate, error) {
	if !creds.Valid() {
		return []workdomain.Candidate{}, nil
	}

	srv, err := s.GetTasksService(ctx, creds)
	if err != nil {
		return nil, unavailable(err)
	}

	resp, err := srv.Tasks.List(defaultTaskList).
		ShowCompleted(false).
		ShowHidden(false).
		MaxResults(int64(s.pageSize)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, unavailable(err)
	}

	candidates := make([]workdomain.Candidate, 0, len(resp.Items))
	for _, task := range resp.Items {
		if task == nil || task.Id == "" || task.Deleted {
			continue
		}
		candidates = append(candidates, convertTaskToCandidate(task))
	}
	return candidates, nil
}

func convertTaskToCandidate(task *tasks.Task) workdomain.Candidate {
	title := task.Title
	if title == "" {
		title = "Untitled Task"
	}

	timestamp := time.Now()
	if updated, err := time.Parse(time.RFC3339, task.Updated); err == nil {
		timestamp = updated
	}

	preview := task.Notes
	if preview == "" && task.Due != "" {
		if due, err := time.Parse(time.RFC3339, task.Due); err == nil {
			preview = "Due " + due.Format("Mon Jan 2")
		}
	}

	return workdomain.Candidate{
		ProviderID: task.Id,
		Title:      title,
		Source:     sourceLabel,
		Timestamp:  timestamp,
		Preview:    preview,
		Type:       workdomain.ItemTypeTask,
		Metadata: map[string]interface{}{
			"googleId":    task.Id,
			"taskListId":  defaultTaskList,
			"due":         task.Due,
			"status":      task.Status,
			"webViewLink": task.WebViewLink,
		},
	}
}

func unavailable(err error) error {
	status := 0
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		status = apiErr.Code
	}
	return &workdomain.ProviderUnavailableError{
		Provider:   authdomain.ProviderTasks,
		StatusCode: status,
		Err:        err,
	}
}
