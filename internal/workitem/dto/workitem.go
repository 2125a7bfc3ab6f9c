package dto

import (
	authdomain "workhub-backend/internal/auth/domain"
	"workhub-backend/internal/workitem/domain"
)

type SyncRequest struct {
	AccessToken string `json:"access_token"`
}

type SyncResponse struct {
	Provider authdomain.Provider `json:"provider"`
	Created  int                 `json:"created"`
}

// SyncAllRequest carries optional per-provider override tokens
type SyncAllRequest struct {
	AccessTokens map[authdomain.Provider]string `json:"access_tokens"`
}

type SyncAllResponse struct {
	Created map[authdomain.Provider]int `json:"created"`
	Skipped []authdomain.Provider       `json:"skipped,omitempty"`
	Total   int                         `json:"total"`
}

type ItemsResponse struct {
	Items  []*domain.WorkItem `json:"items"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
	Total  int64              `json:"total"`
}

type RemoteErrorResponse struct {
	Error        string              `json:"error"`
	Provider     authdomain.Provider `json:"provider"`
	RemoteStatus int                 `json:"remote_status"`
	RemoteBody   string              `json:"remote_body"`
}
