package domain

import "time"

type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"index"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Connected external services. Tokens are written by the auth layer,
	// sync only reads them and stamps LastSync.
	Gmail    Integration `json:"gmail" gorm:"embedded;embeddedPrefix:gmail_"`
	Calendar Integration `json:"calendar" gorm:"embedded;embeddedPrefix:calendar_"`
	Tasks    Integration `json:"tasks" gorm:"embedded;embeddedPrefix:tasks_"`
	Teams    Integration `json:"teams" gorm:"embedded;embeddedPrefix:teams_"`
}

// Integration returns the credentials stored for the given provider,
// or nil for an unknown provider.
func (u *User) Integration(p Provider) *Integration {
	switch p {
	case ProviderGmail:
		return &u.Gmail
	case ProviderCalendar:
		return &u.Calendar
	case ProviderTasks:
		return &u.Tasks
	case ProviderTeams:
		return &u.Teams
	default:
		return nil
	}
}
