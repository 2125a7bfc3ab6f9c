package domain

import "time"

// Provider identifies an external service a user can connect
type Provider string

const (
	ProviderGmail    Provider = "gmail"
	ProviderCalendar Provider = "calendar"
	ProviderTasks    Provider = "tasks"
	ProviderTeams    Provider = "teams"
)

// AllProviders lists providers in the order SyncAll runs them
var AllProviders = []Provider{ProviderGmail, ProviderCalendar, ProviderTasks, ProviderTeams}

// ParseProvider converts a path or config value into a Provider
func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(s); p {
	case ProviderGmail, ProviderCalendar, ProviderTasks, ProviderTeams:
		return p, true
	default:
		return "", false
	}
}

// MetadataKey is the work item metadata field holding the provider-native id.
func (p Provider) MetadataKey() string {
	if p == ProviderTeams {
		return "microsoftId"
	}
	return "googleId"
}

// Integration holds the OAuth credentials of one connected provider
type Integration struct {
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty"`
	LastSync     *time.Time `json:"last_sync,omitempty"`
	Connected    bool       `json:"connected" gorm:"default:false"`
}

// Credentials is the bearer token handed to a provider adapter
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Valid reports whether the credentials carry a usable access token.
func (c Credentials) Valid() bool {
	return c.AccessToken != ""
}

// ResolveCredentials picks the token an adapter should use. A non-empty
// override wins over the stored token; a stored token only counts when the
// integration is connected and not past its expiry.
func (i *Integration) ResolveCredentials(override string, now time.Time) (Credentials, bool) {
	if override != "" {
		return Credentials{AccessToken: override}, true
	}
	if i == nil || !i.Connected || i.AccessToken == "" {
		return Credentials{}, false
	}
	if i.TokenExpiry != nil && !i.TokenExpiry.IsZero() && now.After(*i.TokenExpiry) {
		return Credentials{}, false
	}
	return Credentials{AccessToken: i.AccessToken, RefreshToken: i.RefreshToken}, true
}
