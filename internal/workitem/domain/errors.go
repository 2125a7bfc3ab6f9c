package domain

import (
	"errors"
	"fmt"

	authdomain "workhub-backend/internal/auth/domain"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrIntegrationNotConnected = errors.New("integration not connected")
)

// ProviderUnavailableError is returned by adapters when the remote call fails
// or answers with a non-success status.
type ProviderUnavailableError struct {
	Provider   authdomain.Provider
	StatusCode int
	Err        error
}

func (e *ProviderUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s unavailable (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Err
}

// IsProviderUnavailable reports whether err (or any error in its chain) is a ProviderUnavailableError.
func IsProviderUnavailable(err error) bool {
	var target *ProviderUnavailableError
	return errors.As(err, &target)
}

// RemoteAPIError carries the status and body of a rejected write request
type RemoteAPIError struct {
	Provider   authdomain.Provider
	StatusCode int
	Body       string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Body)
}
