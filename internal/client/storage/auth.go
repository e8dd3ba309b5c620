package storage

import (
	"context"
	"time"
)

// AuthStorage defines interface for storing the client session
type AuthStorage interface {
	// SaveAuth stores authentication data, replacing the previous session
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored authentication data
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored authentication data (logout)
	// Returns ErrAuthNotFound if there is nothing to delete
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated checks if valid authentication exists (not expired)
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData represents the saved session of the CLI client
type AuthData struct {
	Username    string `json:"username"`
	ServerURL   string `json:"server_url"`
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // unix seconds
}

// Expired reports whether the access token has expired at the given moment
func (a *AuthData) Expired(now time.Time) bool {
	return !now.Before(time.Unix(a.ExpiresAt, 0))
}
