package storage

import (
	"context"

	"github.com/iudanet/pronostico/internal/models"
)

// TokenStorage defines interface for the access token revocation list
type TokenStorage interface {
	// RevokeToken adds the token string to the revocation list
	// Revoking an already revoked token is a no-op
	RevokeToken(ctx context.Context, token string) error

	// IsTokenRevoked reports whether the exact token string was revoked
	IsTokenRevoked(ctx context.Context, token string) (bool, error)

	// GetRevokedToken retrieves the revocation record of a token
	// Returns ErrTokenNotFound if token was never revoked
	GetRevokedToken(ctx context.Context, token string) (*models.RevokedToken, error)
}
