package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/pronostico/internal/models"
	"github.com/iudanet/pronostico/internal/server/storage"
)

// RevokeToken adds token to the revocation list
// The first revocation timestamp is kept when the token is revoked again
func (s *Storage) RevokeToken(ctx context.Context, token string) error {
	query := `
		INSERT INTO revoked_tokens (token, revoked_at)
		VALUES (?, ?)
		ON CONFLICT(token) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, token, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsTokenRevoked reports whether token is in the revocation list
func (s *Storage) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token = ?)`

	var revoked bool
	if err := s.db.QueryRowContext(ctx, query, token).Scan(&revoked); err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}

	return revoked, nil
}

// GetRevokedToken retrieves revocation record by token value
func (s *Storage) GetRevokedToken(ctx context.Context, token string) (*models.RevokedToken, error) {
	query := `
		SELECT id, token, revoked_at
		FROM revoked_tokens
		WHERE token = ?
	`

	revoked := &models.RevokedToken{}

	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&revoked.ID,
		&revoked.Token,
		&revoked.RevokedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get revoked token: %w", err)
	}

	return revoked, nil
}
